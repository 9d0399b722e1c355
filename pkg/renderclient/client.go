// Package renderclient dispatches camera poses to the GPU render backend
// and returns image bytes. It is the cache's miss path: the render cache
// invokes it at most once per outstanding fingerprint.
package renderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seatlens/seatlens/pkg/camera"
	"github.com/seatlens/seatlens/pkg/errs"
)

// Render quality presets.
const (
	PreviewWidth   = 960
	PreviewHeight  = 540
	PreviewSamples = 16

	FullWidth   = 1920
	FullHeight  = 1080
	FullSamples = 64
)

// Request describes one render job for the backend.
type Request struct {
	VenueID  string      `json:"venue_id"`
	Template string      `json:"template"`
	Pose     camera.Pose `json:"-"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Samples  int         `json:"samples"`
}

// Preview returns a fast low-quality render request for the pose.
func Preview(venueID, template string, pose camera.Pose) Request {
	return Request{
		VenueID: venueID, Template: template, Pose: pose,
		Width: PreviewWidth, Height: PreviewHeight, Samples: PreviewSamples,
	}
}

// Full returns a full-quality render request for the pose.
func Full(venueID, template string, pose camera.Pose) Request {
	return Request{
		VenueID: venueID, Template: template, Pose: pose,
		Width: FullWidth, Height: FullHeight, Samples: FullSamples,
	}
}

// Client renders camera poses into image bytes.
//
// Implementations classify failures with errs codes: RENDER_TRANSIENT for
// network errors, timeouts and 5xx responses (eligible for caller retry)
// and RENDER_FATAL for deterministic failures such as an unknown template
// (never retried).
type Client interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}

// wireRequest is the JSON body the backend expects: the pose flattened
// into Blender terms (location, Euler rotation, field of view).
type wireRequest struct {
	VenueID       string     `json:"venue_id"`
	Template      string     `json:"template_name"`
	Location      [3]float64 `json:"location"`
	RotationEuler [3]float64 `json:"rotation_euler"`
	FOV           float64    `json:"fov"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	Samples       int        `json:"samples"`
}

// HTTPClient is a Client that posts render jobs to an HTTP backend.
// Safe for concurrent use.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the render backend at baseURL.
// The HTTP client carries no timeout of its own; each call is bounded by
// the caller's context (the render cache's configured render timeout).
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Render posts the job and returns the PNG bytes.
func (c *HTTPClient) Render(ctx context.Context, req Request) ([]byte, error) {
	rot := req.Pose.Rotation()
	body := wireRequest{
		VenueID:       req.VenueID,
		Template:      req.Template,
		Location:      [3]float64{req.Pose.Position.X, req.Pose.Position.Y, req.Pose.Position.Z},
		RotationEuler: [3]float64{rot.X, rot.Y, rot.Z},
		FOV:           req.Pose.FOV,
		Width:         req.Width,
		Height:        req.Height,
		Samples:       req.Samples,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode render request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "build render request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Let the cache map this to RENDER_TIMEOUT.
			return nil, context.DeadlineExceeded
		}
		return nil, errs.Wrap(errs.ErrCodeRenderTransient, err, "render backend unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderTransient, err, "read render response")
	}
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeRenderTransient, "render backend returned empty image")
	}
	return data, nil
}

// classifyStatus maps backend HTTP statuses onto the error taxonomy.
func classifyStatus(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusUnprocessableEntity:
		// Unknown venue or template: deterministic, retrying cannot help.
		return errs.New(errs.ErrCodeRenderFatal, "render rejected (%d): %s",
			resp.StatusCode, bytes.TrimSpace(detail))
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return errs.New(errs.ErrCodeRenderTransient, "render backend error (%d): %s",
			resp.StatusCode, bytes.TrimSpace(detail))
	default:
		return errs.New(errs.ErrCodeRenderFatal, "unexpected render response %d: %s",
			resp.StatusCode, bytes.TrimSpace(detail))
	}
}

// Retry executes fn up to attempts times with exponential backoff, retrying
// only transient failure classes. Deterministic failures return immediately.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled
// while backing off.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errs.Transient(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// Retrying wraps a Client so every Render retries transient failures.
type Retrying struct {
	Client   Client
	Attempts int
	Delay    time.Duration
}

// NewRetrying wraps client with retry defaults: 3 attempts, 1s initial
// backoff doubling per retry.
func NewRetrying(client Client) *Retrying {
	return &Retrying{Client: client, Attempts: 3, Delay: time.Second}
}

// Render implements Client.
func (r *Retrying) Render(ctx context.Context, req Request) ([]byte, error) {
	var data []byte
	err := Retry(ctx, r.Attempts, r.Delay, func() error {
		var renderErr error
		data, renderErr = r.Client.Render(ctx, req)
		return renderErr
	})
	if err != nil {
		return nil, fmt.Errorf("render %s/%s: %w", req.VenueID, req.Template, err)
	}
	return data, nil
}
