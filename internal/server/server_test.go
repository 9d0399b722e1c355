package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
	"github.com/seatlens/seatlens/pkg/rendercache"
	"github.com/seatlens/seatlens/pkg/renderclient"
	"github.com/seatlens/seatlens/pkg/seatview"
	"github.com/seatlens/seatlens/pkg/venue"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type stubRenderer struct {
	err error
}

func (s *stubRenderer) Render(ctx context.Context, req renderclient.Request) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png"), nil
}

func testServer(t *testing.T, client renderclient.Client) *Server {
	t.Helper()
	v := &venue.Venue{
		ID:       "yankee_stadium",
		Name:     "Yankee Stadium",
		Type:     venue.TypeBaseball,
		Template: "yankee_stadium.blend",
		Tiers: map[int]venue.Tier{
			100: {Elevation: 5, MinDistance: 20, MaxDistance: 40},
		},
		Sections: []venue.Section{
			{
				ID:      "101",
				Tier:    100,
				Polygon: geometry.Polygon{{X: 0.45, Y: 0.55}, {X: 0.55, Y: 0.55}, {X: 0.55, Y: 0.75}, {X: 0.45, Y: 0.75}},
				Angle:   0,
			},
		},
	}
	if err := v.Validate(); err != nil {
		t.Fatal(err)
	}

	cache := rendercache.New(rendercache.Config{TTL: time.Hour}, nil, testLogger())
	svc := seatview.New(venue.NewRegistry(v), cache, client, testLogger())
	return New(svc, cache, testLogger())
}

func TestHealthz(t *testing.T) {
	srv := testServer(t, &stubRenderer{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	srv := testServer(t, &stubRenderer{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestVenueList(t *testing.T) {
	srv := testServer(t, &stubRenderer{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/venues", nil))

	var body struct {
		Venues []string `json:"venues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Venues) != 1 || body.Venues[0] != "yankee_stadium" {
		t.Errorf("venues = %v", body.Venues)
	}
}

func TestVenueDetailNotFound(t *testing.T) {
	srv := testServer(t, &stubRenderer{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/venues/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != string(errs.ErrCodeVenueNotFound) {
		t.Errorf("code = %q", body.Code)
	}
}

func TestPoseEndpoint(t *testing.T) {
	srv := testServer(t, &stubRenderer{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/venues/yankee_stadium/pose",
		strings.NewReader(`{"x": 0.5, "y": 0.65}`))
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Resolution struct {
			SectionID string  `json:"section_id"`
			Distance  float64 `json:"distance"`
		} `json:"resolution"`
		Pose struct {
			Position struct {
				Z float64 `json:"z"`
			} `json:"position"`
		} `json:"pose"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Resolution.SectionID != "101" {
		t.Errorf("section = %q", body.Resolution.SectionID)
	}
	if body.Resolution.Distance != 30 {
		t.Errorf("distance = %v, want 30", body.Resolution.Distance)
	}
	if body.Pose.Position.Z != 5 {
		t.Errorf("height = %v, want 5", body.Pose.Position.Z)
	}
}

func TestPoseBadBody(t *testing.T) {
	srv := testServer(t, &stubRenderer{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/venues/yankee_stadium/pose",
		strings.NewReader(`not json`))
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestViewEndpoint(t *testing.T) {
	srv := testServer(t, &stubRenderer{})

	body := bytes.NewReader([]byte(`{"x": 0.5, "y": 0.65, "quality": "preview"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/venues/yankee_stadium/view", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	if got := rec.Header().Get("X-Section"); got != "101" {
		t.Errorf("X-Section = %q", got)
	}
	if rec.Body.String() != "png" {
		t.Errorf("body = %q", rec.Body.String())
	}

	// Same click again comes from cache.
	rec2 := httptest.NewRecorder()
	srv.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/api/venues/yankee_stadium/view",
		strings.NewReader(`{"x": 0.5, "y": 0.65, "quality": "preview"}`)))
	if got := rec2.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", got)
	}
}

func TestViewBadQuality(t *testing.T) {
	srv := testServer(t, &stubRenderer{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/venues/yankee_stadium/view",
		strings.NewReader(`{"x": 0.5, "y": 0.65, "quality": "ultra"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestViewBackendErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"transient", errs.New(errs.ErrCodeRenderTransient, "backend down"), http.StatusBadGateway},
		{"timeout", errs.New(errs.ErrCodeRenderTimeout, "render timed out"), http.StatusGatewayTimeout},
		{"fatal", errs.New(errs.ErrCodeRenderFatal, "bad template"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, &stubRenderer{err: tt.err})
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/venues/yankee_stadium/view",
				strings.NewReader(`{"x": 0.5, "y": 0.65}`)))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	srv := testServer(t, &stubRenderer{})

	// Populate one entry.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/venues/yankee_stadium/view",
		strings.NewReader(`{"x": 0.5, "y": 0.65}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("seed view status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil))
	var stats struct {
		Misses  uint64 `json:"misses"`
		Entries int    `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v", stats)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 0 {
		t.Errorf("entries after clear = %d", stats.Entries)
	}
}
