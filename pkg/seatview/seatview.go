// Package seatview composes the mapping engine, render cache and render
// backend into the end-to-end flow: a normalized seatmap click goes in, a
// rendered view of the field from that seat comes out.
package seatview

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seatlens/seatlens/pkg/camera"
	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
	"github.com/seatlens/seatlens/pkg/mapper"
	"github.com/seatlens/seatlens/pkg/rendercache"
	"github.com/seatlens/seatlens/pkg/renderclient"
	"github.com/seatlens/seatlens/pkg/venue"
)

// Quality selects the render preset for a view.
type Quality string

const (
	QualityPreview Quality = "preview"
	QualityFull    Quality = "full"
)

// ParseQuality parses a quality string. Empty defaults to preview.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityPreview, "":
		return QualityPreview, nil
	case QualityFull:
		return QualityFull, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidClick, "unknown quality %q (want preview or full)", s)
	}
}

// ViewInfo describes how a view was produced.
type ViewInfo struct {
	VenueID    string            `json:"venue_id"`
	Resolution mapper.Resolution `json:"resolution"`
	Pose       camera.Pose       `json:"pose"`
	// Fingerprint identifies the pose independent of render quality.
	Fingerprint string `json:"fingerprint"`
	// CacheKey is the key the frame is stored under, the fingerprint
	// qualified by quality. Distinct presets cache distinct frames.
	CacheKey string        `json:"cache_key"`
	Quality  Quality       `json:"quality"`
	CacheHit bool          `json:"cache_hit"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Service answers seat view requests across a set of venues. Mappers are
// built once per venue at construction; the registry snapshot taken here is
// the one served until Reload. The mapper set is swapped atomically so
// Reload is safe while requests are in flight.
type Service struct {
	venues  *venue.Registry
	cache   *rendercache.Cache
	client  renderclient.Client
	logger  *log.Logger
	mappers atomic.Pointer[map[string]*mapper.Mapper]
}

// New builds a service over the given venues. cache and client may be nil
// for mapping-only use (Pose works, View returns an error).
func New(venues *venue.Registry, cache *rendercache.Cache, client renderclient.Client, logger *log.Logger) *Service {
	s := &Service{
		venues: venues,
		cache:  cache,
		client: client,
		logger: logger,
	}
	s.rebuildMappers()
	return s
}

// Reload rebuilds the per-venue mappers after the registry was replaced.
func (s *Service) Reload() {
	s.rebuildMappers()
}

func (s *Service) rebuildMappers() {
	mappers := make(map[string]*mapper.Mapper)
	for _, id := range s.venues.IDs() {
		v, err := s.venues.Get(id)
		if err != nil {
			continue
		}
		mappers[id] = mapper.New(v, s.logger)
	}
	s.mappers.Store(&mappers)
}

// Venues returns the IDs of the venues this service can map.
func (s *Service) Venues() []string {
	return s.venues.IDs()
}

// Venue returns the venue with the given ID.
func (s *Service) Venue(id string) (*venue.Venue, error) {
	return s.venues.Get(id)
}

// Pose maps a click on a venue's seatmap to a camera pose without
// rendering anything.
func (s *Service) Pose(venueID string, click geometry.Point) (camera.Pose, mapper.Resolution, error) {
	m, ok := (*s.mappers.Load())[venueID]
	if !ok {
		return camera.Pose{}, mapper.Resolution{}, errs.New(errs.ErrCodeVenueNotFound, "venue %q not found", venueID)
	}
	return m.Map(click)
}

// View maps a click to a pose and returns the rendered frame for it,
// from cache when possible.
func (s *Service) View(ctx context.Context, venueID string, click geometry.Point, quality Quality) ([]byte, ViewInfo, error) {
	start := time.Now()

	if s.cache == nil || s.client == nil {
		return nil, ViewInfo{}, errs.New(errs.ErrCodeInternal, "service has no render backend configured")
	}

	pose, res, err := s.Pose(venueID, click)
	if err != nil {
		return nil, ViewInfo{}, err
	}

	v, err := s.venues.Get(venueID)
	if err != nil {
		return nil, ViewInfo{}, err
	}

	fp := camera.Fingerprint(v.ID, v.Template, res.SectionID, pose)
	// Distinct presets render distinct frames, so quality joins the key.
	key := fp + ":" + string(quality)

	var rendered bool
	data, err := s.cache.GetOrRender(ctx, key, func(renderCtx context.Context) ([]byte, error) {
		rendered = true
		req := renderclient.Preview(v.ID, v.Template, pose)
		if quality == QualityFull {
			req = renderclient.Full(v.ID, v.Template, pose)
		}
		return s.client.Render(renderCtx, req)
	})
	if err != nil {
		return nil, ViewInfo{}, err
	}

	info := ViewInfo{
		VenueID:     venueID,
		Resolution:  res,
		Pose:        pose,
		Fingerprint: fp,
		CacheKey:    key,
		Quality:     quality,
		CacheHit:    !rendered,
		Elapsed:     time.Since(start),
	}

	s.logger.Debug("view served",
		"venue", venueID,
		"section", res.SectionID,
		"quality", quality,
		"cache_hit", info.CacheHit,
		"elapsed", info.Elapsed)

	return data, info, nil
}
