// Package mapper converts a normalized 2D seatmap click into a deterministic
// 3D camera pose using the venue's section geometry.
//
// The conversion is pure CPU work over the read-only venue model: mappers
// hold no mutable state, perform no I/O, and may run fully in parallel.
package mapper

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/seatlens/seatlens/pkg/camera"
	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
	"github.com/seatlens/seatlens/pkg/venue"
)

// seatmapCenter is the normalized seatmap point treated as the field center
// for depth orientation: sections face it, so the polygon edge nearer to it
// is the front row.
var seatmapCenter = geometry.Point{X: 0.5, Y: 0.5}

// Resolution describes how a click was resolved to a section. Geometry
// ambiguities are never errors; they are resolved deterministically and
// reported here so they stay observable.
type Resolution struct {
	SectionID string  `json:"section_id"`
	Tier      int     `json:"tier"`
	Depth     float64 `json:"depth"`   // 0 = front row, 1 = back row
	Lateral   float64 `json:"lateral"` // -0.5..0.5 across the section
	Distance  float64 `json:"distance"`
	Angle     float64 `json:"angle"` // degrees, after lateral offset

	// OutOfBounds marks clicks outside every section polygon that were
	// resolved by nearest-centroid fallback.
	OutOfBounds bool `json:"out_of_bounds,omitempty"`
	// Overlap marks clicks inside more than one polygon (malformed venue
	// data), resolved to the lowest section ID.
	Overlap bool `json:"overlap,omitempty"`
}

// Mapper maps clicks for a single venue.
type Mapper struct {
	venue  *venue.Venue
	consts Constants
	logger *log.Logger

	// sections sorted by ID, so containment scans resolve overlap ties
	// to the lowest identifier without extra bookkeeping.
	sections []*venue.Section
}

// New creates a mapper for the given venue. A nil logger falls back to the
// package default.
func New(v *venue.Venue, logger *log.Logger) *Mapper {
	if logger == nil {
		logger = log.Default()
	}

	sections := make([]*venue.Section, 0, len(v.Sections))
	for i := range v.Sections {
		sections = append(sections, &v.Sections[i])
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].ID < sections[j].ID })

	return &Mapper{
		venue:    v,
		consts:   ConstantsFor(v.Type),
		logger:   logger,
		sections: sections,
	}
}

// Venue returns the mapper's venue.
func (m *Mapper) Venue() *venue.Venue { return m.venue }

// Map converts a click into a camera pose. The click is clamped into the
// unit square first, so every click produces some pose; the only error is a
// venue with zero sections, which is a caller bug that load-time validation
// normally prevents.
func (m *Mapper) Map(click geometry.Point) (camera.Pose, Resolution, error) {
	if len(m.sections) == 0 {
		return camera.Pose{}, Resolution{}, errs.New(errs.ErrCodeSectionResolution,
			"venue %q has no sections", m.venue.ID)
	}

	click.X = geometry.Clamp(click.X, 0, 1)
	click.Y = geometry.Clamp(click.Y, 0, 1)

	section, res := m.resolveSection(click)

	tier, ok := m.venue.TierFor(section)
	if !ok {
		return camera.Pose{}, Resolution{}, errs.New(errs.ErrCodeInternal,
			"venue %q: section %q references missing tier %d", m.venue.ID, section.ID, section.Tier)
	}
	res.Tier = section.Tier

	res.Depth = geometry.InterpolateDepth(click, section.Polygon, seatmapCenter)
	res.Lateral = geometry.LateralOffset(click, section.Polygon)
	res.Distance = geometry.Lerp(tier.MinDistance, tier.MaxDistance, res.Depth)
	res.Angle = section.Angle + res.Lateral*m.consts.LateralSpread

	pose := m.pose(res, tier)
	return pose, res, nil
}

// resolveSection finds the section containing the click, applying the
// lowest-ID tie-break for overlapping polygons and the nearest-centroid
// fallback for out-of-bounds clicks.
func (m *Mapper) resolveSection(click geometry.Point) (*venue.Section, Resolution) {
	var hits []*venue.Section
	for _, s := range m.sections {
		if geometry.PointInPolygon(click, s.Polygon) {
			hits = append(hits, s)
		}
	}

	switch len(hits) {
	case 1:
		return hits[0], Resolution{SectionID: hits[0].ID}
	case 0:
		id, dist := geometry.NearestRegion(click, m.venue.Regions())
		m.logger.Debug("click outside all sections, using nearest",
			"venue", m.venue.ID, "section", id, "distance", dist,
			"x", click.X, "y", click.Y)
		return m.venue.SectionByID(id), Resolution{SectionID: id, OutOfBounds: true}
	default:
		ids := make([]string, len(hits))
		for i, s := range hits {
			ids[i] = s.ID
		}
		m.logger.Warn("click inside overlapping sections, using lowest ID",
			"venue", m.venue.ID, "sections", ids)
		// m.sections is ID-sorted, so the first hit is the lowest.
		return hits[0], Resolution{SectionID: hits[0].ID, Overlap: true}
	}
}

// pose places the camera in cylindrical coordinates around the field center
// and derives the look-at target and field of view.
func (m *Mapper) pose(res Resolution, tier venue.Tier) camera.Pose {
	fc := m.venue.FieldCenter
	rad := res.Angle * math.Pi / 180

	sin, cos := math.Sin(rad), math.Cos(rad)

	position := camera.Vec3{
		X: fc.X + res.Distance*sin,
		Y: fc.Y - res.Distance*cos,
		Z: fc.Z + tier.Elevation,
	}

	// Pull the target slightly toward the seat's azimuth so the view
	// feels like looking at the action, not staring at dead center.
	target := camera.Vec3{
		X: fc.X + m.consts.TargetPull*sin,
		Y: fc.Y - m.consts.TargetPull*cos,
		Z: fc.Z,
	}

	return camera.Pose{
		Position: position,
		Target:   target,
		FOV:      m.fov(res.Distance),
	}
}

// fov narrows the field of view monotonically with distance, clamped to the
// venue type's range.
func (m *Mapper) fov(distance float64) float64 {
	c := m.consts
	t := geometry.Clamp((distance-c.NearDistance)/(c.FarDistance-c.NearDistance), 0, 1)
	return geometry.Clamp(geometry.Lerp(c.WideFOV, c.NarrowFOV, t), c.NarrowFOV, c.WideFOV)
}
