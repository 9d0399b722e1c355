// Package venue defines the in-memory venue model: sections, tiers, and
// field geometry. Venues are validated once at load time and treated as
// read-only for the lifetime of the process; a reload is always a full
// replacement through the Registry, never an in-place mutation.
package venue

import (
	"sort"

	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
)

// Type is the closed set of supported venue types. Unknown values are
// rejected at load time rather than flowing silently into geometry math.
type Type string

const (
	TypeBaseball   Type = "baseball"
	TypeHockey     Type = "hockey"
	TypeBasketball Type = "basketball"
	TypeFootball   Type = "football"
)

// ParseType validates a venue type string.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeBaseball, TypeHockey, TypeBasketball, TypeFootball:
		return t, nil
	}
	return "", errs.New(errs.ErrCodeInvalidVenueType, "unknown venue type %q", s)
}

// String returns the type as its config spelling.
func (t Type) String() string { return string(t) }

// Point3 is a 3D point in meters, in the render template's coordinate space.
type Point3 struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
	Z float64 `toml:"z" json:"z"`
}

// Seatmap describes the 2D image the UI presents as the click surface.
type Seatmap struct {
	File   string `toml:"file" json:"file"`
	Width  int    `toml:"width" json:"width"`
	Height int    `toml:"height" json:"height"`
}

// Tier is an elevation band shared by one or more sections.
type Tier struct {
	// Elevation is the height above the field plane in meters.
	Elevation float64
	// MinDistance and MaxDistance bound the tier's distance from the
	// field center in meters. Depth within a section interpolates
	// between them.
	MinDistance float64
	MaxDistance float64
}

// Section is a polygonal region of the seatmap.
type Section struct {
	ID   string
	Tier int
	// Polygon is the section outline in normalized [0,1] coordinates.
	Polygon geometry.Polygon
	// Angle is the section's position around the field center, degrees.
	Angle float64
	// RowCount is optional metadata for finer seat positioning; zero
	// means unknown.
	RowCount int
}

// Venue is a fully resolved, validated venue configuration.
type Venue struct {
	ID          string
	Name        string
	Type        Type
	Template    string
	Seatmap     Seatmap
	FieldCenter Point3
	Tiers       map[int]Tier
	Sections    []Section

	// byID indexes sections for O(1) lookup; built by Validate.
	byID map[string]*Section
}

// SectionByID returns the section with the given ID, or nil.
func (v *Venue) SectionByID(id string) *Section {
	return v.byID[id]
}

// TierFor returns the tier configuration for a section.
func (v *Venue) TierFor(s *Section) (Tier, bool) {
	t, ok := v.Tiers[s.Tier]
	return t, ok
}

// SectionIDs returns all section IDs in ascending order.
func (v *Venue) SectionIDs() []string {
	ids := make([]string, 0, len(v.Sections))
	for i := range v.Sections {
		ids = append(ids, v.Sections[i].ID)
	}
	sort.Strings(ids)
	return ids
}

// Regions returns the sections as geometry regions for nearest-section
// fallback.
func (v *Venue) Regions() []geometry.Region {
	regions := make([]geometry.Region, 0, len(v.Sections))
	for i := range v.Sections {
		regions = append(regions, geometry.Region{
			ID:      v.Sections[i].ID,
			Polygon: v.Sections[i].Polygon,
		})
	}
	return regions
}

// minSectionArea rejects collapsed polygons (collinear or repeated
// vertices) at load time. Normalized seatmap sections are orders of
// magnitude larger than this.
const minSectionArea = 1e-9

// Validate checks the structural invariants and builds internal indexes.
// It fails fast with INVALID_VENUE_CONFIG so malformed venues are rejected
// at the boundary, before any mapping request can reach them.
func (v *Venue) Validate() error {
	if v.ID == "" {
		return errs.New(errs.ErrCodeInvalidVenueConfig, "venue ID is required")
	}
	if _, err := ParseType(string(v.Type)); err != nil {
		return err
	}
	if v.Template == "" {
		return errs.New(errs.ErrCodeInvalidVenueConfig, "venue %q: template is required", v.ID)
	}
	if len(v.Sections) == 0 {
		return errs.New(errs.ErrCodeInvalidVenueConfig, "venue %q has no sections", v.ID)
	}

	for tier, t := range v.Tiers {
		if t.MinDistance <= 0 || t.MaxDistance <= 0 {
			return errs.New(errs.ErrCodeInvalidVenueConfig,
				"venue %q tier %d: distance range must be positive", v.ID, tier)
		}
		if t.MinDistance > t.MaxDistance {
			return errs.New(errs.ErrCodeInvalidVenueConfig,
				"venue %q tier %d: min distance %.1f exceeds max %.1f",
				v.ID, tier, t.MinDistance, t.MaxDistance)
		}
	}

	v.byID = make(map[string]*Section, len(v.Sections))
	for i := range v.Sections {
		s := &v.Sections[i]
		if s.ID == "" {
			return errs.New(errs.ErrCodeInvalidVenueConfig, "venue %q: section with empty ID", v.ID)
		}
		if _, dup := v.byID[s.ID]; dup {
			return errs.New(errs.ErrCodeInvalidVenueConfig,
				"venue %q: duplicate section ID %q", v.ID, s.ID)
		}
		if _, ok := v.Tiers[s.Tier]; !ok {
			return errs.New(errs.ErrCodeInvalidVenueConfig,
				"venue %q: section %q references unknown tier %d", v.ID, s.ID, s.Tier)
		}
		if len(s.Polygon) < 3 {
			return errs.New(errs.ErrCodeInvalidVenueConfig,
				"venue %q: section %q polygon has %d vertices, need at least 3",
				v.ID, s.ID, len(s.Polygon))
		}
		for _, p := range s.Polygon {
			if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
				return errs.New(errs.ErrCodeInvalidVenueConfig,
					"venue %q: section %q vertex (%.3f, %.3f) outside normalized bounds",
					v.ID, s.ID, p.X, p.Y)
			}
		}
		if geometry.Area(s.Polygon) < minSectionArea {
			return errs.New(errs.ErrCodeInvalidVenueConfig,
				"venue %q: section %q polygon is degenerate (zero area)", v.ID, s.ID)
		}
		v.byID[s.ID] = s
	}
	return nil
}
