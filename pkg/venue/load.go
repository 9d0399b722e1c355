package venue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
)

// venueFile mirrors the on-disk TOML layout. TOML table keys are strings,
// so tiers are keyed by their string form and converted during resolve.
type venueFile struct {
	ID          string              `toml:"id"`
	Name        string              `toml:"name"`
	Type        string              `toml:"type"`
	Template    string              `toml:"template"`
	Seatmap     Seatmap             `toml:"seatmap"`
	FieldCenter Point3              `toml:"field_center"`
	Tiers       map[string]tierFile `toml:"tiers"`
	Sections    []sectionFile       `toml:"sections"`
}

type tierFile struct {
	Elevation     float64    `toml:"elevation"`
	DistanceRange [2]float64 `toml:"distance_range"`
}

type sectionFile struct {
	ID       string      `toml:"id"`
	Tier     int         `toml:"tier"`
	Polygon  [][]float64 `toml:"polygon"`
	Angle    float64     `toml:"angle"`
	RowCount int         `toml:"row_count"`
}

// Load reads and validates a single venue config file.
func Load(path string) (*Venue, error) {
	var f venueFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidVenueConfig, err, "decode %s", path)
	}
	v, err := f.resolve()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadDir loads every venue under dir. It accepts both flat "<id>.toml"
// files and the "<id>/config.toml" per-venue directory layout. Venues are
// returned sorted by ID.
func LoadDir(dir string) ([]*Venue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read venue dir: %w", err)
	}

	var venues []*Venue
	for _, e := range entries {
		var path string
		switch {
		case e.IsDir():
			path = filepath.Join(dir, e.Name(), "config.toml")
			if _, err := os.Stat(path); err != nil {
				continue
			}
		case filepath.Ext(e.Name()) == ".toml":
			path = filepath.Join(dir, e.Name())
		default:
			continue
		}

		v, err := Load(path)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}

	sort.Slice(venues, func(i, j int) bool { return venues[i].ID < venues[j].ID })
	return venues, nil
}

// resolve converts the raw file form into a validated Venue.
func (f *venueFile) resolve() (*Venue, error) {
	vt, err := ParseType(f.Type)
	if err != nil {
		return nil, err
	}

	tiers := make(map[int]Tier, len(f.Tiers))
	for key, t := range f.Tiers {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, errs.New(errs.ErrCodeInvalidVenueConfig,
				"venue %q: tier key %q is not a number", f.ID, key)
		}
		tiers[n] = Tier{
			Elevation:   t.Elevation,
			MinDistance: t.DistanceRange[0],
			MaxDistance: t.DistanceRange[1],
		}
	}

	sections := make([]Section, 0, len(f.Sections))
	for _, s := range f.Sections {
		poly := make(geometry.Polygon, 0, len(s.Polygon))
		for _, pair := range s.Polygon {
			if len(pair) != 2 {
				return nil, errs.New(errs.ErrCodeInvalidVenueConfig,
					"venue %q: section %q has a polygon vertex with %d coordinates",
					f.ID, s.ID, len(pair))
			}
			poly = append(poly, geometry.Point{X: pair[0], Y: pair[1]})
		}
		sections = append(sections, Section{
			ID:       s.ID,
			Tier:     s.Tier,
			Polygon:  poly,
			Angle:    s.Angle,
			RowCount: s.RowCount,
		})
	}

	v := &Venue{
		ID:          f.ID,
		Name:        f.Name,
		Type:        vt,
		Template:    f.Template,
		Seatmap:     f.Seatmap,
		FieldCenter: f.FieldCenter,
		Tiers:       tiers,
		Sections:    sections,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}
