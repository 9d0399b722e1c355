package mapper

import (
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
	"github.com/seatlens/seatlens/pkg/venue"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// yankeeVenue builds the venue from the behind-home-plate scenario: section
// 101 on tier 100 with distance range [20,40], elevation 5, angle 0.
func yankeeVenue(t *testing.T) *venue.Venue {
	t.Helper()
	v := &venue.Venue{
		ID:       "yankee_stadium",
		Name:     "Yankee Stadium",
		Type:     venue.TypeBaseball,
		Template: "yankee_stadium.blend",
		Tiers: map[int]venue.Tier{
			100: {Elevation: 5, MinDistance: 20, MaxDistance: 40},
			400: {Elevation: 38, MinDistance: 70, MaxDistance: 100},
		},
		Sections: []venue.Section{
			{
				ID:   "101",
				Tier: 100,
				// Directly below the seatmap center: front row at y=0.55.
				Polygon: geometry.Polygon{{X: 0.45, Y: 0.55}, {X: 0.55, Y: 0.55}, {X: 0.55, Y: 0.75}, {X: 0.45, Y: 0.75}},
				Angle:   0,
			},
			{
				ID:      "420",
				Tier:    400,
				Polygon: geometry.Polygon{{X: 0.45, Y: 0.80}, {X: 0.55, Y: 0.80}, {X: 0.55, Y: 0.95}, {X: 0.45, Y: 0.95}},
				Angle:   0,
			},
		},
	}
	if err := v.Validate(); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestMapScenarioBehindHomePlate(t *testing.T) {
	m := New(yankeeVenue(t), testLogger())

	// Exact centroid of section 101: depth 0.5, lateral 0.
	pose, res, err := m.Map(geometry.Point{X: 0.5, Y: 0.65})
	if err != nil {
		t.Fatal(err)
	}

	if res.SectionID != "101" || res.OutOfBounds || res.Overlap {
		t.Fatalf("resolution = %+v", res)
	}
	if math.Abs(res.Depth-0.5) > 1e-9 {
		t.Errorf("depth = %v, want 0.5", res.Depth)
	}
	if res.Distance != 30 {
		t.Errorf("distance = %v, want 30", res.Distance)
	}
	if res.Angle != 0 {
		t.Errorf("angle = %v, want 0", res.Angle)
	}

	// Cylindrical-to-cartesian at angle 0 is exact: sin(0)=0, cos(0)=1.
	if pose.Position.X != 0 || pose.Position.Y != -30 || pose.Position.Z != 5 {
		t.Errorf("position = %+v, want (0, -30, 5)", pose.Position)
	}
}

func TestMapDeterministic(t *testing.T) {
	m := New(yankeeVenue(t), testLogger())
	click := geometry.Point{X: 0.4871, Y: 0.6123}

	a, _, err := m.Map(click)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := m.Map(click)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same click produced different poses:\n%+v\n%+v", a, b)
	}
}

func TestMapInsideSection(t *testing.T) {
	m := New(yankeeVenue(t), testLogger())

	tests := []struct {
		name    string
		click   geometry.Point
		section string
	}{
		{"front of 101", geometry.Point{X: 0.5, Y: 0.56}, "101"},
		{"back of 101", geometry.Point{X: 0.46, Y: 0.74}, "101"},
		{"upper deck", geometry.Point{X: 0.5, Y: 0.9}, "420"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, err := m.Map(tt.click)
			if err != nil {
				t.Fatal(err)
			}
			if res.SectionID != tt.section {
				t.Errorf("section = %s, want %s", res.SectionID, tt.section)
			}
			if res.OutOfBounds {
				t.Error("in-polygon click flagged out of bounds")
			}
		})
	}
}

func TestMapOutOfBounds(t *testing.T) {
	m := New(yankeeVenue(t), testLogger())

	// Far corner, outside every polygon but nearer to 420's centroid
	// (0.5, 0.875) than 101's (0.5, 0.65).
	pose, res, err := m.Map(geometry.Point{X: 0.9, Y: 0.95})
	if err != nil {
		t.Fatal(err)
	}

	if !res.OutOfBounds {
		t.Error("out-of-polygon click should be flagged")
	}
	if res.SectionID != "420" {
		t.Errorf("nearest section = %s, want 420", res.SectionID)
	}
	// Still a valid pose: the system never rejects a click.
	if pose.FOV == 0 {
		t.Error("fallback click should still produce a full pose")
	}
}

func TestMapOverlapTieBreak(t *testing.T) {
	v := yankeeVenue(t)
	// Duplicate 101's polygon under a higher ID so both contain the click.
	v.Sections = append(v.Sections, venue.Section{
		ID:      "109",
		Tier:    100,
		Polygon: v.Sections[0].Polygon,
		Angle:   15,
	})
	if err := v.Validate(); err != nil {
		t.Fatal(err)
	}
	m := New(v, testLogger())

	_, res, err := m.Map(geometry.Point{X: 0.5, Y: 0.65})
	if err != nil {
		t.Fatal(err)
	}
	if res.SectionID != "101" {
		t.Errorf("overlap resolved to %s, want lowest ID 101", res.SectionID)
	}
	if !res.Overlap {
		t.Error("overlap should be flagged for observability")
	}
}

func TestMapNoSections(t *testing.T) {
	v := &venue.Venue{ID: "empty", Type: venue.TypeBaseball, Template: "x.blend"}
	m := New(v, testLogger())

	_, _, err := m.Map(geometry.Point{X: 0.5, Y: 0.5})
	if !errs.Is(err, errs.ErrCodeSectionResolution) {
		t.Errorf("error = %v, want SECTION_RESOLUTION", err)
	}
}

func TestMapClampsClick(t *testing.T) {
	m := New(yankeeVenue(t), testLogger())

	// Coordinates outside the unit square still resolve deterministically.
	_, res, err := m.Map(geometry.Point{X: 1.7, Y: -0.3})
	if err != nil {
		t.Fatal(err)
	}
	if res.SectionID == "" {
		t.Error("clamped click should still resolve a section")
	}
}

func TestFOVNarrowsWithDistance(t *testing.T) {
	m := New(yankeeVenue(t), testLogger())
	c := ConstantsFor(venue.TypeBaseball)

	// Front row of the lower bowl vs back row of the upper deck.
	near, _, err := m.Map(geometry.Point{X: 0.5, Y: 0.551})
	if err != nil {
		t.Fatal(err)
	}
	far, _, err := m.Map(geometry.Point{X: 0.5, Y: 0.949})
	if err != nil {
		t.Fatal(err)
	}

	if near.FOV <= far.FOV {
		t.Errorf("FOV should narrow with distance: near %v, far %v", near.FOV, far.FOV)
	}
	for _, pose := range []float64{near.FOV, far.FOV} {
		if pose < c.NarrowFOV || pose > c.WideFOV {
			t.Errorf("FOV %v outside [%v, %v]", pose, c.NarrowFOV, c.WideFOV)
		}
	}
}

func TestLateralOffsetSpreadsAngle(t *testing.T) {
	m := New(yankeeVenue(t), testLogger())

	left, lres, err := m.Map(geometry.Point{X: 0.46, Y: 0.65})
	if err != nil {
		t.Fatal(err)
	}
	right, rres, err := m.Map(geometry.Point{X: 0.54, Y: 0.65})
	if err != nil {
		t.Fatal(err)
	}

	if lres.Angle >= rres.Angle {
		t.Errorf("left angle %v should be below right angle %v", lres.Angle, rres.Angle)
	}
	if left.Position.X >= right.Position.X {
		t.Errorf("left seat X %v should be west of right seat X %v",
			left.Position.X, right.Position.X)
	}
}

func TestConstantsForUnknownType(t *testing.T) {
	if got := ConstantsFor(venue.Type("curling")); got != constantsByType[venue.TypeBaseball] {
		t.Errorf("unknown type constants = %+v", got)
	}
}
