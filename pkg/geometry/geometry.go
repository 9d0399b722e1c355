// Package geometry provides the pure 2D math used to resolve seatmap clicks.
//
// All coordinates are normalized to the unit square ([0,1]×[0,1]) of the
// seatmap image. Every function is deterministic and side-effect free, which
// is what makes camera poses reproducible and therefore cacheable.
package geometry

import (
	"math"
	"sort"
)

// Point is a 2D point in normalized seatmap coordinates.
type Point struct {
	X float64
	Y float64
}

// Polygon is a simple (non-self-intersecting) polygon with at least three
// vertices. The ring does not need to be explicitly closed.
type Polygon []Point

// Region pairs an identifier with a polygon, for nearest-region fallback.
type Region struct {
	ID      string
	Polygon Polygon
}

// epsilon for boundary comparisons in normalized coordinates.
const eps = 1e-9

// PointInPolygon reports whether p lies inside poly using the ray casting
// algorithm. Points exactly on an edge or vertex count as inside (closed
// polygon semantics) so clicks on section borders never fall through.
func PointInPolygon(p Point, poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[j]

		if onSegment(p, a, b) {
			return true
		}

		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// onSegment reports whether p lies on the segment [a, b] within epsilon.
func onSegment(p, a, b Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > eps {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}

// Centroid returns the vertex average of the polygon.
// Returns the origin for an empty polygon.
func Centroid(poly Polygon) Point {
	if len(poly) == 0 {
		return Point{}
	}
	var c Point
	for _, v := range poly {
		c.X += v.X
		c.Y += v.Y
	}
	c.X /= float64(len(poly))
	c.Y /= float64(len(poly))
	return c
}

// Area returns the absolute area of the polygon via the shoelace formula.
// Collinear or repeated vertices yield zero.
func Area(poly Polygon) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		sum += poly[j].X*poly[i].Y - poly[i].X*poly[j].Y
		j = i
	}
	return math.Abs(sum) / 2
}

// Bounds returns the axis-aligned bounding box of the polygon.
func Bounds(poly Polygon) (min, max Point) {
	if len(poly) == 0 {
		return Point{}, Point{}
	}
	min, max = poly[0], poly[0]
	for _, v := range poly[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// NearestRegion returns the region whose centroid is closest to p by
// Euclidean distance, along with that distance. Ties are broken by the
// lexicographically lowest region ID so the result is deterministic.
// Returns ("", 0) when regions is empty.
func NearestRegion(p Point, regions []Region) (string, float64) {
	if len(regions) == 0 {
		return "", 0
	}

	// Sort a copy of the indices by ID so equal distances resolve to the
	// lowest identifier regardless of input order.
	idx := make([]int, len(regions))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return regions[idx[i]].ID < regions[idx[j]].ID
	})

	bestID := ""
	bestDist := math.Inf(1)
	for _, i := range idx {
		d := Distance(p, Centroid(regions[i].Polygon))
		if d < bestDist-eps {
			bestDist = d
			bestID = regions[i].ID
		}
	}
	return bestID, bestDist
}

// InterpolateDepth projects p onto the polygon's depth axis and returns its
// normalized position t in [0,1], where 0 is the front row (the edge nearer
// toward, typically the field center) and 1 is the back row.
//
// The depth axis is the longest dimension of the polygon's bounding box.
// Sections on a seatmap are drawn radiating away from the field, so the long
// box dimension tracks row depth closely enough for camera placement.
func InterpolateDepth(p Point, poly Polygon, toward Point) float64 {
	min, max := Bounds(poly)
	dx := max.X - min.X
	dy := max.Y - min.Y

	var t float64
	var frontAtMin bool
	if dx >= dy {
		if dx < eps {
			return 0.5
		}
		t = (p.X - min.X) / dx
		frontAtMin = math.Abs(min.X-toward.X) <= math.Abs(max.X-toward.X)
	} else {
		if dy < eps {
			return 0.5
		}
		t = (p.Y - min.Y) / dy
		frontAtMin = math.Abs(min.Y-toward.Y) <= math.Abs(max.Y-toward.Y)
	}

	if !frontAtMin {
		t = 1 - t
	}
	return Clamp(t, 0, 1)
}

// LateralOffset returns p's position across the polygon's lateral axis (the
// bounding-box dimension orthogonal to the depth axis), normalized to
// [-0.5, 0.5] with 0 at the section's lateral middle. Used to spread camera
// angles for different seats within one section.
func LateralOffset(p Point, poly Polygon) float64 {
	min, max := Bounds(poly)
	dx := max.X - min.X
	dy := max.Y - min.Y

	var u float64
	if dx >= dy {
		// Depth runs along X, lateral along Y.
		if dy < eps {
			return 0
		}
		u = (p.Y - min.Y) / dy
	} else {
		if dx < eps {
			return 0
		}
		u = (p.X - min.X) / dx
	}
	return Clamp(u-0.5, -0.5, 0.5)
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
