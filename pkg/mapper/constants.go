package mapper

import "github.com/seatlens/seatlens/pkg/venue"

// Constants tune the click-to-pose conversion for one venue type. They are
// named, per-type design constants rather than inline literals so the
// mapping function stays auditable and testable in isolation. None of them
// are user-configurable.
type Constants struct {
	// NearDistance and FarDistance bound the distance range over which
	// the field of view narrows.
	NearDistance float64
	FarDistance  float64

	// WideFOV is the field of view (degrees) at NearDistance and closer;
	// NarrowFOV at FarDistance and beyond. WideFOV > NarrowFOV, so closer
	// seats get the wider view.
	WideFOV   float64
	NarrowFOV float64

	// LateralSpread is the total angular spread (degrees) across one
	// section's width, differentiating seats within the section.
	LateralSpread float64

	// TargetPull offsets the look-at target from the field center toward
	// the seat's azimuth by this many meters, simulating a natural
	// viewing angle instead of a dead-center stare.
	TargetPull float64
}

// constantsByType holds the tuning for each supported venue type.
var constantsByType = map[venue.Type]Constants{
	venue.TypeBaseball: {
		NearDistance: 20, FarDistance: 100,
		WideFOV: 70, NarrowFOV: 45,
		LateralSpread: 12, TargetPull: 8,
	},
	venue.TypeHockey: {
		NearDistance: 10, FarDistance: 60,
		WideFOV: 65, NarrowFOV: 40,
		LateralSpread: 14, TargetPull: 4,
	},
	venue.TypeBasketball: {
		NearDistance: 8, FarDistance: 50,
		WideFOV: 65, NarrowFOV: 40,
		LateralSpread: 14, TargetPull: 3,
	},
	venue.TypeFootball: {
		NearDistance: 25, FarDistance: 120,
		WideFOV: 70, NarrowFOV: 45,
		LateralSpread: 10, TargetPull: 10,
	},
}

// ConstantsFor returns the tuning constants for a venue type. Unknown types
// fall back to the baseball constants; load-time validation makes that
// branch unreachable in practice.
func ConstantsFor(t venue.Type) Constants {
	if c, ok := constantsByType[t]; ok {
		return c
	}
	return constantsByType[venue.TypeBaseball]
}
