// Package camera defines the 3D camera pose produced by the coordinate
// mapper and the fingerprint that keys the render cache.
package camera

import (
	"math"
)

// Vec3 is a 3D vector in meters, in the render template's coordinate space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is a camera orientation in Euler angles (radians), using the
// Blender convention: X pitch, Y roll, Z yaw. A camera with zero rotation
// points straight down the -Z axis.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is a complete rendering viewpoint. It is pure data, fully determined
// by the click that produced it, and immutable once returned by the mapper.
type Pose struct {
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
	FOV      float64 `json:"fov"` // degrees
}

// Rotation derives the Euler orientation that points the camera from
// Position at Target, with no roll.
func (p Pose) Rotation() Rotation {
	dx := p.Target.X - p.Position.X
	dy := p.Target.Y - p.Position.Y
	dz := p.Target.Z - p.Position.Z

	horizontal := math.Hypot(dx, dy)
	total := math.Sqrt(dx*dx + dy*dy + dz*dz)

	if total == 0 {
		// Camera exactly at the target: default to looking forward.
		return Rotation{X: math.Pi / 2}
	}

	var pitch float64
	if horizontal > 0 {
		pitch = math.Atan2(dz, horizontal)
	} else if dz > 0 {
		pitch = math.Pi / 2
	} else {
		pitch = -math.Pi / 2
	}

	return Rotation{
		// Blender: X=0 points down, X=π/2 points at the horizon.
		X: math.Pi/2 - pitch,
		Y: 0,
		Z: math.Atan2(dx, dy),
	}
}
