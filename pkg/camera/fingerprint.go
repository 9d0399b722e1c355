package camera

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
)

// Fingerprint precision constants. Rounding collapses near-identical clicks
// onto the same cached render: seat positions half a meter apart produce
// indistinguishable views, so they share a key.
const (
	// PositionPrecision is the grid size in meters that pose positions
	// and targets are snapped to before hashing.
	PositionPrecision = 0.5

	// FOVPrecision is the field-of-view rounding step in degrees.
	FOVPrecision = 0.1
)

// Fingerprint returns the stable cache key for a pose within a venue.
//
// The key hashes (venue, template, section, rounded pose). The section ID is
// part of the tuple so two distinct sections can never collide even if their
// poses round to the same grid cell. Equal rounded tuples always produce
// equal keys.
func Fingerprint(venueID, templateID, sectionID string, pose Pose) string {
	parts := []any{
		venueID,
		templateID,
		sectionID,
		roundTo(pose.Position.X, PositionPrecision),
		roundTo(pose.Position.Y, PositionPrecision),
		roundTo(pose.Position.Z, PositionPrecision),
		roundTo(pose.Target.X, PositionPrecision),
		roundTo(pose.Target.Y, PositionPrecision),
		roundTo(pose.Target.Z, PositionPrecision),
		roundTo(pose.FOV, FOVPrecision),
	}

	data, _ := json.Marshal(parts) // marshal of strings and floats cannot fail
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// roundTo snaps v to the nearest multiple of prec.
func roundTo(v, prec float64) float64 {
	r := math.Round(v/prec) * prec
	if r == 0 {
		// Normalize -0 so values either side of a grid boundary at zero
		// hash identically.
		return 0
	}
	return r
}
