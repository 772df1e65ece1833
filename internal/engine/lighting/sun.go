// Package lighting describes the lights of a viewer scene.
package lighting

import (
	"math"

	rmath "github.com/Faultbox/relive/pkg/math"
)

// Direction converts a longitude (rotation around Y, degrees) and latitude
// (elevation from the horizon, degrees) into a unit vector pointing toward
// the light.
func Direction(longitude, latitude float64) rmath.Vec3 {
	lonRad := longitude * math.Pi / 180.0
	latRad := latitude * math.Pi / 180.0

	return rmath.Vec3{
		X: float32(math.Cos(latRad) * math.Sin(lonRad)),
		Y: float32(math.Sin(latRad)),
		Z: float32(math.Cos(latRad) * math.Cos(lonRad)),
	}
}

// DirectionTo returns the unit vector from the origin toward p. Directional
// lights placed at a position shine from there toward the origin.
func DirectionTo(p rmath.Vec3) rmath.Vec3 {
	return p.Normalize()
}
