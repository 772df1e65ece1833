package shadow

import (
	gomath "math"

	"github.com/Faultbox/relive/pkg/math"
)

// LightMatrix computes the view-projection of a directional light that
// covers bounds. lightDir points toward the light and must be normalized.
func LightMatrix(lightDir math.Vec3, bounds math.Box3) math.Mat4 {
	center := bounds.Center()
	radius := bounds.Size().Length() / 2
	if radius <= 0 {
		radius = 1
	}

	// Far enough back that the whole box sits in front of the light.
	lightDistance := radius * 2.0
	lightPos := center.Add(lightDir.Scale(lightDistance))

	up := math.Vec3{Y: 1}
	if gomath.Abs(float64(lightDir.Y)) > 0.99 {
		up = math.Vec3{Z: 1}
	}
	view := math.LookAt(lightPos, center, up)

	// Padding avoids clipping at the frustum edges.
	halfSize := radius * 1.1
	far := lightDistance + halfSize
	proj := math.Ortho(-halfSize, halfSize, -halfSize, halfSize, 0.1, far)

	return proj.Mul(view)
}
