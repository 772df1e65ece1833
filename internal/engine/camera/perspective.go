// Package camera provides the perspective camera and the orbit/pan
// interaction controller that drives it.
package camera

import (
	gomath "math"

	"github.com/Faultbox/relive/pkg/math"
)

// Perspective is a perspective camera looking from Position at Target.
type Perspective struct {
	FOV    float64 // vertical field of view, degrees
	Aspect float64 // width / height
	Near   float64
	Far    float64
	Zoom   float64 // narrows the effective FOV; 1 is neutral

	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float64) *Perspective {
	if aspect <= 0 {
		aspect = 1
	}
	return &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Zoom:   1,
		Target: math.Vec3{Z: -1},
		Up:     math.Vec3{Y: 1},
	}
}

// EffectiveFOV returns the vertical field of view in degrees after zoom.
func (p *Perspective) EffectiveFOV() float64 {
	zoom := p.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	half := p.FOV * gomath.Pi / 360
	return 2 * gomath.Atan(gomath.Tan(half)/zoom) * 180 / gomath.Pi
}

// Projection returns the projection matrix.
func (p *Perspective) Projection() math.Mat4 {
	fovRad := p.EffectiveFOV() * gomath.Pi / 180
	return math.Perspective(float32(fovRad), float32(p.Aspect), float32(p.Near), float32(p.Far))
}

// View returns the view matrix.
func (p *Perspective) View() math.Mat4 {
	return math.LookAt(p.Position, p.Target, p.Up)
}

// SetAspect updates the aspect ratio from a pixel size. Degenerate sizes
// are ignored.
func (p *Perspective) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.Aspect = float64(width) / float64(height)
}

// Forward returns the normalized view direction.
func (p *Perspective) Forward() math.Vec3 {
	return p.Target.Sub(p.Position).Normalize()
}
