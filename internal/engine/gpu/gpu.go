// Package gpu defines the device and surface the viewer renders through.
// The OpenGL implementation lives in internal/engine/renderer; gputest
// provides a tracking double for tests.
package gpu

import (
	"errors"
	"image"

	"github.com/Faultbox/relive/internal/engine/lighting"
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

// ErrReleased is returned when drawing to a released surface.
var ErrReleased = errors.New("gpu: surface released")

// Geometry is a handle to uploaded vertex data. Zero is never a valid handle.
type Geometry uint32

// Texture is a handle to an uploaded texture. Zero means "no texture".
type Texture uint32

// Primitive selects how geometry vertices are assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// Device allocates and frees GPU resources. Every handle returned by a
// Create call must be released exactly once.
type Device interface {
	CreateGeometry(g *mesh.Geometry, prim Primitive) (Geometry, error)
	CreateTexture(img *image.RGBA) (Texture, error)
	ReleaseGeometry(h Geometry)
	ReleaseTexture(h Texture)
}

// Surface is a drawable attached to a host.
type Surface interface {
	Device() Device
	Size() (width, height int)
	Resize(width, height int)
	Draw(f *Frame) error
	ReadPixels() (*image.RGBA, error)
	Release()
}

// Material is the per-draw shading state.
type Material struct {
	Color     [3]float32
	Opacity   float32
	Roughness float32
	Metalness float32
	Side      mesh.Side
	Texture   Texture
}

// DrawItem is one geometry drawn with one material.
type DrawItem struct {
	Name      string
	Geometry  Geometry
	Primitive Primitive
	Model     math.Mat4
	Material  Material

	CastShadow    bool
	ReceiveShadow bool
}

// Frame is everything needed to render one image.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3
	Clear      [3]float32
	Lights     []lighting.Light
	Items      []DrawItem
	Bounds     math.Box3 // world bounds of shadow casters
}
