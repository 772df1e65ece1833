// Package gputest provides an in-memory gpu.Device and gpu.Surface that
// track every allocation so tests can assert nothing leaks and nothing is
// freed twice.
package gputest

import (
	"fmt"
	"image"

	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/pkg/mesh"
)

// Device is a tracking gpu.Device.
type Device struct {
	next       uint32
	geometries map[gpu.Geometry]int
	textures   map[gpu.Texture]struct{}

	Created     int
	Released    int
	DoubleFrees []string

	// FailGeometry and FailTexture, when set, are returned by the next
	// matching Create call.
	FailGeometry error
	FailTexture  error
}

// NewDevice returns an empty tracking device.
func NewDevice() *Device {
	return &Device{
		geometries: make(map[gpu.Geometry]int),
		textures:   make(map[gpu.Texture]struct{}),
	}
}

func (d *Device) CreateGeometry(g *mesh.Geometry, _ gpu.Primitive) (gpu.Geometry, error) {
	if err := d.FailGeometry; err != nil {
		d.FailGeometry = nil
		return 0, err
	}
	if g == nil || g.VertexCount() == 0 {
		return 0, fmt.Errorf("gputest: empty geometry")
	}
	d.next++
	h := gpu.Geometry(d.next)
	d.geometries[h] = g.VertexCount()
	d.Created++
	return h, nil
}

func (d *Device) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	if err := d.FailTexture; err != nil {
		d.FailTexture = nil
		return 0, err
	}
	if img == nil {
		return 0, fmt.Errorf("gputest: nil texture image")
	}
	d.next++
	h := gpu.Texture(d.next)
	d.textures[h] = struct{}{}
	d.Created++
	return h, nil
}

func (d *Device) ReleaseGeometry(h gpu.Geometry) {
	if _, ok := d.geometries[h]; !ok {
		d.DoubleFrees = append(d.DoubleFrees, fmt.Sprintf("geometry %d", h))
		return
	}
	delete(d.geometries, h)
	d.Released++
}

func (d *Device) ReleaseTexture(h gpu.Texture) {
	if _, ok := d.textures[h]; !ok {
		d.DoubleFrees = append(d.DoubleFrees, fmt.Sprintf("texture %d", h))
		return
	}
	delete(d.textures, h)
	d.Released++
}

// Outstanding returns the number of live handles.
func (d *Device) Outstanding() int {
	return len(d.geometries) + len(d.textures)
}

// OutstandingGeometries returns the number of live geometry handles.
func (d *Device) OutstandingGeometries() int { return len(d.geometries) }

// OutstandingTextures returns the number of live texture handles.
func (d *Device) OutstandingTextures() int { return len(d.textures) }

// Live reports whether h is a live geometry handle.
func (d *Device) Live(h gpu.Geometry) bool {
	_, ok := d.geometries[h]
	return ok
}

// Surface is a tracking gpu.Surface.
type Surface struct {
	dev    *Device
	width  int
	height int

	Frames       int
	LastFrame    *gpu.Frame
	Resizes      [][2]int
	ReleaseCalls int
	DrawErrors   int
}

// NewSurface returns a surface of the given size backed by dev.
func NewSurface(dev *Device, width, height int) *Surface {
	return &Surface{dev: dev, width: width, height: height}
}

func (s *Surface) Device() gpu.Device { return s.dev }

func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) Resize(width, height int) {
	s.width, s.height = width, height
	s.Resizes = append(s.Resizes, [2]int{width, height})
}

// Draw records the frame. It fails after Release or when the frame refers
// to a geometry that is not live.
func (s *Surface) Draw(f *gpu.Frame) error {
	if s.Released() {
		s.DrawErrors++
		return gpu.ErrReleased
	}
	for _, it := range f.Items {
		if !s.dev.Live(it.Geometry) {
			s.DrawErrors++
			return fmt.Errorf("gputest: draw %q references dead geometry %d", it.Name, it.Geometry)
		}
	}
	s.Frames++
	s.LastFrame = f
	return nil
}

// ReadPixels returns a mid-grey image of the surface size.
func (s *Surface) ReadPixels() (*image.RGBA, error) {
	if s.Released() {
		return nil, gpu.ErrReleased
	}
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	return img, nil
}

func (s *Surface) Release() { s.ReleaseCalls++ }

// Released reports whether Release was called at least once.
func (s *Surface) Released() bool { return s.ReleaseCalls > 0 }
