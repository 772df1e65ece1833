package gputest

import (
	"errors"
	"image"
	"testing"

	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/pkg/mesh"
)

func triangle() *mesh.Geometry {
	return &mesh.Geometry{Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}}
}

func TestDeviceTracksHandles(t *testing.T) {
	d := NewDevice()
	g, err := d.CreateGeometry(triangle(), gpu.Triangles)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := d.CreateTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatal(err)
	}
	if d.Outstanding() != 2 {
		t.Fatalf("outstanding = %d, want 2", d.Outstanding())
	}

	d.ReleaseGeometry(g)
	d.ReleaseTexture(tex)
	if d.Outstanding() != 0 || len(d.DoubleFrees) != 0 {
		t.Errorf("outstanding %d, double frees %v", d.Outstanding(), d.DoubleFrees)
	}

	d.ReleaseGeometry(g)
	if len(d.DoubleFrees) != 1 {
		t.Errorf("double free not recorded: %v", d.DoubleFrees)
	}
}

func TestDeviceInjectedFailure(t *testing.T) {
	d := NewDevice()
	boom := errors.New("out of memory")
	d.FailGeometry = boom
	if _, err := d.CreateGeometry(triangle(), gpu.Triangles); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if _, err := d.CreateGeometry(triangle(), gpu.Triangles); err != nil {
		t.Errorf("failure should be one-shot, got %v", err)
	}
}

func TestSurfaceRejectsDeadGeometry(t *testing.T) {
	d := NewDevice()
	s := NewSurface(d, 4, 4)
	g, _ := d.CreateGeometry(triangle(), gpu.Triangles)

	if err := s.Draw(&gpu.Frame{Items: []gpu.DrawItem{{Geometry: g}}}); err != nil {
		t.Fatal(err)
	}
	d.ReleaseGeometry(g)
	if err := s.Draw(&gpu.Frame{Items: []gpu.DrawItem{{Geometry: g}}}); err == nil {
		t.Error("expected error drawing released geometry")
	}

	s.Release()
	if err := s.Draw(&gpu.Frame{}); !errors.Is(err, gpu.ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
	if s.Frames != 1 {
		t.Errorf("frames = %d, want 1", s.Frames)
	}
}
