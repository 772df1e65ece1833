package viewport

import (
	"testing"

	"github.com/Faultbox/relive/internal/config"
	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/pkg/math"
)

func TestFromConfigDefaults(t *testing.T) {
	for _, mode := range []string{"panorama", "object"} {
		t.Run(mode, func(t *testing.T) {
			cfg := config.Default()
			cfg.Viewport.Mode = mode
			got, err := FromConfig(cfg)
			if err != nil {
				t.Fatalf("FromConfig: %v", err)
			}
			m, _ := scene.ParseMode(mode)
			want := DefaultOptions(m)
			if got.FOV != want.FOV || got.Near != want.Near || got.Far != want.Far {
				t.Errorf("projection = %v/%v/%v, want %v/%v/%v", got.FOV, got.Near, got.Far, want.FOV, want.Near, want.Far)
			}
			if got.Controls != want.Controls {
				t.Errorf("controls = %+v, want %+v", got.Controls, want.Controls)
			}
			if got.Normalize != want.Normalize || got.Build != want.Build {
				t.Errorf("geometry = %+v %+v, want %+v %+v", got.Normalize, got.Build, want.Normalize, want.Build)
			}
			if got.MinZoom != want.MinZoom || got.MaxZoom != want.MaxZoom || got.SpinRate != want.SpinRate {
				t.Errorf("zoom/spin = %v %v %v", got.MinZoom, got.MaxZoom, got.SpinRate)
			}
		})
	}
}

func TestFromConfigOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Viewport.Mode = "object"
	cfg.Viewport.FOV = 50
	cfg.Controls.RotateSpeed = 0.8
	cfg.Controls.Damping = false
	cfg.Normalize.PanoramaSize = 500
	cfg.Normalize.PanoramaOffset = [3]float32{1, 2, 3}
	cfg.Graphics.Shadows = true

	got, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Mode != scene.ModeObject || got.FOV != 50 {
		t.Errorf("mode/fov = %v %v", got.Mode, got.FOV)
	}
	if got.Controls.RotateSpeed != 0.8 || got.Controls.EnableDamping {
		t.Errorf("controls = %+v", got.Controls)
	}
	if got.Build.EnclosureSize != 500 || got.Build.EnclosureCenter != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("enclosure = %+v", got.Build)
	}
	if !got.Build.ShadowsEnabled {
		t.Error("shadows not carried over")
	}
}

func TestFromConfigRejectsMode(t *testing.T) {
	cfg := config.Default()
	cfg.Viewport.Mode = "cave"
	if _, err := FromConfig(cfg); err == nil {
		t.Fatal("expected error")
	}
}
