package viewport

import (
	"github.com/Faultbox/relive/internal/config"
	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/pkg/math"
)

// FromConfig builds controller options from the viewer config, starting
// from the defaults of the configured mode. Zero values keep the default.
func FromConfig(cfg *config.Config) (Options, error) {
	mode, err := scene.ParseMode(cfg.Viewport.Mode)
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions(mode)

	v := cfg.Viewport
	if v.FOV > 0 {
		opts.FOV = v.FOV
	}
	if v.Near > 0 {
		opts.Near = v.Near
	}
	if v.Far > 0 {
		opts.Far = v.Far
	}
	opts.ClearColor = v.ClearColor
	opts.SpinRate = v.SpinRate
	if v.ScreenshotDir != "" {
		opts.ScreenshotDir = v.ScreenshotDir
	}

	c := cfg.Controls
	opts.Controls.EnableDamping = c.Damping
	opts.Controls.DampingFactor = c.DampingFactor
	if c.RotateSpeed > 0 {
		opts.Controls.RotateSpeed = c.RotateSpeed
	}
	if c.ZoomSpeed > 0 {
		opts.Controls.ZoomSpeed = c.ZoomSpeed
	}
	if c.PanSpeed > 0 {
		opts.Controls.PanSpeed = c.PanSpeed
	}
	if c.KeyPanSpeed > 0 {
		opts.Controls.KeyPanSpeed = c.KeyPanSpeed
	}
	opts.MinZoom, opts.MaxZoom = c.MinZoom, c.MaxZoom

	n := cfg.Normalize
	if n.ObjectSize > 0 {
		opts.Normalize.ObjectSize = float32(n.ObjectSize)
	}
	if n.PanoramaSize > 0 {
		opts.Normalize.PanoramaSize = float32(n.PanoramaSize)
	}
	opts.Normalize.PanoramaOffset = math.Vec3{X: n.PanoramaOffset[0], Y: n.PanoramaOffset[1], Z: n.PanoramaOffset[2]}
	opts.Build.EnclosureSize = opts.Normalize.PanoramaSize
	opts.Build.EnclosureCenter = opts.Normalize.PanoramaOffset
	opts.Build.ShadowsEnabled = cfg.Graphics.Shadows

	return opts, nil
}
