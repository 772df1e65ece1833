package viewport

import (
	gomath "math"

	"github.com/Faultbox/relive/internal/engine/camera"
	"github.com/Faultbox/relive/internal/engine/normalize"
	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/pkg/math"
)

// Options configures a Controller. Use DefaultOptions and adjust.
type Options struct {
	Mode scene.Mode

	FOV            float64 // vertical, degrees
	Near, Far      float64
	CameraPosition math.Vec3
	Controls       camera.Options

	Normalize normalize.Options
	Build     scene.BuildOptions

	ClearColor [3]float32
	SpinRate   float64 // placeholder rotation, rad/s on X and Y

	MinZoom, MaxZoom float64
	ScreenshotDir    string
}

// DefaultOptions returns the stock viewing setup for mode.
func DefaultOptions(mode scene.Mode) Options {
	opts := Options{
		Mode:          mode,
		Normalize:     normalize.DefaultOptions(),
		Build:         scene.DefaultBuildOptions(),
		ClearColor:    [3]float32{0.1, 0.1, 0.1},
		SpinRate:      0.6,
		MinZoom:       0.25,
		MaxZoom:       4,
		ScreenshotDir: "screenshots",
	}

	ctl := camera.DefaultOptions()
	ctl.EnableDamping = true
	ctl.DampingFactor = 0.05

	switch mode {
	case scene.ModePanorama:
		opts.FOV, opts.Near, opts.Far = 100, 0.01, 20000
		ctl.RotateSpeed = 0.3
		ctl.MinDistance, ctl.MaxDistance = 0.1, 3
		ctl.EnablePan = false
		ctl.MinPolarAngle, ctl.MaxPolarAngle = gomath.Pi*0.25, gomath.Pi*0.75
		ctl.MinAzimuthAngle, ctl.MaxAzimuthAngle = -gomath.Pi*0.75, gomath.Pi*0.75
		ctl.Target = math.Vec3{Z: -10}
	default:
		opts.FOV, opts.Near, opts.Far = 75, 0.1, 1000
		opts.CameraPosition = math.Vec3{Z: 5}
		ctl.MinDistance, ctl.MaxDistance = 0.5, 100
	}
	opts.Controls = ctl
	opts.Build.EnclosureSize = opts.Normalize.PanoramaSize
	opts.Build.EnclosureCenter = opts.Normalize.PanoramaOffset
	return opts
}
