// Package remote drives a viewport from outside the window: a websocket
// bridge for load, zoom and mode commands, and a serial IMU feed that
// steers the camera.
package remote

import (
	"github.com/Faultbox/relive/internal/engine/camera"
)

// Target is the viewport surface remote inputs act on. Every method but
// Enqueue must run on the UI thread; Enqueue is how remote goroutines get
// there.
type Target interface {
	Enqueue(fn func())
	LoadMesh(url string) error
	SetZoom(factor float64) error
	SetInteractionMode(mode camera.Mode) error
	SetOrientation(azimuth, polar float64) error
}
