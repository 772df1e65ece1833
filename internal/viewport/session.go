package viewport

import (
	"github.com/Faultbox/relive/internal/engine/camera"
	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/internal/engine/input"
	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/pkg/math"
)

// InteractionState is the host- and user-adjustable part of the view. The
// controller writes it on input and host calls and applies it once per
// frame.
type InteractionState struct {
	Mode          camera.Mode
	Zoom          float64
	Target        math.Vec3
	Damping       bool
	DampingFactor float64
	Keys          input.KeyState
}

// Session is everything one attached viewport owns. It is created by
// Attach and dropped by Detach; only the controller mutates it.
type Session struct {
	surface  gpu.Surface
	camera   *camera.Perspective
	controls *camera.OrbitControls
	scene    *scene.Scene

	enclosure   []*scene.Node
	placeholder *scene.Node // nil while a mesh is installed
	mesh        *scene.Node
	meshURL     string
	bounds      *scene.Node // bounding-box overlay, nil when hidden

	interaction InteractionState
	orientation *[2]float64 // pending absolute azimuth/polar
}

// Surface returns the render surface the session draws into.
func (s *Session) Surface() gpu.Surface { return s.surface }

// Camera returns the perspective camera.
func (s *Session) Camera() *camera.Perspective { return s.camera }

// Controls returns the orbit controls driving the camera.
func (s *Session) Controls() *camera.OrbitControls { return s.controls }

// Scene returns the scene graph being rendered.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Placeholder returns the spinning placeholder, or nil while a mesh is shown.
func (s *Session) Placeholder() *scene.Node { return s.placeholder }

// Mesh returns the installed mesh, or nil when none is displayed.
func (s *Session) Mesh() *scene.Node { return s.mesh }

// MeshURL returns the URL of the installed mesh, or "" when none is displayed.
func (s *Session) MeshURL() string { return s.meshURL }

// Interaction returns the current interaction state.
func (s *Session) Interaction() InteractionState { return s.interaction }

// nodes returns every node the session owns, attached or not.
func (s *Session) nodes() []*scene.Node {
	out := append([]*scene.Node(nil), s.enclosure...)
	for _, n := range []*scene.Node{s.placeholder, s.mesh, s.bounds} {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
