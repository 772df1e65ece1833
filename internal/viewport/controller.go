// Package viewport implements the viewport lifecycle: attaching a render
// surface, camera and orbit controls to a host, loading and swapping
// meshes without leaking GPU resources, and the per-frame update loop.
//
// All Controller methods must be called from the UI thread, the thread
// that runs the host's frame and event callbacks. Loads run on their own
// goroutines and hand results back through a mailbox drained each frame.
package viewport

import (
	"context"
	"fmt"
	gomath "math"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/relive/internal/engine/camera"
	"github.com/Faultbox/relive/internal/engine/debug"
	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/internal/engine/input"
	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/internal/loader"
	"github.com/Faultbox/relive/pkg/math"
	"github.com/Faultbox/relive/pkg/mesh"
)

// Host is the window or element a viewport attaches to.
type Host interface {
	ClientSize() (width, height int)
	CreateSurface(width, height int) (gpu.Surface, error)
	Subscribe(kind input.Listen, fn func(input.Event)) (unsubscribe func())
	OnFrame(fn func(dt float64)) (cancel func())
}

// Callbacks report load outcomes to the host. Each may be nil. They run on
// the UI thread during Frame, after the controller has settled into its new
// state, so they may call back into the controller.
type Callbacks struct {
	OnProgress func(percent float64)
	OnError    func(message string)
	OnComplete func()
}

// State is the controller lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateLoading
	StateDisplaying
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller owns one viewport session.
type Controller struct {
	fetcher loader.Fetcher
	opts    Options
	cb      Callbacks
	log     *zap.Logger

	state   State
	host    Host
	session *Session
	swap    swapCoordinator
	mail    mailbox

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe []func()
	stopFrames  func()
	lastDrawErr string
}

// New creates a detached controller. log may be nil.
func New(fetcher loader.Fetcher, opts Options, cb Callbacks, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		fetcher: fetcher,
		opts:    opts,
		cb:      cb,
		log:     log,
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Session returns the live session, or nil when not attached.
func (c *Controller) Session() *Session { return c.session }

// MeshURL returns the URL of the displayed mesh, empty when none.
func (c *Controller) MeshURL() string {
	if c.session == nil {
		return ""
	}
	return c.session.meshURL
}

// Options returns the controller configuration.
func (c *Controller) Options() Options { return c.opts }

// SetCallbacks replaces the load callbacks. Call it from the UI thread.
func (c *Controller) SetCallbacks(cb Callbacks) { c.cb = cb }

// Attach builds the session on host: camera, surface, controls and the
// base scene with the placeholder showing. Then it starts listening for
// resize and input events and registers the frame callback.
func (c *Controller) Attach(host Host) error {
	switch c.state {
	case StateUninitialized:
	case StateDisposed:
		return c.stateError("attach", ErrDisposed)
	default:
		return c.stateError("attach", ErrAlreadyAttached)
	}

	w, h := host.ClientSize()
	cam := camera.NewPerspective(c.opts.FOV, 1, c.opts.Near, c.opts.Far)
	cam.SetAspect(w, h)
	cam.Position = c.opts.CameraPosition

	surface, err := host.CreateSurface(w, h)
	if err != nil {
		c.log.Error("cannot create render surface", zap.Int("width", w), zap.Int("height", h), zap.Error(err))
		return fmt.Errorf("%w: create surface: %v", ErrResource, err)
	}

	controls := camera.NewOrbitControls(cam, c.opts.Controls)
	controls.SetViewportSize(w, h)

	base := scene.BuildBase(c.opts.Mode, c.opts.Build)
	sc := scene.New()
	sc.Lights = base.Lights
	sc.Clear = c.opts.ClearColor

	s := &Session{
		surface:     surface,
		camera:      cam,
		controls:    controls,
		scene:       sc,
		enclosure:   base.Enclosure,
		placeholder: base.Placeholder,
		interaction: InteractionState{
			Mode:          controls.Mode(),
			Zoom:          1,
			Target:        cam.Target,
			Damping:       controls.EnableDamping,
			DampingFactor: controls.DampingFactor,
		},
	}
	s.placeholder.Transform.Position = c.placeholderPosition()

	dev := surface.Device()
	for _, n := range s.nodes() {
		if err := n.Upload(dev); err != nil {
			for _, u := range s.nodes() {
				u.Release()
			}
			surface.Release()
			c.log.Error("cannot upload base scene", zap.String("node", n.Name), zap.Error(err))
			return fmt.Errorf("%w: upload %s: %v", ErrResource, n.Name, err)
		}
		sc.Add(n)
	}

	c.host = host
	c.session = s
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.unsubscribe = []func(){
		host.Subscribe(input.ListenWindow, c.onWindowEvent),
		host.Subscribe(input.ListenKeyboard|input.ListenPointer, c.onInput),
	}
	c.stopFrames = host.OnFrame(c.Frame)
	c.state = StateReady

	c.log.Info("viewport attached",
		zap.Stringer("mode", c.opts.Mode),
		zap.Int("width", w),
		zap.Int("height", h))
	return nil
}

// Detach tears the session down: frame callback, listeners, controls,
// in-flight load, every scene node and finally the surface. It may be
// called in any state and is a no-op once disposed.
func (c *Controller) Detach() {
	if c.state == StateDisposed {
		return
	}
	prev := c.state
	c.state = StateDisposed
	if prev == StateUninitialized {
		return
	}

	if c.stopFrames != nil {
		c.stopFrames()
		c.stopFrames = nil
	}
	for _, unsub := range c.unsubscribe {
		unsub()
	}
	c.unsubscribe = nil

	s := c.session
	s.controls.Dispose()
	c.supersede()
	c.cancel()
	c.mail.take()

	s.scene.ReleaseAll()
	for _, n := range s.nodes() {
		n.Release()
	}
	s.placeholder, s.mesh, s.bounds, s.enclosure = nil, nil, nil, nil
	s.meshURL = ""
	s.surface.Release()

	c.session = nil
	c.host = nil
	c.log.Info("viewport detached", zap.Stringer("from", prev))
}

// LoadMesh starts loading url. The outcome is reported through Callbacks.
// Requesting the displayed mesh again is a no-op, as is requesting the mesh
// already being fetched.
func (c *Controller) LoadMesh(url string) error {
	if err := c.requireAttached("load mesh"); err != nil {
		return err
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("load mesh: %w", loader.ErrEmptyURL)
	}

	s := c.session
	if c.swap.active != nil && c.swap.active.req.URL == url {
		return nil
	}
	if s.mesh != nil && s.meshURL == url {
		if c.swap.active != nil {
			c.supersede()
			c.state = StateDisplaying
		}
		return nil
	}
	c.issue(url)
	return nil
}

// SetZoom sets the camera zoom factor, clamped to the configured range.
// It takes effect on the next frame.
func (c *Controller) SetZoom(factor float64) error {
	if err := c.requireAttached("set zoom"); err != nil {
		return err
	}
	if factor <= 0 || gomath.IsNaN(factor) || gomath.IsInf(factor, 0) {
		return fmt.Errorf("set zoom: invalid factor %v", factor)
	}
	c.session.interaction.Zoom = math.Clamp(factor, c.opts.MinZoom, c.opts.MaxZoom)
	return nil
}

// SetInteractionMode switches between orbit and pan on the next frame.
func (c *Controller) SetInteractionMode(mode camera.Mode) error {
	if err := c.requireAttached("set interaction mode"); err != nil {
		return err
	}
	if mode != camera.ModeOrbit && mode != camera.ModePan {
		return fmt.Errorf("set interaction mode: unknown mode %v", mode)
	}
	c.session.interaction.Mode = mode
	return nil
}

// SetOrientation points the camera from the given azimuth and polar angles
// (radians) around the target on the next frame, within the control limits.
func (c *Controller) SetOrientation(azimuth, polar float64) error {
	if err := c.requireAttached("set orientation"); err != nil {
		return err
	}
	c.session.orientation = &[2]float64{azimuth, polar}
	return nil
}

// Enqueue runs fn on the UI thread at the start of the next frame. It is
// safe to call from any goroutine; calls queued after Detach are dropped.
func (c *Controller) Enqueue(fn func()) {
	c.mail.post(message{call: fn})
}

// Frame advances the viewport by dt seconds and renders. It is registered
// with the host by Attach and never blocks.
func (c *Controller) Frame(dt float64) {
	if !c.live() {
		return
	}
	for _, msg := range c.mail.take() {
		if msg.event != nil {
			c.handleLoadEvent(msg.event)
		} else if msg.call != nil {
			msg.call()
		}
		if !c.live() {
			return
		}
	}

	s := c.session
	c.applyInteraction()

	if s.placeholder != nil {
		step := float32(c.opts.SpinRate * dt)
		s.placeholder.Transform.Rotation.X += step
		s.placeholder.Transform.Rotation.Y += step
	}

	s.controls.Update(dt)
	if s.interaction.Keys.Any() {
		f, r, u := s.interaction.Keys.Axes()
		s.controls.Move(f, r, u, dt)
	}
	s.interaction.Target = s.camera.Target

	frame := s.scene.Frame(s.camera.View(), s.camera.Projection(), s.camera.Position)
	if err := s.surface.Draw(frame); err != nil {
		if msg := err.Error(); msg != c.lastDrawErr {
			c.lastDrawErr = msg
			c.log.Error("draw failed", zap.Error(err))
		}
	} else {
		c.lastDrawErr = ""
	}
}

// applyInteraction pushes host-set interaction state into camera and
// controls.
func (c *Controller) applyInteraction() {
	s := c.session
	if s.controls.Mode() != s.interaction.Mode {
		s.controls.SetMode(s.interaction.Mode)
		c.log.Debug("interaction mode changed", zap.Stringer("mode", s.interaction.Mode))
	}
	s.camera.Zoom = s.interaction.Zoom
	s.controls.EnableDamping = s.interaction.Damping
	s.controls.DampingFactor = s.interaction.DampingFactor
	if o := s.orientation; o != nil {
		s.controls.SetAngles(o[0], o[1])
		s.orientation = nil
	}
}

// onWindowEvent follows the host's size. Camera pose and zoom are kept.
func (c *Controller) onWindowEvent(ev input.Event) {
	if ev.Type != input.EventWindowResize || !c.live() {
		return
	}
	w, h := c.host.ClientSize()
	if w <= 0 || h <= 0 {
		return
	}
	s := c.session
	s.camera.SetAspect(w, h)
	s.surface.Resize(w, h)
	s.controls.SetViewportSize(w, h)
	c.log.Debug("viewport resized", zap.Int("width", w), zap.Int("height", h))
}

// onInput feeds pointer events to the controls and records panning keys.
func (c *Controller) onInput(ev input.Event) {
	if !c.live() {
		return
	}
	s := c.session
	switch ev.Type {
	case input.EventKeyDown, input.EventKeyUp:
		s.interaction.Keys.Apply(ev)
	case input.EventMouseDown:
		if btn, ok := pointerButton(ev.Button); ok {
			s.controls.PointerDown(btn, float64(ev.MouseX), float64(ev.MouseY))
		}
	case input.EventMouseMove:
		s.controls.PointerMove(float64(ev.MouseX), float64(ev.MouseY))
	case input.EventMouseUp:
		if btn, ok := pointerButton(ev.Button); ok {
			s.controls.PointerUp(btn)
		}
	case input.EventMouseWheel:
		s.controls.Wheel(ev.WheelY)
	}
}

func pointerButton(b uint8) (camera.Button, bool) {
	switch b {
	case input.MouseLeft:
		return camera.ButtonLeft, true
	case input.MouseMiddle:
		return camera.ButtonMiddle, true
	case input.MouseRight:
		return camera.ButtonRight, true
	}
	return 0, false
}

// ToggleBounds shows or hides a wireframe box around the installed mesh
// and reports whether it is now shown. Without a mesh nothing is shown.
func (c *Controller) ToggleBounds() (bool, error) {
	if err := c.requireAttached("toggle bounds"); err != nil {
		return false, err
	}
	if c.session.bounds != nil {
		c.hideBounds()
		return false, nil
	}
	return c.showBounds(), nil
}

func (c *Controller) showBounds() bool {
	s := c.session
	if s.mesh == nil {
		return false
	}
	box := s.mesh.WorldBounds()
	if box.IsEmpty() {
		return false
	}
	mat := mesh.DefaultMaterial()
	mat.Name = "bounds"
	mat.Color = [3]float32{1, 0.85, 0.2}

	n := scene.NewNode("bounds")
	p := n.AddPart("box", debug.BBoxWireframe(box, debug.DefaultBBoxPadding), mat)
	p.Primitive = gpu.Lines
	if err := n.Upload(s.surface.Device()); err != nil {
		c.log.Warn("cannot show bounds", zap.Error(err))
		return false
	}
	s.scene.Add(n)
	s.bounds = n
	return true
}

func (c *Controller) hideBounds() {
	s := c.session
	if s.bounds == nil {
		return
	}
	s.scene.Remove(s.bounds)
	s.bounds.Release()
	s.bounds = nil
}

// Screenshot saves the last rendered frame as PNG. An empty path picks a
// timestamped name in the configured screenshot directory. It returns the
// path written.
func (c *Controller) Screenshot(path string) (string, error) {
	if err := c.requireAttached("screenshot"); err != nil {
		return "", err
	}
	img, err := c.session.surface.ReadPixels()
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if path == "" {
		path, err = debug.NewScreenshotCapture(c.opts.ScreenshotDir, "relive").CaptureFromImage(img)
	} else {
		err = debug.SavePNG(path, img)
	}
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	c.log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// ResetView puts the camera back at its initial pose.
func (c *Controller) ResetView() error {
	if err := c.requireAttached("reset view"); err != nil {
		return err
	}
	c.resetView()
	return nil
}

func (c *Controller) resetView() {
	c.session.controls.Reset(c.opts.CameraPosition, c.opts.Controls.Target)
	c.session.interaction.Target = c.opts.Controls.Target
}

// restorePlaceholder puts a fresh placeholder into the scene if none is
// showing.
func (c *Controller) restorePlaceholder() {
	s := c.session
	if s.placeholder != nil {
		return
	}
	p := scene.NewPlaceholder(c.opts.Build)
	p.Transform.Position = c.placeholderPosition()
	if err := p.Upload(s.surface.Device()); err != nil {
		c.log.Error("cannot restore placeholder", zap.Error(err))
		return
	}
	s.scene.Add(p)
	s.placeholder = p
}

// placeholderPosition keeps the cube in front of the camera: at the orbit
// target, which panorama mode moves away from the origin.
func (c *Controller) placeholderPosition() math.Vec3 {
	return c.opts.Controls.Target
}

func (c *Controller) live() bool {
	switch c.state {
	case StateReady, StateLoading, StateDisplaying:
		return true
	}
	return false
}

func (c *Controller) requireAttached(op string) error {
	switch c.state {
	case StateUninitialized:
		return c.stateError(op, ErrNotAttached)
	case StateDisposed:
		return c.stateError(op, ErrDisposed)
	}
	return nil
}

func (c *Controller) stateError(op string, err error) error {
	c.log.Error("viewport misuse", zap.String("op", op), zap.Stringer("state", c.state), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
