package camera

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/relive/pkg/math"
)

// Mode selects how pointer buttons map to camera actions.
type Mode int

const (
	ModeOrbit Mode = iota
	ModePan
)

func (m Mode) String() string {
	switch m {
	case ModeOrbit:
		return "orbit"
	case ModePan:
		return "pan"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "orbit" or "pan".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "orbit":
		return ModeOrbit, nil
	case "pan":
		return ModePan, nil
	}
	return ModeOrbit, fmt.Errorf("unknown interaction mode %q", s)
}

// Action is what a pointer drag does.
type Action int

const (
	ActionNone Action = iota
	ActionRotate
	ActionDolly
	ActionPan
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Buttons maps pointer buttons to actions.
type Buttons struct {
	Left, Middle, Right Action
}

func (b Buttons) action(btn Button) Action {
	switch btn {
	case ButtonLeft:
		return b.Left
	case ButtonMiddle:
		return b.Middle
	case ButtonRight:
		return b.Right
	}
	return ActionNone
}

// Options configures OrbitControls at construction.
type Options struct {
	Target math.Vec3

	EnableDamping bool
	DampingFactor float64

	RotateSpeed float64
	ZoomSpeed   float64
	PanSpeed    float64
	KeyPanSpeed float64 // world units per second

	MinDistance     float64
	MaxDistance     float64
	MinPolarAngle   float64
	MaxPolarAngle   float64
	MinAzimuthAngle float64
	MaxAzimuthAngle float64

	EnableRotate bool
	EnableZoom   bool
	EnablePan    bool

	Buttons Buttons
}

// DefaultOptions returns unconstrained orbit controls: left rotates,
// middle dollies, right pans.
func DefaultOptions() Options {
	return Options{
		DampingFactor:   0.05,
		RotateSpeed:     1,
		ZoomSpeed:       1,
		PanSpeed:        1,
		KeyPanSpeed:     2,
		MinDistance:     0,
		MaxDistance:     gomath.Inf(1),
		MinPolarAngle:   0,
		MaxPolarAngle:   gomath.Pi,
		MinAzimuthAngle: gomath.Inf(-1),
		MaxAzimuthAngle: gomath.Inf(1),
		EnableRotate:    true,
		EnableZoom:      true,
		EnablePan:       true,
		Buttons:         Buttons{Left: ActionRotate, Middle: ActionDolly, Right: ActionPan},
	}
}

const polarEpsilon = 1e-6

// OrbitControls rotates, dollies and pans a Perspective camera around a
// target point. Input accumulates deltas; Update applies them once per frame.
type OrbitControls struct {
	Options

	camera *Perspective
	mode   Mode

	// mapping restored by SetMode(ModeOrbit)
	orbitButtons Buttons
	orbitPan     bool

	deltaTheta float64
	deltaPhi   float64
	scale      float64
	panOffset  math.Vec3

	dragging     Action
	lastX, lastY float64
	width        int
	height       int
	disposed     bool
}

// NewOrbitControls attaches controls to cam. The camera keeps its current
// position; its target becomes opts.Target.
func NewOrbitControls(cam *Perspective, opts Options) *OrbitControls {
	c := &OrbitControls{
		Options:      opts,
		camera:       cam,
		mode:         ModeOrbit,
		orbitButtons: opts.Buttons,
		orbitPan:     opts.EnablePan,
		scale:        1,
		width:        1,
		height:       1,
	}
	cam.Target = opts.Target
	return c
}

// Camera returns the controlled camera.
func (c *OrbitControls) Camera() *Perspective { return c.camera }

// Mode returns the current interaction mode.
func (c *OrbitControls) Mode() Mode { return c.mode }

// SetMode switches between orbit and pan button mappings. Orbit mode
// restores the mapping and pan flag the controls were created with.
func (c *OrbitControls) SetMode(m Mode) {
	switch m {
	case ModePan:
		c.Buttons = Buttons{Left: ActionPan, Middle: c.orbitButtons.Middle, Right: ActionRotate}
		c.EnablePan = true
	default:
		m = ModeOrbit
		c.Buttons = c.orbitButtons
		c.EnablePan = c.orbitPan
	}
	c.mode = m
	c.dragging = ActionNone
}

// SetViewportSize sets the pixel size used to scale pointer deltas.
func (c *OrbitControls) SetViewportSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
}

// PointerDown starts a drag with the action mapped to btn.
func (c *OrbitControls) PointerDown(btn Button, x, y float64) {
	if c.disposed {
		return
	}
	action := c.Buttons.action(btn)
	switch action {
	case ActionRotate:
		if !c.EnableRotate {
			return
		}
	case ActionDolly:
		if !c.EnableZoom {
			return
		}
	case ActionPan:
		if !c.EnablePan {
			return
		}
	}
	c.dragging = action
	c.lastX, c.lastY = x, y
}

// PointerMove continues the active drag.
func (c *OrbitControls) PointerMove(x, y float64) {
	if c.disposed || c.dragging == ActionNone {
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	h := float64(c.height)

	switch c.dragging {
	case ActionRotate:
		c.deltaTheta -= 2 * gomath.Pi * dx / h * c.RotateSpeed
		c.deltaPhi -= 2 * gomath.Pi * dy / h * c.RotateSpeed
	case ActionDolly:
		if dy > 0 {
			c.scale /= c.zoomScale()
		} else if dy < 0 {
			c.scale *= c.zoomScale()
		}
	case ActionPan:
		c.pan(dx, dy)
	}
}

// PointerUp ends any drag.
func (c *OrbitControls) PointerUp(Button) {
	c.dragging = ActionNone
}

// Dragging reports the active drag action.
func (c *OrbitControls) Dragging() Action { return c.dragging }

// Wheel dollies the camera. Positive delta moves toward the target.
func (c *OrbitControls) Wheel(delta float64) {
	if c.disposed || !c.EnableZoom || delta == 0 {
		return
	}
	if delta > 0 {
		c.scale *= c.zoomScale()
	} else {
		c.scale /= c.zoomScale()
	}
}

func (c *OrbitControls) zoomScale() float64 {
	return gomath.Pow(0.95, c.ZoomSpeed)
}

// pan converts a pixel delta into a target offset at the target's depth.
func (c *OrbitControls) pan(dx, dy float64) {
	offset := c.camera.Position.Sub(c.camera.Target)
	targetDistance := float64(offset.Length()) * gomath.Tan(c.camera.FOV/2*gomath.Pi/180)
	h := float64(c.height)

	right, up := c.basis()
	left := right.Scale(float32(-2 * dx * targetDistance / h * c.PanSpeed))
	upward := up.Scale(float32(2 * dy * targetDistance / h * c.PanSpeed))
	c.panOffset = c.panOffset.Add(left).Add(upward)
}

// basis returns the camera's right and up vectors.
func (c *OrbitControls) basis() (right, up math.Vec3) {
	forward := c.camera.Forward()
	right = forward.Cross(c.camera.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return right, up
}

// Move translates target and camera together along the camera's horizontal
// forward and right axes and world up. Inputs are -1..1 per axis; the step
// is KeyPanSpeed*dt so speed does not depend on frame rate.
func (c *OrbitControls) Move(forward, right, up, dt float64) {
	if c.disposed || !c.EnablePan || dt <= 0 {
		return
	}
	if forward == 0 && right == 0 && up == 0 {
		return
	}
	theta, _, _ := c.spherical()
	step := c.KeyPanSpeed * dt

	sin, cos := gomath.Sincos(theta)
	fwd := math.Vec3{X: float32(-sin), Z: float32(-cos)}
	rgt := math.Vec3{X: float32(cos), Z: float32(-sin)}

	d := fwd.Scale(float32(forward * step)).
		Add(rgt.Scale(float32(right * step))).
		Add(math.Vec3{Y: float32(up * step)})

	c.camera.Position = c.camera.Position.Add(d)
	c.camera.Target = c.camera.Target.Add(d)
}

// SetAngles points the camera at the target from the given azimuth and
// polar angles (radians), clamped to the configured limits. Pending
// rotation is discarded.
func (c *OrbitControls) SetAngles(theta, phi float64) {
	if c.disposed {
		return
	}
	_, _, radius := c.spherical()
	c.deltaTheta, c.deltaPhi = 0, 0
	c.place(c.clampTheta(theta), c.clampPhi(phi), radius)
}

// Angles returns the current azimuth, polar angle and distance.
func (c *OrbitControls) Angles() (theta, phi, radius float64) {
	return c.spherical()
}

// Reset moves the camera and target and drops any pending motion.
func (c *OrbitControls) Reset(position, target math.Vec3) {
	c.camera.Position = position
	c.camera.Target = target
	c.deltaTheta, c.deltaPhi = 0, 0
	c.scale = 1
	c.panOffset = math.Vec3{}
	c.dragging = ActionNone
}

// Update applies accumulated input to the camera. With damping enabled a
// fraction of the remaining motion is applied per frame; dt rescales that
// fraction so motion decays at the same rate regardless of frame rate.
func (c *OrbitControls) Update(dt float64) {
	if c.disposed {
		return
	}
	theta, phi, radius := c.spherical()

	f := 1.0
	if c.EnableDamping {
		f = c.DampingFactor
		if dt > 0 {
			f = 1 - gomath.Pow(1-c.DampingFactor, dt*60)
		}
	}

	theta = c.clampTheta(theta + c.deltaTheta*f)
	phi = c.clampPhi(phi + c.deltaPhi*f)
	radius = math.Clamp(radius*c.scale, c.MinDistance, c.MaxDistance)
	if radius < polarEpsilon {
		radius = polarEpsilon
	}

	c.camera.Target = c.camera.Target.Add(c.panOffset.Scale(float32(f)))
	c.place(theta, phi, radius)

	if c.EnableDamping {
		c.deltaTheta *= 1 - f
		c.deltaPhi *= 1 - f
		c.panOffset = c.panOffset.Scale(float32(1 - f))
	} else {
		c.deltaTheta, c.deltaPhi = 0, 0
		c.panOffset = math.Vec3{}
	}
	c.scale = 1
}

// Dispose detaches the controls; later input and updates are ignored.
func (c *OrbitControls) Dispose() {
	c.disposed = true
	c.dragging = ActionNone
}

// Disposed reports whether Dispose was called.
func (c *OrbitControls) Disposed() bool { return c.disposed }

func (c *OrbitControls) spherical() (theta, phi, radius float64) {
	offset := c.camera.Position.Sub(c.camera.Target)
	radius = float64(offset.Length())
	if radius == 0 {
		return 0, gomath.Pi / 2, 0
	}
	theta = gomath.Atan2(float64(offset.X), float64(offset.Z))
	phi = gomath.Acos(math.Clamp(float64(offset.Y)/radius, -1, 1))
	return theta, phi, radius
}

func (c *OrbitControls) place(theta, phi, radius float64) {
	sinPhi := gomath.Sin(phi)
	offset := math.Vec3{
		X: float32(radius * sinPhi * gomath.Sin(theta)),
		Y: float32(radius * gomath.Cos(phi)),
		Z: float32(radius * sinPhi * gomath.Cos(theta)),
	}
	c.camera.Position = c.camera.Target.Add(offset)
}

func (c *OrbitControls) clampPhi(phi float64) float64 {
	phi = math.Clamp(phi, c.MinPolarAngle, c.MaxPolarAngle)
	return math.Clamp(phi, polarEpsilon, gomath.Pi-polarEpsilon)
}

func (c *OrbitControls) clampTheta(theta float64) float64 {
	lo, hi := c.MinAzimuthAngle, c.MaxAzimuthAngle
	if gomath.IsInf(lo, 0) || gomath.IsInf(hi, 0) {
		return theta
	}
	lo, hi = wrapAngle(lo), wrapAngle(hi)
	if lo <= hi {
		return math.Clamp(theta, lo, hi)
	}
	// Range crosses ±π.
	if theta > (lo+hi)/2 {
		return gomath.Max(lo, theta)
	}
	return gomath.Min(hi, theta)
}

func wrapAngle(a float64) float64 {
	if a < -gomath.Pi {
		return a + 2*gomath.Pi
	}
	if a > gomath.Pi {
		return a - 2*gomath.Pi
	}
	return a
}
