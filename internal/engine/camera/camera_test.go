package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/relive/pkg/math"
)

func near(a, b, eps float64) bool {
	return gomath.Abs(a-b) <= eps
}

func newTestControls(opts Options) (*Perspective, *OrbitControls) {
	cam := NewPerspective(75, 1, 0.1, 1000)
	cam.Position = math.Vec3{Z: 5}
	c := NewOrbitControls(cam, opts)
	c.SetViewportSize(800, 600)
	return cam, c
}

func TestEffectiveFOV(t *testing.T) {
	tests := []struct {
		fov, zoom, want float64
	}{
		{90, 1, 90},
		{90, 0, 90},
		{90, 2, 2 * gomath.Atan(0.5) * 180 / gomath.Pi},
		{60, 0.5, 2 * gomath.Atan(2*gomath.Tan(gomath.Pi/6)) * 180 / gomath.Pi},
	}
	for _, tt := range tests {
		cam := NewPerspective(tt.fov, 1, 0.1, 100)
		cam.Zoom = tt.zoom
		if got := cam.EffectiveFOV(); !near(got, tt.want, 1e-9) {
			t.Errorf("fov %v zoom %v: got %v, want %v", tt.fov, tt.zoom, got, tt.want)
		}
	}
}

func TestSetAspectIgnoresDegenerateSize(t *testing.T) {
	cam := NewPerspective(75, 1, 0.1, 100)
	cam.SetAspect(1600, 900)
	if !near(cam.Aspect, 16.0/9.0, 1e-12) {
		t.Errorf("aspect = %v", cam.Aspect)
	}
	cam.SetAspect(1600, 0)
	if !near(cam.Aspect, 16.0/9.0, 1e-12) {
		t.Errorf("zero height changed aspect to %v", cam.Aspect)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"orbit", "pan"} {
		m, err := ParseMode(s)
		if err != nil || m.String() != s {
			t.Errorf("ParseMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParseMode("fly"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPanThenOrbitRestoresMapping(t *testing.T) {
	opts := DefaultOptions()
	opts.EnablePan = false
	opts.Buttons = Buttons{Left: ActionRotate, Middle: ActionDolly, Right: ActionNone}
	_, c := newTestControls(opts)

	c.SetMode(ModePan)
	if c.Buttons.Left != ActionPan || c.Buttons.Right != ActionRotate {
		t.Errorf("pan mapping = %+v", c.Buttons)
	}
	if !c.EnablePan {
		t.Error("pan mode should enable panning")
	}

	c.SetMode(ModeOrbit)
	if c.Buttons != opts.Buttons {
		t.Errorf("orbit mapping = %+v, want %+v", c.Buttons, opts.Buttons)
	}
	if c.EnablePan {
		t.Error("orbit mode should restore EnablePan=false")
	}

	// Repeated switches are stable.
	c.SetMode(ModePan)
	c.SetMode(ModePan)
	c.SetMode(ModeOrbit)
	if c.Buttons != opts.Buttons || c.Mode() != ModeOrbit {
		t.Errorf("mapping drifted after repeated switches: %+v", c.Buttons)
	}
}

func TestRotateWithoutDamping(t *testing.T) {
	cam, c := newTestControls(DefaultOptions())

	c.PointerDown(ButtonLeft, 400, 300)
	if c.Dragging() != ActionRotate {
		t.Fatalf("dragging = %v", c.Dragging())
	}
	c.PointerMove(460, 300)
	c.PointerUp(ButtonLeft)
	c.Update(1.0 / 60)

	theta, _, radius := c.Angles()
	want := -2 * gomath.Pi * 60 / 600
	if !near(theta, want, 1e-4) {
		t.Errorf("theta = %v, want %v", theta, want)
	}
	if !near(radius, 5, 1e-4) {
		t.Errorf("radius changed to %v", radius)
	}
	if cam.Target != (math.Vec3{}) {
		t.Errorf("target moved to %+v", cam.Target)
	}
}

func TestDampingDecays(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableDamping = true
	opts.DampingFactor = 0.1
	_, c := newTestControls(opts)

	c.PointerDown(ButtonLeft, 0, 0)
	c.PointerMove(100, 0)
	c.PointerUp(ButtonLeft)

	c.Update(1.0 / 60)
	first, _, _ := c.Angles()
	c.Update(1.0 / 60)
	second, _, _ := c.Angles()

	if first == 0 || second == first {
		t.Fatalf("expected continued motion, got %v then %v", first, second)
	}
	if gomath.Abs(second-first) >= gomath.Abs(first) {
		t.Errorf("second step %v should be smaller than first %v", second-first, first)
	}

	for i := 0; i < 600; i++ {
		c.Update(1.0 / 60)
	}
	total := -2 * gomath.Pi * 100 / 600
	final, _, _ := c.Angles()
	if !near(final, total, 1e-3) {
		t.Errorf("damped motion converged to %v, want %v", final, total)
	}
}

func TestPolarAndAzimuthLimits(t *testing.T) {
	opts := DefaultOptions()
	opts.MinPolarAngle = gomath.Pi * 0.25
	opts.MaxPolarAngle = gomath.Pi * 0.75
	opts.MinAzimuthAngle = -gomath.Pi * 0.75
	opts.MaxAzimuthAngle = gomath.Pi * 0.75
	_, c := newTestControls(opts)

	c.SetAngles(gomath.Pi, 0)
	theta, phi, _ := c.Angles()
	if !near(theta, gomath.Pi*0.75, 1e-4) {
		t.Errorf("theta = %v, want clamp to 0.75π", theta)
	}
	if !near(phi, gomath.Pi*0.25, 1e-4) {
		t.Errorf("phi = %v, want clamp to 0.25π", phi)
	}
}

func TestDistanceLimits(t *testing.T) {
	opts := DefaultOptions()
	opts.MinDistance = 0.1
	opts.MaxDistance = 3
	cam, c := newTestControls(opts)
	cam.Target = math.Vec3{Z: -10}
	cam.Position = math.Vec3{}

	c.Update(0)
	_, _, radius := c.Angles()
	if !near(radius, 3, 1e-4) {
		t.Errorf("radius = %v, want 3", radius)
	}

	for i := 0; i < 200; i++ {
		c.Wheel(1)
		c.Update(0)
	}
	_, _, radius = c.Angles()
	if !near(radius, 0.1, 1e-4) {
		t.Errorf("radius = %v, want 0.1", radius)
	}
}

func TestWheelDisabledZoom(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableZoom = false
	_, c := newTestControls(opts)
	c.Wheel(3)
	c.Update(0)
	if _, _, r := c.Angles(); !near(r, 5, 1e-4) {
		t.Errorf("radius = %v with zoom disabled", r)
	}
}

func TestPanDragMovesTarget(t *testing.T) {
	cam, c := newTestControls(DefaultOptions())

	c.PointerDown(ButtonRight, 100, 100)
	c.PointerMove(50, 100)
	c.PointerUp(ButtonRight)
	c.Update(0)

	if cam.Target.X <= 0 {
		t.Errorf("dragging left should move target right, got %+v", cam.Target)
	}
	if _, _, r := c.Angles(); !near(r, 5, 1e-3) {
		t.Errorf("pan changed distance to %v", r)
	}
}

func TestPanDisabledIgnoresDrag(t *testing.T) {
	opts := DefaultOptions()
	opts.EnablePan = false
	_, c := newTestControls(opts)
	c.PointerDown(ButtonRight, 0, 0)
	if c.Dragging() != ActionNone {
		t.Errorf("drag started with pan disabled: %v", c.Dragging())
	}
}

func TestMoveIsFrameRateIndependent(t *testing.T) {
	camA, a := newTestControls(DefaultOptions())
	camB, b := newTestControls(DefaultOptions())

	for i := 0; i < 60; i++ {
		a.Move(1, 0.5, 0, 1.0/60)
	}
	for i := 0; i < 30; i++ {
		b.Move(1, 0.5, 0, 1.0/30)
	}

	if camA.Position.Distance(camB.Position) > 1e-4 {
		t.Errorf("positions differ: %+v vs %+v", camA.Position, camB.Position)
	}
	if camA.Target.Distance(camB.Target) > 1e-4 {
		t.Errorf("targets differ: %+v vs %+v", camA.Target, camB.Target)
	}

	// Forward from +Z looking at the origin is -Z.
	if camA.Target.Z >= 0 {
		t.Errorf("forward move went the wrong way: %+v", camA.Target)
	}
	if d := camA.Position.Sub(camA.Target).Length(); !near(float64(d), 5, 1e-4) {
		t.Errorf("move changed camera-target distance to %v", d)
	}
}

func TestMoveRequiresPan(t *testing.T) {
	opts := DefaultOptions()
	opts.EnablePan = false
	cam, c := newTestControls(opts)

	c.Move(1, 0, 0, 1)
	if cam.Target != (math.Vec3{}) {
		t.Errorf("target moved with pan disabled: %+v", cam.Target)
	}

	c.SetMode(ModePan)
	c.Move(1, 0, 0, 1)
	if cam.Target == (math.Vec3{}) {
		t.Error("target did not move in pan mode")
	}
}

func TestDisposeIgnoresInput(t *testing.T) {
	cam, c := newTestControls(DefaultOptions())
	c.Dispose()

	before := cam.Position
	c.PointerDown(ButtonLeft, 0, 0)
	c.PointerMove(100, 100)
	c.Wheel(5)
	c.Move(1, 1, 1, 1)
	c.Update(1)

	if cam.Position != before {
		t.Errorf("disposed controls moved camera to %+v", cam.Position)
	}
	if !c.Disposed() {
		t.Error("Disposed() = false")
	}
}
