package viewport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/internal/engine/gpu/gputest"
	"github.com/Faultbox/relive/internal/engine/input"
	"github.com/Faultbox/relive/internal/engine/scene"
	"github.com/Faultbox/relive/internal/loader"
	"github.com/Faultbox/relive/pkg/mesh"
)

// fakeHost is an in-memory Host driven by the test.
type fakeHost struct {
	width, height int
	dev           *gputest.Device
	surfaces      []*gputest.Surface
	failSurface   error

	nextID int
	subs   map[int]fakeSub
	frames map[int]func(float64)
}

type fakeSub struct {
	kind input.Listen
	fn   func(input.Event)
}

func newFakeHost(width, height int) *fakeHost {
	return &fakeHost{
		width:  width,
		height: height,
		dev:    gputest.NewDevice(),
		subs:   make(map[int]fakeSub),
		frames: make(map[int]func(float64)),
	}
}

func (h *fakeHost) ClientSize() (int, int) { return h.width, h.height }

func (h *fakeHost) CreateSurface(width, height int) (gpu.Surface, error) {
	if h.failSurface != nil {
		return nil, h.failSurface
	}
	s := gputest.NewSurface(h.dev, width, height)
	h.surfaces = append(h.surfaces, s)
	return s, nil
}

func (h *fakeHost) Subscribe(kind input.Listen, fn func(input.Event)) func() {
	h.nextID++
	id := h.nextID
	h.subs[id] = fakeSub{kind: kind, fn: fn}
	return func() { delete(h.subs, id) }
}

func (h *fakeHost) OnFrame(fn func(float64)) func() {
	h.nextID++
	id := h.nextID
	h.frames[id] = fn
	return func() { delete(h.frames, id) }
}

func (h *fakeHost) emit(ev input.Event) {
	var fns []func(input.Event)
	for _, s := range h.subs {
		if s.kind.Matches(ev.Type) {
			fns = append(fns, s.fn)
		}
	}
	for _, fn := range fns {
		fn(ev)
	}
}

func (h *fakeHost) tick(dt float64) {
	var fns []func(float64)
	for _, fn := range h.frames {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(dt)
	}
}

func (h *fakeHost) resize(width, height int) {
	h.width, h.height = width, height
	h.emit(input.Event{Type: input.EventWindowResize, Width: width, Height: height})
}

func (h *fakeHost) surface() *gputest.Surface {
	return h.surfaces[len(h.surfaces)-1]
}

// fakeFetcher blocks every Load until the test resolves it. Superseded
// loads are not aborted, so their late results reach the controller.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []*fakeCall
}

type fakeCall struct {
	url      string
	ctx      context.Context
	progress func(loader.Progress)
	result   chan fakeResult
}

type fakeResult struct {
	desc *mesh.Descriptor
	err  error
}

var errTornDown = errors.New("test finished")

func newFakeFetcher(t *testing.T) *fakeFetcher {
	f := &fakeFetcher{}
	t.Cleanup(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, c := range f.calls {
			select {
			case c.result <- fakeResult{err: errTornDown}:
			default:
			}
		}
	})
	return f
}

func (f *fakeFetcher) Load(ctx context.Context, url string, progress func(loader.Progress)) (*mesh.Descriptor, error) {
	c := &fakeCall{url: url, ctx: ctx, progress: progress, result: make(chan fakeResult, 1)}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	r := <-c.result
	return r.desc, r.err
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// call waits for the most recent Load of url.
func (f *fakeFetcher) call(t *testing.T, url string) *fakeCall {
	t.Helper()
	var found *fakeCall
	eventually(t, "fetch of "+url, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := len(f.calls) - 1; i >= 0; i-- {
			if f.calls[i].url == url {
				found = f.calls[i]
				return true
			}
		}
		return false
	})
	return found
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// harness wires a controller to a fake host and fetcher and records
// callbacks.
type harness struct {
	t     *testing.T
	host  *fakeHost
	fetch *fakeFetcher
	ctl   *Controller

	progress  []float64
	errors    []string
	completes int
	onDone    func()
	onErr     func(string)
}

func newHarness(t *testing.T, mode scene.Mode) *harness {
	t.Helper()
	h := &harness{t: t, host: newFakeHost(800, 600), fetch: newFakeFetcher(t)}
	opts := DefaultOptions(mode)
	opts.Build.TextureSize = 16
	opts.ScreenshotDir = t.TempDir()
	h.ctl = New(h.fetch, opts, Callbacks{
		OnProgress: func(p float64) { h.progress = append(h.progress, p) },
		OnError: func(msg string) {
			h.errors = append(h.errors, msg)
			if h.onErr != nil {
				h.onErr(msg)
			}
		},
		OnComplete: func() {
			h.completes++
			if h.onDone != nil {
				h.onDone()
			}
		},
	}, nil)
	if err := h.ctl.Attach(h.host); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return h
}

func (h *harness) tick() { h.host.tick(1.0 / 60) }

func (h *harness) load(url string) *fakeCall {
	h.t.Helper()
	if err := h.ctl.LoadMesh(url); err != nil {
		h.t.Fatalf("LoadMesh(%q): %v", url, err)
	}
	return h.fetch.call(h.t, url)
}

// finish resolves c and runs frames until its result has been handled.
func (h *harness) finish(c *fakeCall, desc *mesh.Descriptor, err error) {
	h.t.Helper()
	h.tick()
	c.result <- fakeResult{desc: desc, err: err}
	eventually(h.t, "result of "+c.url, func() bool { return h.ctl.mail.pending() > 0 })
	h.tick()
}

func quadMesh() *mesh.Descriptor {
	return &mesh.Descriptor{Parts: []*mesh.Part{{
		Name: "quad",
		Geometry: &mesh.Geometry{
			Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
			Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
			UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
			Indices:   []uint32{0, 1, 2, 0, 2, 3},
		},
		NeedsDefaultMaterial: true,
	}}}
}
