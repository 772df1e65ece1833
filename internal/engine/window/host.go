package window

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/relive/internal/engine/gpu"
	"github.com/Faultbox/relive/internal/engine/input"
	"github.com/Faultbox/relive/internal/engine/renderer"
)

type subscriber struct {
	kind input.Listen
	fn   func(input.Event)
}

// CreateSurface creates an OpenGL surface drawing into this window.
func (w *Window) CreateSurface(width, height int) (gpu.Surface, error) {
	r, err := renderer.New(renderer.Config{
		Width:   width,
		Height:  height,
		Shadows: w.config.Shadows,
	}, w.log.Named("renderer"))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Subscribe delivers events matching kind to fn until unsubscribed.
func (w *Window) Subscribe(kind input.Listen, fn func(input.Event)) func() {
	id := w.nextID
	w.nextID++
	w.subs[id] = subscriber{kind: kind, fn: fn}
	return func() { delete(w.subs, id) }
}

// OnFrame calls fn once per frame with the elapsed seconds until cancelled.
func (w *Window) OnFrame(fn func(dt float64)) func() {
	id := w.nextID
	w.nextID++
	w.frames[id] = fn
	return func() { delete(w.frames, id) }
}

// Run pumps events and frames until Stop is called or the window is closed.
func (w *Window) Run() {
	w.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	w.log.Info("starting main loop")
	for w.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		for _, ev := range pollEvents() {
			if ev.Type == input.EventQuit {
				w.running = false
			}
			w.dispatch(ev)
		}
		if !w.running {
			break
		}

		for _, id := range sortedIDs(w.frames) {
			if fn, ok := w.frames[id]; ok {
				fn(dt)
			}
		}
		w.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			w.log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// Stop ends Run after the current frame.
func (w *Window) Stop() { w.running = false }

// dispatch delivers ev in subscription order. Handlers may subscribe or
// unsubscribe while it runs.
func (w *Window) dispatch(ev input.Event) {
	for _, id := range sortedIDs(w.subs) {
		if s, ok := w.subs[id]; ok && s.kind.Matches(ev.Type) {
			s.fn(ev)
		}
	}
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
