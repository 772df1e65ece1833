package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/relive/internal/engine/input"
)

var keymap = map[sdl.Scancode]input.Key{
	sdl.SCANCODE_W:      input.KeyW,
	sdl.SCANCODE_A:      input.KeyA,
	sdl.SCANCODE_S:      input.KeyS,
	sdl.SCANCODE_D:      input.KeyD,
	sdl.SCANCODE_Q:      input.KeyQ,
	sdl.SCANCODE_E:      input.KeyE,
	sdl.SCANCODE_UP:     input.KeyUp,
	sdl.SCANCODE_DOWN:   input.KeyDown,
	sdl.SCANCODE_LEFT:   input.KeyLeft,
	sdl.SCANCODE_RIGHT:  input.KeyRight,
	sdl.SCANCODE_B:      input.KeyB,
	sdl.SCANCODE_O:      input.KeyO,
	sdl.SCANCODE_P:      input.KeyP,
	sdl.SCANCODE_R:      input.KeyR,
	sdl.SCANCODE_1:      input.Key1,
	sdl.SCANCODE_2:      input.Key2,
	sdl.SCANCODE_F12:    input.KeyF12,
	sdl.SCANCODE_ESCAPE: input.KeyEscape,
}

// pollEvents drains the SDL queue into input events. Events the viewer
// does not handle are dropped.
func pollEvents() []input.Event {
	var events []input.Event
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			events = append(events, input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				w, err := sdl.GetWindowFromID(e.WindowID)
				if err != nil {
					continue
				}
				dw, dh := w.GLGetDrawableSize()
				events = append(events, input.Event{
					Type:   input.EventWindowResize,
					Width:  int(dw),
					Height: int(dh),
				})
			}

		case *sdl.KeyboardEvent:
			key, ok := keymap[e.Keysym.Scancode]
			if !ok {
				continue
			}
			t := input.EventKeyDown
			if e.Type == sdl.KEYUP {
				t = input.EventKeyUp
			}
			events = append(events, input.Event{Type: t, Key: key, Repeat: e.Repeat != 0})

		case *sdl.MouseMotionEvent:
			events = append(events, input.Event{
				Type:   input.EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
			})

		case *sdl.MouseButtonEvent:
			t := input.EventMouseDown
			if e.Type == sdl.MOUSEBUTTONUP {
				t = input.EventMouseUp
			}
			events = append(events, input.Event{
				Type:   t,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})

		case *sdl.MouseWheelEvent:
			y := float64(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				y = -y
			}
			events = append(events, input.Event{Type: input.EventMouseWheel, WheelY: y})
		}
	}
	return events
}
