// Package input defines the window-system independent events the viewer
// consumes and the sampled key state used for continuous panning.
package input

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

func (t EventType) String() string {
	switch t {
	case EventQuit:
		return "quit"
	case EventWindowResize:
		return "resize"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventMouseMove:
		return "mousemove"
	case EventMouseDown:
		return "mousedown"
	case EventMouseUp:
		return "mouseup"
	case EventMouseWheel:
		return "wheel"
	default:
		return "none"
	}
}

// Mouse buttons, numbered as SDL numbers them.
const (
	MouseLeft   uint8 = 1
	MouseMiddle uint8 = 2
	MouseRight  uint8 = 3
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Repeat bool // key auto-repeat
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
	WheelY float64 // positive scrolls away from the user
}

// Listen selects which events a subscriber receives. Values combine with |.
type Listen uint8

const (
	ListenWindow Listen = 1 << iota // resize and quit
	ListenKeyboard
	ListenPointer // mouse buttons, motion and wheel

	ListenAll = ListenWindow | ListenKeyboard | ListenPointer
)

// Matches reports whether events of type t are delivered to l.
func (l Listen) Matches(t EventType) bool {
	switch t {
	case EventQuit, EventWindowResize:
		return l&ListenWindow != 0
	case EventKeyDown, EventKeyUp:
		return l&ListenKeyboard != 0
	case EventMouseMove, EventMouseDown, EventMouseUp, EventMouseWheel:
		return l&ListenPointer != 0
	}
	return false
}
