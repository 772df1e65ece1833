package input

// Key is a physical key the viewer reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyB
	KeyO
	KeyP
	KeyR
	Key1
	Key2
	KeyF12
	KeyEscape
)

var keyNames = [...]string{
	KeyUnknown: "unknown",
	KeyW:       "W",
	KeyA:       "A",
	KeyS:       "S",
	KeyD:       "D",
	KeyQ:       "Q",
	KeyE:       "E",
	KeyUp:      "Up",
	KeyDown:    "Down",
	KeyLeft:    "Left",
	KeyRight:   "Right",
	KeyB:       "B",
	KeyO:       "O",
	KeyP:       "P",
	KeyR:       "R",
	Key1:       "1",
	Key2:       "2",
	KeyF12:     "F12",
	KeyEscape:  "Escape",
}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return keyNames[KeyUnknown]
	}
	return keyNames[k]
}

// KeyState is the held/released record of the panning keys. It is updated
// from key events and sampled once per frame, so movement speed does not
// depend on the keyboard repeat rate.
type KeyState struct {
	Forward, Back bool
	Left, Right   bool
	Up, Down      bool
}

// Apply records a key event. It reports whether the event touched a
// panning key.
func (s *KeyState) Apply(ev Event) bool {
	var down bool
	switch ev.Type {
	case EventKeyDown:
		down = true
	case EventKeyUp:
		down = false
	default:
		return false
	}

	switch ev.Key {
	case KeyW, KeyUp:
		s.Forward = down
	case KeyS, KeyDown:
		s.Back = down
	case KeyA, KeyLeft:
		s.Left = down
	case KeyD, KeyRight:
		s.Right = down
	case KeyE:
		s.Up = down
	case KeyQ:
		s.Down = down
	default:
		return false
	}
	return true
}

// Axes returns the movement direction in {-1, 0, 1} per axis. Opposite
// keys held together cancel.
func (s KeyState) Axes() (forward, right, up float64) {
	return axis(s.Forward, s.Back), axis(s.Right, s.Left), axis(s.Up, s.Down)
}

// Any reports whether a panning key is held.
func (s KeyState) Any() bool {
	return s != KeyState{}
}

// Clear releases every key, e.g. when the window loses focus.
func (s *KeyState) Clear() {
	*s = KeyState{}
}

func axis(pos, neg bool) float64 {
	switch {
	case pos && !neg:
		return 1
	case neg && !pos:
		return -1
	}
	return 0
}
