package input

import "github.com/veandco/go-sdl2/sdl"

// MaxKeys is the number of tracked scancodes.
const MaxKeys = 512

// Motion is the mouse look and scroll input accumulated since the last Take.
type Motion struct {
	XOffset float32
	YOffset float32
	Scroll  float32
}

// State tracks held keys and mouse position across frames.
type State struct {
	keys [MaxKeys]bool

	lastX, lastY float32
	firstMouse   bool

	motion Motion
	quit   bool
}

// NewState creates a state with the cursor assumed at the window center.
func NewState(width, height int) *State {
	return &State{
		lastX:      float32(width) / 2,
		lastY:      float32(height) / 2,
		firstMouse: true,
	}
}

// Apply folds one event into the state. Escape requests quit.
func (s *State) Apply(e Event) {
	switch e.Type {
	case EventQuit:
		s.quit = true

	case EventKeyDown:
		if e.Key == sdl.SCANCODE_ESCAPE {
			s.quit = true
		}
		if int(e.Key) < MaxKeys {
			s.keys[e.Key] = true
		}

	case EventKeyUp:
		if int(e.Key) < MaxKeys {
			s.keys[e.Key] = false
		}

	case EventMouseMove:
		x, y := float32(e.MouseX), float32(e.MouseY)
		if s.firstMouse {
			s.lastX, s.lastY = x, y
			s.firstMouse = false
		}
		s.motion.XOffset += x - s.lastX
		// Window y grows downward; look offsets grow upward.
		s.motion.YOffset += s.lastY - y
		s.lastX, s.lastY = x, y

	case EventScroll:
		s.motion.Scroll += e.ScrollY
	}
}

// ApplyAll applies events in order.
func (s *State) ApplyAll(events []Event) {
	for _, e := range events {
		s.Apply(e)
	}
}

// Pressed reports whether the key is held.
func (s *State) Pressed(key sdl.Scancode) bool {
	return int(key) < MaxKeys && s.keys[key]
}

// Take returns the accumulated motion and resets it.
func (s *State) Take() Motion {
	m := s.motion
	s.motion = Motion{}
	return m
}

// QuitRequested reports whether a quit event or Escape was seen.
func (s *State) QuitRequested() bool {
	return s.quit
}
