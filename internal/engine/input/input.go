// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed input event.
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
	EventScroll
)

// Event represents a processed input event.
type Event struct {
	Type    EventType
	Key     sdl.Scancode
	Width   int
	Height  int
	MouseX  int
	MouseY  int
	XRel    int
	YRel    int
	Button  uint8
	ScrollY float32
}

// Input polls SDL events.
type Input struct {
	events []Event

	// In relative mode the cursor is hidden and pinned, so motion events
	// report a virtual position built from the relative deltas.
	relative         bool
	cursorX, cursorY int
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to input events.
// Returns true if a quit was requested.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := translate(event); ok {
			if ev.Type == EventMouseMove && i.relative {
				i.cursorX += ev.XRel
				i.cursorY += ev.YRel
				ev.MouseX, ev.MouseY = i.cursorX, i.cursorY
			}
			i.events = append(i.events, ev)
			if ev.Type == EventQuit {
				return true
			}
		}
	}

	return false
}

func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		if e.Repeat != 0 {
			return Event{}, false
		}
		if e.Type == sdl.KEYDOWN {
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		}
		if e.Type == sdl.KEYUP {
			return Event{Type: EventKeyUp, Key: e.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{Type: EventMouseMove, MouseX: int(e.X), MouseY: int(e.Y), XRel: int(e.XRel), YRel: int(e.YRel)}, true

	case *sdl.MouseButtonEvent:
		typ := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			typ = EventMouseDown
		}
		return Event{Type: typ, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}, true

	case *sdl.MouseWheelEvent:
		y := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		return Event{Type: EventScroll, ScrollY: y}, true
	}
	return Event{}, false
}

// SetRelative switches SDL relative mouse mode, which hides and captures
// the cursor for mouse look.
func (i *Input) SetRelative(enabled bool) error {
	if ret := sdl.SetRelativeMouseMode(enabled); ret != 0 {
		return sdl.GetError()
	}
	i.relative = enabled
	return nil
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
