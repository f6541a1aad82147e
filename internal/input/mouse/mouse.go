// Package mouse defines mouse events delivered to the grid and detects
// double clicks.
package mouse

import (
	"time"

	"github.com/dshills/gridstorm/internal/input/key"
)

// Button is the button or wheel direction behind an event.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonScrollUp
	ButtonScrollDown
	ButtonScrollLeft
	ButtonScrollRight
)

// IsScroll reports whether b is a wheel direction.
func (b Button) IsScroll() bool {
	return b >= ButtonScrollUp && b <= ButtonScrollRight
}

// Scroll returns the unit direction of a wheel button: dy for vertical
// wheels, dx for horizontal ones. Other buttons return zeros.
func (b Button) Scroll() (dx, dy int) {
	switch b {
	case ButtonScrollUp:
		return 0, -1
	case ButtonScrollDown:
		return 0, 1
	case ButtonScrollLeft:
		return -1, 0
	case ButtonScrollRight:
		return 1, 0
	}
	return 0, 0
}

// Action is what happened to the button.
type Action uint8

const (
	ActionNone Action = iota
	ActionPress
	ActionRelease
	ActionMove
)

// Position is a screen cell.
type Position struct {
	X, Y int
}

// Near reports whether p is within d cells of q on both axes.
func (p Position) Near(q Position, d int) bool {
	return abs(p.X-q.X) <= d && abs(p.Y-q.Y) <= d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Event is one mouse report from the backend.
type Event struct {
	Position  Position
	Button    Button
	Action    Action
	Modifiers key.Modifier
	Timestamp time.Time
}

// NewPress builds a press at (x, y) stamped now.
func NewPress(x, y int, b Button, mods key.Modifier) Event {
	return Event{
		Position:  Position{X: x, Y: y},
		Button:    b,
		Action:    ActionPress,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}
