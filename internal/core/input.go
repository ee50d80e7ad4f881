package core

import "strings"

// Key is a normalized, lower-case key name as delivered by the platform.
type Key string

// Keys the matches react to.
const (
	KeyW         Key = "w"
	KeyS         Key = "s"
	KeyArrowUp   Key = "arrowup"
	KeyArrowDown Key = "arrowdown"
	KeyPause     Key = "p"
	KeyEscape    Key = "escape"
	KeyRoll      Key = "space"
)

// ParseKey normalizes a raw key name ("ArrowUp", "W", "up") into a Key.
func ParseKey(raw string) Key {
	switch k := strings.ToLower(raw); k {
	case "up":
		return KeyArrowUp
	case "down":
		return KeyArrowDown
	case " ":
		return KeyRoll
	case "esc":
		return KeyEscape
	default:
		return Key(k)
	}
}

// Direction is a paddle movement intent.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "Up"
	case DirDown:
		return "Down"
	default:
		return "None"
	}
}

// Event is an input event delivered to a match. Events are applied on the
// match loop, never concurrently with a tick.
type Event interface {
	inputEvent()
}

// KeyEvent is a key-down (Down=true) or key-up transition.
type KeyEvent struct {
	Key  Key
	Down bool
}

// ColumnClick selects a board column (0-based index).
type ColumnClick struct {
	Column int
}

// RollClick asks to draw or arm a special token.
type RollClick struct{}

func (KeyEvent) inputEvent()    {}
func (ColumnClick) inputEvent() {}
func (RollClick) inputEvent()   {}
