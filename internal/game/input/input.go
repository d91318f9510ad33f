// Package input defines the fixed action set the crawler reads and the query
// interface boundary layers implement to supply it.
package input

// Action is one logical input.
type Action int

const (
	MoveConfirm Action = iota
	TurnLeft
	TurnRight
	Reset
	Quit

	actionCount
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case MoveConfirm:
		return "confirm"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	case Reset:
		return "reset"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Actions returns every action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// Query answers input questions for the current tick. The crawler samples it
// once per tick and treats the answers as pure booleans.
type Query interface {
	IsHeld(a Action) bool
	WasPressed(a Action) bool
}

// Snapshot is a fixed Query value. The zero Snapshot reports nothing held or pressed.
type Snapshot struct {
	Held    [actionCount]bool
	Pressed [actionCount]bool
}

// IsHeld reports whether a is held.
func (s Snapshot) IsHeld(a Action) bool { return a >= 0 && a < actionCount && s.Held[a] }

// WasPressed reports whether a was pressed this tick.
func (s Snapshot) WasPressed(a Action) bool { return a >= 0 && a < actionCount && s.Pressed[a] }

// Hold returns a copy of s with the given actions held.
func (s Snapshot) Hold(actions ...Action) Snapshot {
	for _, a := range actions {
		s.Held[a] = true
	}
	return s
}

// Press returns a copy of s with the given actions pressed and held.
func (s Snapshot) Press(actions ...Action) Snapshot {
	for _, a := range actions {
		s.Pressed[a] = true
		s.Held[a] = true
	}
	return s
}

// None is the empty input.
var None = Snapshot{}

// Pressed returns a snapshot with the given actions pressed this tick.
func Pressed(actions ...Action) Snapshot { return None.Press(actions...) }

// Held returns a snapshot with the given actions held.
func Held(actions ...Action) Snapshot { return None.Hold(actions...) }
