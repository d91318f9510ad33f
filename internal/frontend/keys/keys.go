// Package keys turns raw terminal keystrokes into crawler actions and
// emulates key holding for terminals that never report key release.
package keys

import (
	"sync"
	"time"

	"github.com/cory-johannsen/hallcrawl/internal/game/input"
)

// Decoded is the result of decoding one batch of keystrokes.
type Decoded struct {
	// Actions are the recognised actions in arrival order.
	Actions []input.Action
	// FastForwardToggles counts presses of the fast-forward key.
	FastForwardToggles int
}

const esc = 0x1b

// Decode maps a batch of bytes from a character-mode terminal to actions.
// Arrow keys arrive as ESC [ X or ESC O X; unrecognised bytes are ignored.
//
// Postcondition: Decode never consumes past the end of data.
func Decode(data []byte) Decoded {
	var d Decoded
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b == esc && i+2 < len(data) && (data[i+1] == '[' || data[i+1] == 'O') {
			if a, ok := arrow(data[i+2]); ok {
				d.Actions = append(d.Actions, a)
			}
			i += 2
			continue
		}
		switch b {
		case '\r', '\n', ' ', 'w', 'W', 'k':
			d.Actions = append(d.Actions, input.MoveConfirm)
		case 'a', 'A', 'h':
			d.Actions = append(d.Actions, input.TurnLeft)
		case 'd', 'D', 'l':
			d.Actions = append(d.Actions, input.TurnRight)
		case 'r', 'R':
			d.Actions = append(d.Actions, input.Reset)
		case 'q', 'Q', 0x03, 0x04:
			d.Actions = append(d.Actions, input.Quit)
		case 'f', 'F':
			d.FastForwardToggles++
		}
	}
	return d
}

func arrow(b byte) (input.Action, bool) {
	switch b {
	case 'A':
		return input.MoveConfirm, true
	case 'D':
		return input.TurnLeft, true
	case 'C':
		return input.TurnRight, true
	default:
		return 0, false
	}
}

// Tracker accumulates key presses between ticks. A key counts as held for
// window after its most recent press, which bridges terminal auto-repeat.
// All methods are safe for concurrent use.
type Tracker struct {
	window time.Duration

	mu          sync.Mutex
	lastPress   map[input.Action]time.Time
	pressed     map[input.Action]bool
	fastForward bool
}

// NewTracker creates a Tracker with the given hold window.
//
// Precondition: window > 0.
func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window:    window,
		lastPress: make(map[input.Action]time.Time),
		pressed:   make(map[input.Action]bool),
	}
}

// Feed records a decoded batch that arrived at now.
func (t *Tracker) Feed(d Decoded, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range d.Actions {
		t.lastPress[a] = now
		t.pressed[a] = true
	}
	if d.FastForwardToggles%2 == 1 {
		t.fastForward = !t.fastForward
	}
}

// Sample returns the input for a tick at now and clears the pressed flags.
//
// Postcondition: a press is reported by exactly one Sample call.
func (t *Tracker) Sample(now time.Time) input.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s input.Snapshot
	for _, a := range input.Actions() {
		if t.pressed[a] {
			s = s.Press(a)
		} else if last, ok := t.lastPress[a]; ok && now.Sub(last) <= t.window {
			s = s.Hold(a)
		}
	}
	clear(t.pressed)
	return s
}

// FastForward reports whether fast-forward is toggled on.
func (t *Tracker) FastForward() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fastForward
}
