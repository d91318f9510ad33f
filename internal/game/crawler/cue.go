package crawler

import "github.com/cory-johannsen/hallcrawl/internal/game/dungeon"

// Cue is a fire-and-forget audio trigger.
type Cue int

const (
	// CueItemPickup announces a revealed treasure item (including the trap).
	CueItemPickup Cue = iota
	// CueHit fires when a bullet hits the player.
	CueHit
	// CueMiss fires when a bullet falls past the player.
	CueMiss
)

// String returns the cue name.
func (c Cue) String() string {
	switch c {
	case CueItemPickup:
		return "item_pickup"
	case CueHit:
		return "hit"
	case CueMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// CueEvent is one emitted cue. Item is set for CueItemPickup.
type CueEvent struct {
	Cue  Cue
	Item dungeon.Item
}

// Sink receives cues. Implementations own playback and must not block the tick.
type Sink interface {
	Play(ev CueEvent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(CueEvent)

// Play calls f(ev).
func (f SinkFunc) Play(ev CueEvent) { f(ev) }

type discardSink struct{}

func (discardSink) Play(CueEvent) {}
