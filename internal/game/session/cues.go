// Package session tracks the live playthroughs served to remote players and
// carries each one's audio cues out of the tick loop.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
)

// CueQueue is a crawler.Sink that buffers cues on a channel for the
// connection writer. Play never blocks: cues arriving while the buffer is
// full are dropped and counted.
type CueQueue struct {
	events  chan crawler.CueEvent
	mu      sync.Mutex
	closed  bool
	dropped atomic.Int64
}

// NewCueQueue creates a CueQueue holding up to bufferSize undelivered cues.
//
// Postcondition: Returns a CueQueue with an open events channel.
func NewCueQueue(bufferSize int) *CueQueue {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &CueQueue{events: make(chan crawler.CueEvent, bufferSize)}
}

// Play enqueues ev, dropping it if the queue is closed or full.
func (q *CueQueue) Play(ev crawler.CueEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.dropped.Add(1)
		return
	}
	select {
	case q.events <- ev:
	default:
		q.dropped.Add(1)
	}
}

// Drain returns every cue currently buffered without blocking.
func (q *CueQueue) Drain() []crawler.CueEvent {
	var out []crawler.CueEvent
	for {
		select {
		case ev, ok := <-q.events:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Dropped returns how many cues were discarded.
func (q *CueQueue) Dropped() int64 { return q.dropped.Load() }

// Close closes the events channel. It is safe to call more than once.
//
// Postcondition: Further Play calls are dropped.
func (q *CueQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.events)
	}
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *CueQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
