// Package records keeps the leaderboard of finished playthroughs.
//
// Only the outcome of a run is recorded; playthroughs themselves are never
// saved or resumed.
package records

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
)

// ErrClosed is returned by a Store after Close.
var ErrClosed = errors.New("records: store closed")

// Run is the outcome of one finished playthrough.
type Run struct {
	PlaythroughID  string
	Player         string
	Junctions      int
	Difficulty     int
	FoesDefeated   int
	ItemsCollected int
	HitsTaken      int
	// Elapsed is simulation seconds spent in gameplay states.
	Elapsed    float64
	FinishedAt time.Time
}

// FromMachine captures the current run of m for player.
//
// Precondition: m must be non-nil.
func FromMachine(m *crawler.Machine, player string, at time.Time) Run {
	stats := m.Stats()
	return Run{
		PlaythroughID:  m.PlaythroughID(),
		Player:         player,
		Junctions:      stats.Junctions,
		Difficulty:     m.Difficulty(),
		FoesDefeated:   stats.FoesDefeated,
		ItemsCollected: stats.ItemsCollected,
		HitsTaken:      stats.HitsTaken,
		Elapsed:        stats.Elapsed,
		FinishedAt:     at.UTC(),
	}
}

// Better reports whether a ranks above b: deeper first, then higher
// difficulty, then faster, then earlier.
func Better(a, b Run) bool {
	if a.Junctions != b.Junctions {
		return a.Junctions > b.Junctions
	}
	if a.Difficulty != b.Difficulty {
		return a.Difficulty > b.Difficulty
	}
	if a.Elapsed != b.Elapsed {
		return a.Elapsed < b.Elapsed
	}
	return a.FinishedAt.Before(b.FinishedAt)
}

// Store persists finished runs. Save is idempotent per PlaythroughID.
type Store interface {
	Save(ctx context.Context, run Run) error
	// Top returns at most limit runs in rank order.
	Top(ctx context.Context, limit int) ([]Run, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Memory is an in-process Store; records vanish with the process.
type Memory struct {
	mu     sync.Mutex
	runs   []Run
	seen   map[string]bool
	closed bool
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]bool)}
}

// Save records run unless its playthrough was already recorded.
func (m *Memory) Save(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.seen[run.PlaythroughID] {
		return nil
	}
	m.seen[run.PlaythroughID] = true
	m.runs = append(m.runs, run)
	return nil
}

// Top returns the best limit runs.
func (m *Memory) Top(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	ranked := slices.Clone(m.runs)
	slices.SortStableFunc(ranked, func(a, b Run) int {
		switch {
		case Better(a, b):
			return -1
		case Better(b, a):
			return 1
		default:
			return 0
		}
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Count returns the number of recorded runs.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	return len(m.runs), nil
}

// Close marks the store closed. Safe to call more than once.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
