// Package play drives a crawler.Machine from wall-clock ticks and key input,
// and records each finished run. The telnet, web and terminal frontends
// share it.
package play

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/keys"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/records"
)

// MaxTickElapsed caps the simulation time of a single tick, fast-forward
// included, so a stalled client does not skip whole states when it resumes
// and a bullet never falls past the player between two hit tests.
const MaxTickElapsed = 0.25

// saveTimeout bounds a records write made from the tick loop.
const saveTimeout = 2 * time.Second

// NewSource returns the gameplay source for a new playthrough: seeded when
// seed is non-zero, otherwise drawn from entropy.
func NewSource(seed uint64) dice.Source {
	if seed != 0 {
		return dice.NewSeededSource(seed)
	}
	return dice.NewEntropySource()
}

// Driver advances one machine. It is not safe for concurrent use; the
// Tracker it reads is.
type Driver struct {
	machine  *crawler.Machine
	tracker  *keys.Tracker
	frontend config.FrontendConfig
	logger   *zap.Logger

	store       records.Store
	player      string
	leaderboard int
	top         []records.Run

	last     time.Time
	ticks    int
	recorded bool
}

// NewDriver creates a Driver.
//
// Precondition: machine, tracker and logger must be non-nil; frontend must be valid.
func NewDriver(machine *crawler.Machine, tracker *keys.Tracker, frontend config.FrontendConfig, logger *zap.Logger) *Driver {
	return &Driver{
		machine:  machine,
		tracker:  tracker,
		frontend: frontend,
		logger:   logger,
	}
}

// RecordTo saves every finished run to store under player and keeps the top
// leaderboard runs for display. A nil store disables recording.
func (d *Driver) RecordTo(store records.Store, player string, leaderboard int) {
	d.store = store
	d.player = player
	d.leaderboard = leaderboard
}

// Machine returns the driven machine.
func (d *Driver) Machine() *crawler.Machine { return d.machine }

// Leaderboard returns the top runs fetched when the last run finished.
func (d *Driver) Leaderboard() []records.Run { return d.top }

// Step ticks the machine with the wall time elapsed since the previous Step
// and the current input sample. It reports whether a frame is due.
//
// Postcondition: The first Step ticks with dt 0.
func (d *Driver) Step(ctx context.Context, now time.Time) bool {
	dt := 0.0
	if !d.last.IsZero() {
		dt = now.Sub(d.last).Seconds()
	}
	d.last = now
	if d.tracker.FastForward() {
		dt *= d.frontend.FastForwardScale
	}
	dt = min(dt, MaxTickElapsed)
	d.machine.Tick(dt, d.tracker.Sample(now))
	d.ticks++

	if d.machine.State() == crawler.StateGameOver {
		if !d.recorded {
			d.recorded = true
			d.record(ctx, now)
		}
	} else {
		d.recorded = false
	}
	return d.ticks%d.frontend.TicksPerFrame() == 0
}

// record saves the finished run and refreshes the leaderboard.
func (d *Driver) record(ctx context.Context, now time.Time) {
	run := records.FromMachine(d.machine, d.player, now)
	d.logger.Info("run finished",
		zap.String("playthrough", run.PlaythroughID),
		zap.Int("junctions", run.Junctions),
		zap.Int("difficulty", run.Difficulty),
		zap.Int("foes_defeated", run.FoesDefeated),
		zap.Float64("elapsed", run.Elapsed),
	)
	if d.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := d.store.Save(ctx, run); err != nil {
		d.logger.Warn("recording run", zap.Error(err))
		return
	}
	if d.leaderboard == 0 {
		return
	}
	top, err := d.store.Top(ctx, d.leaderboard)
	if err != nil {
		d.logger.Warn("reading leaderboard", zap.Error(err))
		return
	}
	d.top = top
}
