package autopilot

import (
	"context"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
)

// Result summarises one autopiloted playthrough.
type Result struct {
	PlaythroughID string
	Final         crawler.State
	Difficulty    int
	Health        int
	Ticks         int
	Stats         crawler.RunStats
}

// Run ticks m with pilot input at a fixed dt until GameOver, maxTicks
// (0 means unbounded) or ctx cancellation.
//
// Precondition: dt > 0.
// Postcondition: Returns the final summary; err is non-nil only when ctx was cancelled.
func Run(ctx context.Context, m *crawler.Machine, pilot *Pilot, dt float64, maxTicks int) (Result, error) {
	ticks := 0
	for m.State() != crawler.StateGameOver && (maxTicks == 0 || ticks < maxTicks) {
		if ticks%256 == 0 {
			if err := ctx.Err(); err != nil {
				return summarize(m, ticks), err
			}
		}
		m.Tick(dt, pilot.Next(m.Scene()))
		ticks++
	}
	return summarize(m, ticks), nil
}

func summarize(m *crawler.Machine, ticks int) Result {
	return Result{
		PlaythroughID: m.PlaythroughID(),
		Final:         m.State(),
		Difficulty:    m.Difficulty(),
		Health:        m.Health(),
		Ticks:         ticks,
		Stats:         m.Stats(),
	}
}
