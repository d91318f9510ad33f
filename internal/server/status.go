package server

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/game/session"
)

// ServedCounter reports how many connections a frontend has accepted.
type ServedCounter interface {
	Served() uint64
}

type trackedFrontend struct {
	name    string
	counter ServedCounter
}

// StatusReporter periodically logs a summary of every live playthrough.
// It implements Service.
type StatusReporter struct {
	sessions *session.Manager
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	frontends []trackedFrontend

	once sync.Once
	quit chan struct{}
}

// NewStatusReporter creates a StatusReporter.
//
// Precondition: interval > 0; sessions and logger must be non-nil.
func NewStatusReporter(sessions *session.Manager, interval time.Duration, logger *zap.Logger) *StatusReporter {
	return &StatusReporter{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Track adds a frontend whose served total is included in every report.
//
// Precondition: Call before Start.
func (r *StatusReporter) Track(name string, c ServedCounter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frontends = append(r.frontends, trackedFrontend{name: name, counter: c})
}

// Start logs a report every interval until Stop is called.
func (r *StatusReporter) Start() error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.quit:
			return nil
		case <-ticker.C:
			r.Report()
		}
	}
}

// Stop ends Start. Safe to call more than once.
func (r *StatusReporter) Stop() {
	r.once.Do(func() { close(r.quit) })
}

// Report logs one line per live session plus a total carrying each tracked
// frontend's served count. It returns the number of sessions reported.
func (r *StatusReporter) Report() int {
	all := r.sessions.All()
	deepest := 0
	for _, s := range all {
		sum := s.Summary()
		deepest = max(deepest, sum.Junctions)
		r.logger.Debug("playthrough status",
			zap.String("session", s.ID),
			zap.String("playthrough", sum.PlaythroughID),
			zap.Stringer("state", sum.State),
			zap.Int("difficulty", sum.Difficulty),
			zap.Int("health", sum.Health),
			zap.Int("junctions", sum.Junctions),
			zap.Int64("cues_dropped", s.Cues.Dropped()),
		)
	}
	fields := []zap.Field{
		zap.Int("active", len(all)),
		zap.Int("deepest", deepest),
	}
	r.mu.Lock()
	for _, f := range r.frontends {
		fields = append(fields, zap.Uint64(f.name+"_served", f.counter.Served()))
	}
	r.mu.Unlock()
	r.logger.Info("sessions", fields...)
	return len(all)
}
