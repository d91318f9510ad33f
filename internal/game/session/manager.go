package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
)

// Summary is the last published status of a session's playthrough.
type Summary struct {
	PlaythroughID string
	State         crawler.State
	Difficulty    int
	Health        int
	Junctions     int
}

// Session is one connected player.
type Session struct {
	// ID is the session identifier, distinct from the playthrough id which
	// changes on every reset.
	ID         string
	RemoteAddr string
	StartedAt  time.Time
	// Cues carries the playthrough's audio cues to the connection writer.
	Cues *CueQueue

	mu      sync.RWMutex
	summary Summary
}

// Publish records the latest status of the session's playthrough.
func (s *Session) Publish(scene crawler.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = Summary{
		PlaythroughID: scene.PlaythroughID,
		State:         scene.State,
		Difficulty:    scene.Difficulty,
		Health:        scene.Health,
		Junctions:     scene.Stats.Junctions,
	}
}

// Summary returns the last published status.
func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Manager tracks all live sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limit    int
	now      func() time.Time
}

// NewManager creates an empty Manager admitting at most limit sessions;
// limit 0 means unlimited.
func NewManager(limit int) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		limit:    limit,
		now:      time.Now,
	}
}

// Add registers a new session for a connection from remoteAddr.
//
// Postcondition: Returns the created Session with a fresh id, or an error if
// the manager is full.
func (m *Manager) Add(remoteAddr string, cueBuffer int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limit > 0 && len(m.sessions) >= m.limit {
		return nil, fmt.Errorf("session limit %d reached", m.limit)
	}
	sess := &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		StartedAt:  m.now(),
		Cues:       NewCueQueue(cueBuffer),
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

// Remove unregisters a session and closes its cue queue.
//
// Postcondition: The session is removed. Returns an error if not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %q not found", id)
	}
	_ = sess.Cues.Close()
	delete(m.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns the live sessions ordered by start time.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// CloseAll removes every session, closing their cue queues.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		_ = s.Cues.Close()
		delete(m.sessions, id)
	}
}
