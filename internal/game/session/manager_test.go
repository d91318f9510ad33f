package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
)

func TestCueQueue_Play(t *testing.T) {
	q := NewCueQueue(4)
	q.Play(crawler.CueEvent{Cue: crawler.CueHit})

	assert.Equal(t, []crawler.CueEvent{{Cue: crawler.CueHit}}, q.Drain())
}

func TestCueQueue_PlayClosedDrops(t *testing.T) {
	q := NewCueQueue(4)
	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
	q.Play(crawler.CueEvent{Cue: crawler.CueMiss})
	assert.Equal(t, int64(1), q.Dropped())
}

func TestCueQueue_PlayFullDrops(t *testing.T) {
	q := NewCueQueue(1)
	q.Play(crawler.CueEvent{Cue: crawler.CueHit})
	q.Play(crawler.CueEvent{Cue: crawler.CueMiss})
	assert.Equal(t, int64(1), q.Dropped())
	assert.Equal(t, []crawler.CueEvent{{Cue: crawler.CueHit}}, q.Drain())
}

func TestCueQueue_DrainEmpty(t *testing.T) {
	q := NewCueQueue(2)
	assert.Empty(t, q.Drain())
	require.NoError(t, q.Close())
	assert.Empty(t, q.Drain())
}

func TestCueQueue_CloseIdempotent(t *testing.T) {
	q := NewCueQueue(4)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
}

func TestManager_Add(t *testing.T) {
	m := NewManager(0)
	sess, err := m.Add("127.0.0.1:5000", 8)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "127.0.0.1:5000", sess.RemoteAddr)
	require.NotNil(t, sess.Cues)
	assert.Equal(t, 1, m.Count())
	require.Len(t, m.All(), 1)
	assert.Same(t, sess, m.All()[0])
}

func TestManager_AddRespectsLimit(t *testing.T) {
	m := NewManager(1)
	_, err := m.Add("a", 1)
	require.NoError(t, err)
	_, err = m.Add("b", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestManager_Remove(t *testing.T) {
	m := NewManager(0)
	sess, err := m.Add("a", 1)
	require.NoError(t, err)

	require.NoError(t, m.Remove(sess.ID))
	assert.Equal(t, 0, m.Count())
	assert.True(t, sess.Cues.IsClosed())
	assert.Empty(t, m.All())
}

func TestManager_RemoveNotFound(t *testing.T) {
	m := NewManager(0)
	err := m.Remove("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestManager_AllOrderedByStart(t *testing.T) {
	m := NewManager(0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	first, err := m.Add("a", 1)
	require.NoError(t, err)
	second, err := m.Add("b", 1)
	require.NoError(t, err)

	all := m.All()
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])
}

func TestSession_Publish(t *testing.T) {
	m := NewManager(0)
	sess, err := m.Add("a", 1)
	require.NoError(t, err)
	sess.Publish(crawler.Scene{
		PlaythroughID: "p1",
		State:         crawler.StateBaddy,
		Difficulty:    4,
		Health:        2,
		Stats:         crawler.RunStats{Junctions: 3},
	})
	assert.Equal(t, Summary{PlaythroughID: "p1", State: crawler.StateBaddy, Difficulty: 4, Health: 2, Junctions: 3}, sess.Summary())
}

func TestManager_CloseAll(t *testing.T) {
	m := NewManager(0)
	a, err := m.Add("a", 1)
	require.NoError(t, err)
	m.CloseAll()
	assert.Equal(t, 0, m.Count())
	assert.True(t, a.Cues.IsClosed())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(0)
	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess, err := m.Add(fmt.Sprintf("addr-%d", n), 2)
			if err == nil {
				sess.Publish(crawler.Scene{Difficulty: n})
				ids <- sess.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)
	assert.Equal(t, 50, m.Count())
	for id := range ids {
		require.NoError(t, m.Remove(id))
	}
	assert.Equal(t, 0, m.Count())
}

// Property: Count always equals adds minus removes.
func TestManager_Count_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := NewManager(0)
		var live []string
		ops := rapid.SliceOfN(rapid.Bool(), 1, 60).Draw(rt, "ops")
		for _, add := range ops {
			if add || len(live) == 0 {
				sess, err := m.Add("x", 1)
				require.NoError(rt, err)
				live = append(live, sess.ID)
			} else {
				require.NoError(rt, m.Remove(live[0]))
				live = live[1:]
			}
			assert.Equal(rt, len(live), m.Count())
		}
	})
}
