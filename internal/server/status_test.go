package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/session"
)

func TestStatusReporter_Report(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sessions := session.NewManager(0)
	a, err := sessions.Add("10.0.0.1:5000", 4)
	require.NoError(t, err)
	b, err := sessions.Add("10.0.0.2:5000", 4)
	require.NoError(t, err)
	a.Publish(crawler.Scene{PlaythroughID: "p-a", State: crawler.StateMoving, Health: 3, Difficulty: 2, Stats: crawler.RunStats{Junctions: 1}})
	b.Publish(crawler.Scene{PlaythroughID: "p-b", State: crawler.StateBaddy, Health: 1, Difficulty: 5, Stats: crawler.RunStats{Junctions: 4}})

	r := NewStatusReporter(sessions, time.Minute, zap.New(core))
	r.Track("telnet", fixedServed(7))
	r.Track("web", fixedServed(2))
	assert.Equal(t, 2, r.Report())

	assert.Equal(t, 2, logs.FilterMessage("playthrough status").Len())
	totals := logs.FilterMessage("sessions").All()
	require.Len(t, totals, 1)
	fields := totals[0].ContextMap()
	assert.EqualValues(t, 2, fields["active"])
	assert.EqualValues(t, 4, fields["deepest"])
	assert.EqualValues(t, 7, fields["telnet_served"])
	assert.EqualValues(t, 2, fields["web_served"])
}

type fixedServed uint64

func (f fixedServed) Served() uint64 { return uint64(f) }

func TestStatusReporter_StartStop(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewStatusReporter(session.NewManager(0), 5*time.Millisecond, zap.New(core))

	done := make(chan error, 1)
	go func() { done <- r.Start() }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("sessions").Len() > 0
	}, 2*time.Second, 5*time.Millisecond)

	r.Stop()
	r.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reporter did not stop")
	}
}
