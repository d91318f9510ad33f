package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/keys"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/input"
	"github.com/cory-johannsen/hallcrawl/internal/records"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return newTestModelWith(t, crawler.DefaultConfig())
}

func newTestModelWith(t *testing.T, cfg crawler.Config) *Model {
	t.Helper()
	m := NewModel(config.FrontendConfig{
		TickRate:         60,
		FrameRate:        15,
		HoldWindow:       300 * time.Millisecond,
		FastForwardScale: 4,
		CueBuffer:        16,
	}, zaptest.NewLogger(t))
	machine, err := crawler.New(cfg, crawler.Deps{
		Source: dice.NewSeededSource(7),
		Sink:   m.Sink(),
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	m.Attach(machine)
	return m
}

func TestKeyBytes(t *testing.T) {
	assert.Equal(t, []byte{'\r'}, KeyBytes(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, []byte("\x1b[D"), KeyBytes(tea.KeyMsg{Type: tea.KeyLeft}))
	assert.Equal(t, []byte("\x1b[C"), KeyBytes(tea.KeyMsg{Type: tea.KeyRight}))
	assert.Equal(t, []byte{0x03}, KeyBytes(tea.KeyMsg{Type: tea.KeyCtrlC}))
	assert.Equal(t, []byte("q"), KeyBytes(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
	assert.Nil(t, KeyBytes(tea.KeyMsg{Type: tea.KeyTab}))
}

func TestModel_EnterStartsDescent(t *testing.T) {
	m := newTestModel(t)
	start := time.Now()

	m.Update(tickMsg(start))
	assert.Equal(t, crawler.StateTitle, m.machine.State())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := m.Update(tickMsg(start.Add(16 * time.Millisecond)))
	assert.NotNil(t, cmd)
	assert.Equal(t, crawler.StateMoving, m.machine.State())
	assert.Contains(t, m.View(), "HALLWAY")
}

func TestModel_QuitEndsProgram(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	_, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_HitFlashesBorder(t *testing.T) {
	m := newTestModel(t)
	m.cues = append(m.cues, crawler.CueEvent{Cue: crawler.CueHit}, crawler.CueEvent{Cue: crawler.CueItemPickup})
	m.step(time.Now())

	assert.Equal(t, flashFrames, m.flash)
	assert.Empty(t, m.cues)
	out := m.View()
	assert.Contains(t, out, "\a")
	assert.Zero(t, m.bells)
}

func TestModel_TitleView(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "H A L L C R A W L")
}

func TestModel_GameOverShowsLeaderboard(t *testing.T) {
	cfg := crawler.DefaultConfig()
	cfg.StartHealth = 1
	cfg.Combat.HitRadius = 2.5
	cfg.Combat.SpawnTop = 3.0
	m := newTestModelWith(t, cfg)
	store := records.NewMemory()
	m.RecordTo(store, "local", 3)
	require.NoError(t, store.Save(context.Background(), records.Run{
		PlaythroughID: "earlier",
		Player:        "local",
		Junctions:     9,
		Difficulty:    4,
		Elapsed:       80,
		FinishedAt:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}))
	assert.NotContains(t, m.View(), "DEEPEST DESCENTS")

	// Hold left until the single hit point runs out.
	now := time.Now()
	m.tracker.Feed(keys.Decoded{Actions: []input.Action{input.MoveConfirm}}, now)
	for range 200000 {
		if m.machine.State() == crawler.StateGameOver {
			break
		}
		now = now.Add(100 * time.Millisecond)
		m.tracker.Feed(keys.Decoded{Actions: []input.Action{input.TurnLeft}}, now)
		m.step(now)
	}
	require.Equal(t, crawler.StateGameOver, m.machine.State())

	out := m.View()
	assert.Contains(t, out, "DEEPEST DESCENTS")
	assert.Contains(t, out, "2026-01-02")
}
