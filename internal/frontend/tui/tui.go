// Package tui runs a playthrough in the local terminal.
package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/keys"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/play"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/view"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/records"
)

// flashFrames is how many ticks the border stays red after a hit.
const flashFrames = 12

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Padding(0, 2)

	hitStyle = frameStyle.BorderForeground(lipgloss.Color("#FF3030"))

	bannerStyles = map[view.Tone]lipgloss.Style{
		view.ToneNormal: lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7FF")).Bold(true),
		view.ToneGood:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
		view.ToneDanger: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3030")).Bold(true),
		view.ToneMuted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Bold(true),
	}

	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	packStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87D7D7"))
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
)

type tickMsg time.Time

// Model is the bubbletea model driving one crawler.Machine.
type Model struct {
	machine  *crawler.Machine
	driver   *play.Driver
	frontend config.FrontendConfig
	tracker  *keys.Tracker
	logger   *zap.Logger

	flash int
	bells int
	cues  []crawler.CueEvent
}

// NewModel creates a Model. Build the machine with the model's Sink as its
// cue sink, then bind it with Attach.
//
// Precondition: frontend must be valid and logger non-nil.
func NewModel(frontend config.FrontendConfig, logger *zap.Logger) *Model {
	return &Model{
		frontend: frontend,
		tracker:  keys.NewTracker(frontend.HoldWindow),
		logger:   logger,
	}
}

// Sink collects cues emitted during a tick.
func (m *Model) Sink() crawler.Sink {
	return crawler.SinkFunc(func(ev crawler.CueEvent) {
		m.cues = append(m.cues, ev)
	})
}

// Attach binds the machine the model drives.
//
// Precondition: machine must be non-nil and emit cues to m.Sink().
func (m *Model) Attach(machine *crawler.Machine) {
	m.machine = machine
	m.driver = play.NewDriver(machine, m.tracker, m.frontend, m.logger)
}

// RecordTo saves finished runs under player and shows the top leaderboard
// runs on the game-over screen.
//
// Precondition: Attach must have been called.
func (m *Model) RecordTo(store records.Store, player string, leaderboard int) {
	m.driver.RecordTo(store, player, leaderboard)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frontend.TickInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update feeds key presses to the hold tracker and advances the machine on
// every tick.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.tracker.Feed(keys.Decode(KeyBytes(msg)), time.Now())
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		m.step(now)
		if m.machine.QuitRequested() {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the machine by the wall time since the previous tick.
func (m *Model) step(now time.Time) {
	m.driver.Step(context.Background(), now)

	if m.flash > 0 {
		m.flash--
	}
	for _, ev := range m.cues {
		switch ev.Cue {
		case crawler.CueHit:
			m.flash = flashFrames
		case crawler.CueItemPickup:
			m.bells++
		}
	}
	m.cues = m.cues[:0]
}

// View renders the current scene inside a bordered box.
func (m *Model) View() string {
	scene := m.machine.Scene()
	f := view.WithLeaderboard(view.Build(scene), scene, m.driver.Leaderboard())
	lines := []string{
		bannerStyles[f.Tone].Render(f.Banner),
		statusStyle.Render(f.Status),
		packStyle.Render(f.Inventory),
		"",
		bodyStyle.Render(strings.Join(f.Body, "\n")),
		"",
		messageStyle.Render(f.Message),
		helpStyle.Render(f.Hint),
	}
	style := frameStyle
	if m.flash > 0 {
		style = hitStyle
	}
	out := style.Render(strings.Join(lines, "\n"))
	if m.bells > 0 {
		m.bells = 0
		out += "\a"
	}
	return out
}

// KeyBytes converts a bubbletea key event into the byte sequence a
// character-mode terminal would send, so both frontends share one decoder.
func KeyBytes(msg tea.KeyMsg) []byte {
	switch msg.Type {
	case tea.KeyEnter:
		return []byte{'\r'}
	case tea.KeySpace:
		return []byte{' '}
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyLeft:
		return []byte("\x1b[D")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyCtrlC:
		return []byte{0x03}
	case tea.KeyCtrlD:
		return []byte{0x04}
	case tea.KeyRunes:
		return []byte(string(msg.Runes))
	default:
		return nil
	}
}
