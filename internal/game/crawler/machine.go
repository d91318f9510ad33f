package crawler

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/game/input"
	"github.com/cory-johannsen/hallcrawl/internal/game/player"
)

// Content supplies new hallways and follow-up treasure. *dungeon.Generator
// satisfies it.
type Content interface {
	dungeon.Content
	NextTreasureItem() dungeon.Item
}

// Deps are the collaborators of a Machine. Only Source is required.
type Deps struct {
	// Source drives every gameplay draw: content, bullet offsets and follow-up odds.
	Source dice.Source
	// Content overrides the generator built from Config.Policy and Source.
	Content Content
	// FlickerSource drives the lamp flicker; nil disables flicker.
	FlickerSource dice.Source
	// Sink receives audio cues; nil discards them.
	Sink Sink
	// Logger receives debug transition logs; nil disables logging.
	Logger *zap.Logger
}

// RunStats summarises a playthrough so far.
type RunStats struct {
	Junctions      int
	FoesDefeated   int
	ItemsCollected int
	HitsTaken      int
	Elapsed        float64
}

// Machine is the player traversal state machine. It is stepped by exactly one
// Tick call per frame and is not safe for concurrent use.
//
// Invariant: exactly one node is current and it only ever moves to a direct
// child of itself; difficulty never decreases within a playthrough.
type Machine struct {
	cfg     Config
	src     dice.Source
	content Content
	sink    Sink
	logger  *zap.Logger
	flicker dice.Source

	id      uuid.UUID
	log     *zap.Logger
	tree    *dungeon.Tree
	current dungeon.NodeID
	player  *player.Player
	lamp    *player.Lamp
	phase   phase
	stats   RunStats
	quit    bool
}

// New validates cfg and creates a Machine sitting on the Title screen of a
// fresh playthrough.
//
// Precondition: deps.Source must be non-nil.
// Postcondition: Returns a Machine in StateTitle or a non-nil error; no
// playthrough starts with an invalid configuration.
func New(cfg Config, deps Deps) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("crawler: a random source is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	content := deps.Content
	if content == nil {
		content = dungeon.NewGenerator(cfg.Policy, dice.NewLoggedRoller(deps.Source, logger))
	}
	sink := deps.Sink
	if sink == nil {
		sink = discardSink{}
	}
	m := &Machine{
		cfg:     cfg,
		src:     deps.Source,
		content: content,
		sink:    sink,
		logger:  logger,
		flicker: deps.FlickerSource,
	}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// reset discards the dungeon, the player and any encounter, and re-enters Title.
func (m *Machine) reset() error {
	p, err := player.New(m.cfg.StartHealth, m.cfg.StartDifficulty)
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	m.id = uuid.New()
	m.log = m.logger.With(zap.String("playthrough", m.id.String()))
	m.tree = dungeon.NewTree()
	m.current = m.tree.Root()
	m.player = p
	m.lamp = player.NewLamp(m.cfg.Lamp, m.flicker)
	m.stats = RunStats{}
	m.tree.MaterializeChildren(m.current, m.content, p.Difficulty())
	m.phase = phase{state: StateTitle}
	m.log.Debug("playthrough ready")
	return nil
}

// Tick advances the simulation by dt seconds of simulation time using the
// input sampled for this frame. Order within a tick: quit and reset sampling,
// the global health check, then the current state's update. Entering Lose
// ends the tick.
func (m *Machine) Tick(dt float64, in input.Query) {
	if in == nil {
		in = input.None
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}

	if in.WasPressed(input.Quit) {
		m.quit = true
	}
	if in.WasPressed(input.Reset) {
		m.log.Info("playthrough reset", zap.String("state", m.phase.state.String()))
		// reset cannot fail with a configuration that already passed New.
		_ = m.reset()
		return
	}

	if m.phase.state.Gameplay() {
		m.stats.Elapsed += dt
	}
	m.lamp.Flicker(dt)

	if !m.player.Alive() && m.phase.state != StateLose && m.phase.state != StateGameOver {
		m.enterLose()
		return
	}

	m.update(dt, in)
}

// update dispatches to the handler of the current state.
func (m *Machine) update(dt float64, in input.Query) {
	switch m.phase.state {
	case StateTitle:
		m.updateTitle(in)
	case StateMoving:
		m.updateMoving(dt)
	case StateToJunction:
		m.updateToJunction(dt)
	case StateWhichWay:
		m.updateWhichWay(in)
	case StateTurnLeft:
		m.updateTurn(dt, dungeon.SideLeft)
	case StateTurnRight:
		m.updateTurn(dt, dungeon.SideRight)
	case StateTreasure:
		m.updateTreasure(dt)
	case StateTreasureGet:
		m.updateTreasureGet(dt)
	case StateBaddy:
		m.updateBaddy(dt, in)
	case StateBattleWin:
		m.updateBattleWin(dt)
	case StateLose:
		m.updateLose(dt)
	case StateGameOver:
	}
}

// transition replaces the phase record and logs the change.
func (m *Machine) transition(next phase) {
	m.log.Debug("state transition",
		zap.String("from", m.phase.state.String()),
		zap.String("to", next.state.String()),
		zap.Int("node", int(m.current)),
		zap.Int("difficulty", m.player.Difficulty()),
		zap.Int("health", m.player.Health()),
	)
	m.phase = next
}

// State returns the current top-level state.
func (m *Machine) State() State { return m.phase.state }

// QuitRequested reports whether a quit has been requested.
func (m *Machine) QuitRequested() bool { return m.quit }

// PlaythroughID returns the id of the current playthrough; it changes on reset.
func (m *Machine) PlaythroughID() string { return m.id.String() }

// Stats returns the playthrough summary so far.
func (m *Machine) Stats() RunStats { return m.stats }

// Health returns the player's health.
func (m *Machine) Health() int { return m.player.Health() }

// Difficulty returns the difficulty counter.
func (m *Machine) Difficulty() int { return m.player.Difficulty() }
