package crawler

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/game/combat"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/game/input"
)

// PreJunctionDistance is the forward distance at which a hallway of length
// segments resolves its inhabitant.
func PreJunctionDistance(length int) float64 {
	return SegmentLength*float64(length) - SegmentLength
}

// JunctionDistance is the forward distance of the junction at the end of a
// hallway of length segments.
func JunctionDistance(length int) float64 {
	return SegmentLength * float64(length)
}

func (m *Machine) updateTitle(in input.Query) {
	if in.WasPressed(input.MoveConfirm) {
		m.log.Info("playthrough started")
		m.transition(phase{state: StateMoving})
	}
}

// advance moves the player forward by dt at corridor speed, stopping at limit.
// It reports whether limit has been reached.
func (m *Machine) advance(dt, limit float64) bool {
	m.player.Position.Z += dt * m.player.Speed(m.cfg.BaseSpeed)
	if m.player.Position.Z >= limit {
		m.player.Position.Z = limit
		return true
	}
	return false
}

func (m *Machine) updateMoving(dt float64) {
	node := m.tree.Node(m.current)
	if !m.advance(dt, PreJunctionDistance(node.Length)) {
		return
	}
	m.resolveInhabitant(node.Inhabitant)
}

// resolveInhabitant picks the state that follows the hallway interior.
func (m *Machine) resolveInhabitant(inh dungeon.Inhabitant) {
	switch {
	case inh.Kind == dungeon.KindTreasure:
		m.enterTreasure(inh.Item, false)
	case inh.Disguised():
		m.enterTreasure(dungeon.ItemDisguisedFoeTrap, true)
	case inh.Kind == dungeon.KindFoe:
		m.enterBaddy(inh.Foe == dungeon.FoeDisguised)
	default:
		m.transition(phase{state: StateToJunction})
	}
}

func (m *Machine) updateToJunction(dt float64) {
	node := m.tree.Node(m.current)
	if !m.advance(dt, JunctionDistance(node.Length)) {
		return
	}
	m.tree.MaterializeChildren(m.current, m.content, m.player.Difficulty())
	m.transition(phase{state: StateWhichWay})
}

func (m *Machine) updateWhichWay(in input.Query) {
	left := in.IsHeld(input.TurnLeft) || in.WasPressed(input.TurnLeft)
	right := in.IsHeld(input.TurnRight) || in.WasPressed(input.TurnRight)
	switch {
	case left:
		m.transition(phase{state: StateTurnLeft})
	case right:
		m.transition(phase{state: StateTurnRight})
	}
}

// updateTurn rotates at base speed; boots do not affect turning.
func (m *Machine) updateTurn(dt float64, side dungeon.Side) {
	sign := 1.0
	if side == dungeon.SideRight {
		sign = -1.0
	}
	m.player.Yaw += sign * dt * m.cfg.BaseSpeed * m.cfg.TurnDegreesPerUnit
	if m.player.Yaw*sign < m.cfg.TurnAngle {
		return
	}
	m.player.Yaw = sign * m.cfg.TurnAngle

	left, right := m.tree.MaterializeChildren(m.current, m.content, m.player.Difficulty())
	child := left
	if side == dungeon.SideRight {
		child = right
	}
	// The chosen hallway's own children use the pre-increment difficulty.
	m.tree.MaterializeChildren(child, m.content, m.player.Difficulty())
	m.current = child
	m.player.AdvanceDifficulty()
	m.player.ResetTransform()
	m.stats.Junctions++
	m.log.Debug("descended junction",
		zap.String("side", side.String()),
		zap.Int("node", int(child)),
		zap.Int("length", m.tree.Node(child).Length),
		zap.Int("difficulty", m.player.Difficulty()),
	)
	m.transition(phase{state: StateMoving})
}

func (m *Machine) enterTreasure(item dungeon.Item, decoy bool) {
	m.transition(phase{
		state: StateTreasure,
		timer: combat.NewCountdown(m.cfg.TreasureReveal),
		item:  item,
		decoy: decoy,
	})
}

func (m *Machine) updateTreasure(dt float64) {
	if !m.phase.timer.Advance(dt) {
		return
	}
	if m.phase.decoy {
		m.tree.RevealInhabitant(m.current)
	} else {
		m.tree.ClearInhabitant(m.current)
	}
	m.sink.Play(CueEvent{Cue: CueItemPickup, Item: m.phase.item})
	m.transition(phase{
		state: StateTreasureGet,
		timer: combat.NewCountdown(m.cfg.TreasureDisplay),
		item:  m.phase.item,
		decoy: m.phase.decoy,
	})
}

func (m *Machine) updateTreasureGet(dt float64) {
	if !m.phase.timer.Advance(dt) {
		return
	}
	if m.phase.decoy {
		m.log.Debug("treasure was a disguised foe")
		m.enterBaddy(true)
		return
	}
	m.player.ApplyItem(m.phase.item)
	m.stats.ItemsCollected++
	m.log.Debug("item collected",
		zap.String("item", m.phase.item.String()),
		zap.Int("health", m.player.Health()),
	)
	m.transition(phase{state: StateToJunction})
}

func (m *Machine) enterBaddy(disguised bool) {
	enc := combat.NewEncounter(m.cfg.Combat, m.player.Difficulty(), m.src)
	m.log.Debug("encounter started",
		zap.Bool("disguised", disguised),
		zap.Int("bullets", enc.Live()),
	)
	m.transition(phase{
		state:        StateBaddy,
		encounter:    enc,
		disguisedFoe: disguised,
	})
}

// dodgeDirection maps held turn input to a lateral direction.
func dodgeDirection(in input.Query) int {
	dir := 0
	if in.IsHeld(input.TurnLeft) {
		dir--
	}
	if in.IsHeld(input.TurnRight) {
		dir++
	}
	return dir
}

func (m *Machine) updateBaddy(dt float64, in input.Query) {
	res := m.phase.encounter.Step(dt, dodgeDirection(in))
	for i := 0; i < res.Hits; i++ {
		m.player.TakeHit()
		m.stats.HitsTaken++
		m.sink.Play(CueEvent{Cue: CueHit})
	}
	for i := 0; i < res.Misses; i++ {
		m.sink.Play(CueEvent{Cue: CueMiss})
	}
	if !m.phase.encounter.Cleared() {
		return
	}
	hits, misses := m.phase.encounter.Totals()
	m.log.Debug("encounter cleared", zap.Int("hits", hits), zap.Int("misses", misses))
	m.transition(phase{
		state:        StateBattleWin,
		timer:        combat.NewCountdown(m.cfg.BattleWin),
		encounter:    m.phase.encounter,
		disguisedFoe: m.phase.disguisedFoe,
	})
}

func (m *Machine) updateBattleWin(dt float64) {
	if !m.phase.timer.Advance(dt) {
		return
	}
	m.tree.ClearInhabitant(m.current)
	m.stats.FoesDefeated++
	if m.phase.disguisedFoe || dice.OneIn(m.src, m.cfg.FollowUpTreasureOdds) {
		m.enterTreasure(m.content.NextTreasureItem(), false)
		return
	}
	m.transition(phase{state: StateToJunction})
}

func (m *Machine) enterLose() {
	m.log.Info("playthrough lost",
		zap.Int("junctions", m.stats.Junctions),
		zap.Int("difficulty", m.player.Difficulty()),
		zap.Float64("elapsed", m.stats.Elapsed),
	)
	m.transition(phase{state: StateLose, timer: combat.NewCountdown(m.cfg.Lose)})
}

func (m *Machine) updateLose(dt float64) {
	if m.phase.timer.Advance(dt) {
		m.transition(phase{state: StateGameOver})
	}
}
