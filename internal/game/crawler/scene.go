package crawler

import (
	"github.com/cory-johannsen/hallcrawl/internal/game/combat"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/game/player"
)

// CombatView is the encounter snapshot exposed during Baddy and BattleWin.
type CombatView struct {
	PlayerX      float64
	LateralBound float64
	Bullets      []combat.Bullet
	Armed        bool
	Hits         int
	Misses       int
	Disguised    bool
}

// Announcement is the treasure being revealed during Treasure and TreasureGet.
type Announcement struct {
	Item dungeon.Item
	// Revealed is false until the reveal timer has elapsed.
	Revealed bool
	Decoy    bool
}

// Scene is the read-only query surface for renderers and HUDs. It is a copy;
// mutating it has no effect on the machine.
type Scene struct {
	PlaythroughID string
	State         State
	Position      player.Vec3
	Yaw           float64
	Health        int
	Difficulty    int
	Inventory     []player.ItemCount
	Speed         float64
	BrightRadius  float64
	DimRadius     float64
	// Hallway is the current node and its materialized descendants to the
	// configured render depth.
	Hallway             *dungeon.View
	PreJunctionDistance float64
	JunctionDistance    float64
	// Announcement is set during Treasure and TreasureGet.
	Announcement *Announcement
	// Combat is set during Baddy and BattleWin.
	Combat *CombatView
	// StateTimer is the simulation time left on the current state's timer,
	// zero for untimed states.
	StateTimer float64
	Stats      RunStats
	Quit       bool
}

// Scene snapshots the machine for display.
func (m *Machine) Scene() Scene {
	node := m.tree.Node(m.current)
	bright, dim := m.lamp.Radii(m.player.Count(dungeon.ItemLightSource))
	s := Scene{
		PlaythroughID:       m.id.String(),
		State:               m.phase.state,
		Position:            m.player.Position,
		Yaw:                 m.player.Yaw,
		Health:              m.player.Health(),
		Difficulty:          m.player.Difficulty(),
		Inventory:           m.player.Items(),
		Speed:               m.player.Speed(m.cfg.BaseSpeed),
		BrightRadius:        bright,
		DimRadius:           dim,
		Hallway:             m.tree.View(m.current, m.cfg.RenderDepth),
		PreJunctionDistance: PreJunctionDistance(node.Length),
		JunctionDistance:    JunctionDistance(node.Length),
		Stats:               m.stats,
		Quit:                m.quit,
	}

	switch m.phase.state {
	case StateTreasure, StateTreasureGet:
		s.Announcement = &Announcement{
			Item:     m.phase.item,
			Revealed: m.phase.state == StateTreasureGet,
			Decoy:    m.phase.decoy,
		}
	case StateBaddy, StateBattleWin:
		enc := m.phase.encounter
		hits, misses := enc.Totals()
		s.Combat = &CombatView{
			PlayerX:      enc.PlayerX(),
			LateralBound: m.cfg.Combat.LateralBound,
			Bullets:      enc.Bullets(),
			Armed:        enc.Armed(),
			Hits:         hits,
			Misses:       misses,
			Disguised:    m.phase.disguisedFoe,
		}
	}

	switch m.phase.state {
	case StateTreasure, StateTreasureGet, StateBattleWin, StateLose:
		s.StateTimer = m.phase.timer.Remaining()
	}
	return s
}
