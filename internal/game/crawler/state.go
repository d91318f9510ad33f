// Package crawler drives a playthrough: traversal through the dungeon tree,
// junction choices, treasure and foe encounters, and the win/lose flow.
package crawler

import (
	"github.com/cory-johannsen/hallcrawl/internal/game/combat"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
)

// State is the top-level state tag of the machine.
type State int

const (
	StateTitle State = iota
	StateMoving
	StateToJunction
	StateWhichWay
	StateTurnLeft
	StateTurnRight
	StateTreasure
	StateTreasureGet
	StateBaddy
	StateBattleWin
	StateLose
	StateGameOver
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateTitle:
		return "Title"
	case StateMoving:
		return "Moving"
	case StateToJunction:
		return "ToJunction"
	case StateWhichWay:
		return "WhichWay"
	case StateTurnLeft:
		return "TurnLeft"
	case StateTurnRight:
		return "TurnRight"
	case StateTreasure:
		return "Treasure"
	case StateTreasureGet:
		return "TreasureGet"
	case StateBaddy:
		return "Baddy"
	case StateBattleWin:
		return "BattleWin"
	case StateLose:
		return "Lose"
	case StateGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// Gameplay reports whether s is part of active play, i.e. not Title, Lose or GameOver.
func (s State) Gameplay() bool {
	switch s {
	case StateTitle, StateLose, StateGameOver:
		return false
	default:
		return true
	}
}

// phase is the single record of per-state data. Only the fields relevant to
// the current state are meaningful; entering a state replaces the whole record.
type phase struct {
	state State
	// timer counts down the fixed duration of Treasure, TreasureGet,
	// BattleWin and Lose.
	timer combat.Countdown
	// item is the treasure being revealed in Treasure/TreasureGet.
	item dungeon.Item
	// decoy is set when the treasure is a disguised foe.
	decoy bool
	// encounter is the fight of Baddy, kept through BattleWin for display.
	encounter *combat.Encounter
	// disguisedFoe is set when the fight came from a decoy.
	disguisedFoe bool
}
