// Package player models the crawler's transform, health, difficulty counter
// and collected items, plus the modifiers those items grant.
package player

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
)

// Vec3 is a position in hallway-local world units. Z is forward progress.
type Vec3 struct {
	X, Y, Z float64
}

// ItemCount is one entry of the inventory multiset.
type ItemCount struct {
	Item  dungeon.Item
	Count int
}

// Player is the state of one playthrough's crawler.
//
// Invariant: Difficulty never decreases; health changes only through
// ApplyItem (health potion) and TakeHit.
type Player struct {
	Position Vec3
	// Yaw is the accumulated turn in degrees; left is positive.
	Yaw float64

	health     int
	difficulty int
	items      map[dungeon.Item]int
}

// New creates a player at the origin.
//
// Precondition: health >= 1; difficulty >= 1.
// Postcondition: Returns a Player or an error describing the invalid input.
func New(health, difficulty int) (*Player, error) {
	if health < 1 {
		return nil, fmt.Errorf("starting health must be >= 1, got %d", health)
	}
	if difficulty < 1 {
		return nil, fmt.Errorf("starting difficulty must be >= 1, got %d", difficulty)
	}
	return &Player{
		health:     health,
		difficulty: difficulty,
		items:      make(map[dungeon.Item]int),
	}, nil
}

// Health returns current health. It may be zero or negative once the player has lost.
func (p *Player) Health() int { return p.health }

// Difficulty returns the difficulty counter.
func (p *Player) Difficulty() int { return p.difficulty }

// Alive reports whether health is above zero.
func (p *Player) Alive() bool { return p.health > 0 }

// TakeHit removes one point of health.
func (p *Player) TakeHit() { p.health-- }

// AdvanceDifficulty increments the difficulty counter by one.
//
// Postcondition: Difficulty() is one greater than before.
func (p *Player) AdvanceDifficulty() { p.difficulty++ }

// ApplyItem applies a collected item: health potions heal one point and are
// consumed, light sources and speed boots are kept. It reports whether the
// item was stored. The decoy trap is never applied.
//
// Precondition: item != dungeon.ItemDisguisedFoeTrap.
func (p *Player) ApplyItem(item dungeon.Item) bool {
	switch item {
	case dungeon.ItemHealthPotion:
		p.health++
		return false
	case dungeon.ItemLightSource, dungeon.ItemSpeedBoots:
		p.items[item]++
		return true
	default:
		panic(fmt.Sprintf("player: ApplyItem called with %s", item))
	}
}

// Count returns how many of item are held.
func (p *Player) Count(item dungeon.Item) int { return p.items[item] }

// Items returns the inventory multiset in item order.
func (p *Player) Items() []ItemCount {
	out := make([]ItemCount, 0, len(p.items))
	for item, n := range p.items {
		if n > 0 {
			out = append(out, ItemCount{Item: item, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

// Speed returns the corridor movement speed: base plus one per pair of speed
// boots held. Turning does not use this; it runs at base speed.
func (p *Player) Speed(base float64) float64 {
	return base + float64(p.items[dungeon.ItemSpeedBoots])
}

// ResetTransform returns the player to the start of a hallway, facing forward.
func (p *Player) ResetTransform() {
	p.Position = Vec3{}
	p.Yaw = 0
}
