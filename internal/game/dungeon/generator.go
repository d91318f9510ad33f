package dungeon

import "github.com/cory-johannsen/hallcrawl/internal/game/dice"

// Generator draws hallway lengths, inhabitants and treasure items.
// It holds no state between calls besides its policy and random source.
type Generator struct {
	policy Policy
	roller *dice.Roller
}

// NewGenerator creates a Generator that draws through roller.
//
// Precondition: policy must be valid; roller must be non-nil.
func NewGenerator(policy Policy, roller *dice.Roller) *Generator {
	return &Generator{policy: policy, roller: roller}
}

// Policy returns the generator's content-distribution policy.
func (g *Generator) Policy() Policy { return g.policy }

// HallwayLength draws a length uniform over the policy's length roll plus
// difficulty/DifficultyStep. With the default policy that is
// [1 + difficulty/10, 3 + difficulty/10].
//
// Precondition: difficulty >= 0.
// Postcondition: Returns a length >= 1.
func (g *Generator) HallwayLength(difficulty int) int {
	expr := g.policy.HallwayLength.Plus(difficulty / g.policy.DifficultyStep)
	return g.roller.Roll(expr).Total()
}

// NextInhabitant draws Empty, Treasure or Foe from the inhabitant table. A
// treasure draws its item from the treasure table; a foe draws its kind from
// the foe table.
func (g *Generator) NextInhabitant() Inhabitant {
	w := g.policy.Inhabitants
	switch g.roller.Pick("inhabitant", []int{w.Empty, w.Treasure, w.Foe}) {
	case 1:
		return Treasure(g.NextTreasureItem())
	case 2:
		f := g.policy.Foes
		if g.roller.Pick("foe", []int{f.Ordinary, f.Disguised}) == 1 {
			return Foe(FoeDisguised)
		}
		return Foe(FoeOrdinary)
	default:
		return Empty()
	}
}

// NextTreasureItem draws a treasure item. The decoy ItemDisguisedFoeTrap is
// never returned.
func (g *Generator) NextTreasureItem() Item {
	t := g.policy.Treasure
	switch g.roller.Pick("treasure", []int{t.LightSource, t.SpeedBoots, t.HealthPotion}) {
	case 0:
		return ItemLightSource
	case 1:
		return ItemSpeedBoots
	default:
		return ItemHealthPotion
	}
}
