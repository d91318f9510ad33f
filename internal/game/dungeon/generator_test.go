package dungeon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/testutil"
)

func newGenerator(src dice.Source) *dungeon.Generator {
	return dungeon.NewGenerator(dungeon.DefaultPolicy(), dice.NewLoggedRoller(src, zap.NewNop()))
}

// Property: for all d >= 1 the length lies in [1+d/10, 3+d/10].
func TestHallwayLength_Range_Property(t *testing.T) {
	gen := newGenerator(dice.NewSeededSource(99))
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.IntRange(1, 10000).Draw(rt, "difficulty")
		got := gen.HallwayLength(d)
		assert.GreaterOrEqual(rt, got, 1+d/10)
		assert.LessOrEqual(rt, got, 3+d/10)
	})
}

func TestHallwayLength_CoversWholeRange(t *testing.T) {
	gen := newGenerator(testutil.NewScriptedSource([]int{0, 1, 2}, nil))
	assert.Equal(t, 3, gen.HallwayLength(25))
	assert.Equal(t, 4, gen.HallwayLength(25))
	assert.Equal(t, 5, gen.HallwayLength(25))
}

func TestNextInhabitant_Scripted(t *testing.T) {
	cases := []struct {
		name  string
		rolls []int
		want  dungeon.Inhabitant
	}{
		{"empty low", []int{0}, dungeon.Empty()},
		{"empty high", []int{1}, dungeon.Empty()},
		{"treasure potion", []int{2, 7}, dungeon.Treasure(dungeon.ItemHealthPotion)},
		{"treasure boots", []int{2, 3}, dungeon.Treasure(dungeon.ItemSpeedBoots)},
		{"treasure light", []int{2, 1}, dungeon.Treasure(dungeon.ItemLightSource)},
		{"ordinary foe", []int{3, 4}, dungeon.Foe(dungeon.FoeOrdinary)},
		{"disguised foe", []int{4, 5}, dungeon.Foe(dungeon.FoeDisguised)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := newGenerator(testutil.NewScriptedSource(tc.rolls, nil))
			assert.Equal(t, tc.want, gen.NextInhabitant())
		})
	}
}

// Property: the decoy item never comes out of the treasure table.
func TestNextTreasureItem_NeverDecoy_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roll := rapid.IntRange(0, 1000).Draw(rt, "roll")
		gen := newGenerator(testutil.NewScriptedSource([]int{roll}, nil))
		assert.NotEqual(rt, dungeon.ItemDisguisedFoeTrap, gen.NextTreasureItem())
	})
}

func TestNextInhabitant_Distribution(t *testing.T) {
	gen := newGenerator(dice.NewSeededSource(1234))
	counts := map[dungeon.Kind]int{}
	disguised := 0
	const n = 20000
	for i := 0; i < n; i++ {
		inh := gen.NextInhabitant()
		counts[inh.Kind]++
		if inh.Kind == dungeon.KindFoe && inh.Foe == dungeon.FoeDisguised {
			disguised++
		}
	}
	assert.InDelta(t, 0.4, float64(counts[dungeon.KindEmpty])/n, 0.03)
	assert.InDelta(t, 0.2, float64(counts[dungeon.KindTreasure])/n, 0.03)
	assert.InDelta(t, 0.4, float64(counts[dungeon.KindFoe])/n, 0.03)
	assert.InDelta(t, 1.0/6.0, float64(disguised)/float64(counts[dungeon.KindFoe]), 0.03)
}
