package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/testutil"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "1d3+2", Dice: []int{3}, Modifier: 2}
	assert.Equal(t, 5, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_String_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.StringMatching(`[0-9]+d[0-9]+[+-][0-9]+`).Draw(rt, "expression")
		rolled := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 10).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")

		r := dice.RollResult{Expression: expr, Dice: rolled, Modifier: modifier}
		s := r.String()
		assert.True(rt, strings.HasPrefix(s, expr))
		assert.Contains(rt, s, fmt.Sprintf("= %d", r.Total()))
	})
}

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		count int
		sides int
		mod   int
	}{
		{"d3", 1, 3, 0},
		{"1d3", 1, 3, 0},
		{"2d6+3", 2, 6, 3},
		{"4D8-2", 4, 8, -2},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.count, e.Count)
			assert.Equal(t, tc.sides, e.Sides)
			assert.Equal(t, tc.mod, e.Modifier)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "3", "0d6", "xd6", "1d0", "1dz", "1d6+q"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestExpression_Plus(t *testing.T) {
	e := dice.MustParse("1d3").Plus(2)
	assert.Equal(t, "1d3+2", e.Raw)
	assert.Equal(t, 3, e.Min())
	assert.Equal(t, 5, e.Max())
	assert.Equal(t, "1d3", dice.MustParse("1d3").Plus(0).Raw)
}

// Property: every roll lands inside [Min, Max].
func TestRoll_WithinBounds_Property(t *testing.T) {
	src := dice.NewSeededSource(7)
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 5).Draw(rt, "count")
		sides := rapid.IntRange(1, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-10, 10).Draw(rt, "mod")
		e := dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}
		r := dice.Roll(e, src)
		assert.Len(rt, r.Dice, count)
		assert.GreaterOrEqual(rt, r.Total(), e.Min())
		assert.LessOrEqual(rt, r.Total(), e.Max())
	})
}

func TestCryptoSource_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
		f := src.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestEntropySource_InRange(t *testing.T) {
	src := dice.NewEntropySource()
	for i := 0; i < 100; i++ {
		v := src.Intn(3)
		assert.True(t, v >= 0 && v < 3)
	}
}

func TestPick_Scripted(t *testing.T) {
	weights := []int{2, 1, 2}
	// roll 0,1 -> 0; roll 2 -> 1; roll 3,4 -> 2
	src := testutil.NewScriptedSource([]int{0, 1, 2, 3, 4}, nil)
	got := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		got = append(got, dice.Pick(src, weights))
	}
	assert.Equal(t, []int{0, 0, 1, 2, 2}, got)
}

func TestPick_SkipsZeroWeights(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 8).Draw(rt, "weights")
		sum := 0
		for _, w := range weights {
			sum += w
		}
		if sum == 0 {
			weights[0] = 1
		}
		roll := rapid.IntRange(0, 1000).Draw(rt, "roll")
		idx := dice.Pick(testutil.NewScriptedSource([]int{roll}, nil), weights)
		assert.Greater(rt, weights[idx], 0)
	})
}

func TestPick_PanicsOnBadWeights(t *testing.T) {
	src := dice.NewSeededSource(1)
	assert.Panics(t, func() { dice.Pick(src, []int{0, 0}) })
	assert.Panics(t, func() { dice.Pick(src, []int{1, -1}) })
}

func TestOneIn(t *testing.T) {
	assert.True(t, dice.OneIn(testutil.NewScriptedSource([]int{0}, nil), 4))
	assert.False(t, dice.OneIn(testutil.NewScriptedSource([]int{3}, nil), 4))
}

func TestRoller_LogsAndDelegates(t *testing.T) {
	src := testutil.NewScriptedSource([]int{2, 4}, nil)
	r := dice.NewLoggedRoller(src, zaptest.NewLogger(t))
	res := r.Roll(dice.MustParse("1d3+1"))
	assert.Equal(t, 4, res.Total())
	assert.Equal(t, 2, r.Pick("inhabitant", []int{2, 1, 2}))
	assert.Same(t, src, r.Source())
}
