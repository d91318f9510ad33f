package records

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func run(id string, junctions, difficulty int, elapsed float64) Run {
	return Run{PlaythroughID: id, Player: "tester", Junctions: junctions, Difficulty: difficulty, Elapsed: elapsed, FinishedAt: epoch}
}

func TestBetter(t *testing.T) {
	assert.True(t, Better(run("a", 5, 1, 90), run("b", 4, 9, 10)), "depth wins")
	assert.True(t, Better(run("a", 5, 6, 90), run("b", 5, 5, 10)), "then difficulty")
	assert.True(t, Better(run("a", 5, 6, 10), run("b", 5, 6, 11)), "then speed")

	early := run("a", 5, 6, 10)
	late := early
	late.FinishedAt = epoch.Add(time.Minute)
	assert.True(t, Better(early, late), "then age")
	assert.False(t, Better(early, early))
}

func TestMemory_TopRanks(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, run("shallow", 1, 1, 5)))
	require.NoError(t, m.Save(ctx, run("deep", 9, 4, 50)))
	require.NoError(t, m.Save(ctx, run("middle", 4, 2, 20)))

	top, err := m.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "deep", top[0].PlaythroughID)
	assert.Equal(t, "middle", top[1].PlaythroughID)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemory_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, run("p", 3, 1, 5)))
	require.NoError(t, m.Save(ctx, run("p", 7, 1, 5)))

	top, err := m.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 3, top[0].Junctions)
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Save(ctx, run("p", 1, 1, 1)), ErrClosed)
	_, err := m.Top(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.Count(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFromMachine(t *testing.T) {
	m, err := crawler.New(crawler.DefaultConfig(), crawler.Deps{
		Source: dice.NewSeededSource(3),
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r := FromMachine(m, "127.0.0.1:9", at)
	assert.Equal(t, m.PlaythroughID(), r.PlaythroughID)
	assert.Equal(t, "127.0.0.1:9", r.Player)
	assert.Equal(t, m.Difficulty(), r.Difficulty)
	assert.Equal(t, 0, r.Junctions)
	assert.Equal(t, time.UTC, r.FinishedAt.Location())
	assert.True(t, r.FinishedAt.Equal(at))
}

// Property: Top is sorted by Better and never longer than limit.
func TestPropertyTopOrdered(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		m := NewMemory()
		n := rapid.IntRange(0, 30).Draw(t, "n")
		for i := range n {
			r := run(fmt.Sprintf("p%d", i),
				rapid.IntRange(0, 20).Draw(t, "junctions"),
				rapid.IntRange(1, 20).Draw(t, "difficulty"),
				rapid.Float64Range(0, 500).Draw(t, "elapsed"))
			if err := m.Save(ctx, r); err != nil {
				t.Fatal(err)
			}
		}
		limit := rapid.IntRange(0, 40).Draw(t, "limit")
		top, err := m.Top(ctx, limit)
		if err != nil {
			t.Fatal(err)
		}
		if len(top) > limit || len(top) > n {
			t.Fatalf("got %d runs for limit %d of %d", len(top), limit, n)
		}
		for i := 1; i < len(top); i++ {
			if Better(top[i], top[i-1]) {
				t.Fatalf("run %d outranks run %d", i, i-1)
			}
		}
	})
}
