package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/records"
	"github.com/cory-johannsen/hallcrawl/internal/storage/postgres"
	"github.com/cory-johannsen/hallcrawl/internal/testutil"
)

func newRun(junctions, difficulty int, elapsed float64) records.Run {
	return records.Run{
		PlaythroughID:  uuid.NewString(),
		Player:         "10.1.1.1:4000",
		Junctions:      junctions,
		Difficulty:     difficulty,
		FoesDefeated:   1,
		ItemsCollected: 2,
		HitsTaken:      3,
		Elapsed:        elapsed,
		FinishedAt:     time.Date(2026, 7, 8, 9, 10, 11, 0, time.UTC),
	}
}

func TestRunRepository_SaveTopCount(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	repo := postgres.NewRunRepository(pc.Pool)
	ctx := context.Background()

	deep := newRun(9, 4, 80)
	shallow := newRun(1, 1, 5)
	require.NoError(t, repo.Save(ctx, shallow))
	require.NoError(t, repo.Save(ctx, deep))
	require.NoError(t, repo.Save(ctx, deep), "saving twice is a no-op")

	top, err := repo.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, deep, top[0])
	assert.Equal(t, shallow.PlaythroughID, top[1].PlaythroughID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, pc.Pool.Health(ctx, 5*time.Second))
}

func TestRunRepository_RejectsBadID(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	repo := postgres.NewRunRepository(pc.Pool)

	r := newRun(1, 1, 1)
	r.PlaythroughID = "not-a-uuid"
	assert.Error(t, repo.Save(context.Background(), r))
}

// Property: Top agrees with the in-memory ranking.
func TestRunRepository_Property_TopMatchesMemory(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		_, err := pc.Pool.DB().Exec(ctx, "TRUNCATE runs")
		require.NoError(rt, err)
		repo := postgres.NewRunRepository(pc.Pool)
		mem := records.NewMemory()

		n := rapid.IntRange(0, 12).Draw(rt, "n")
		for range n {
			r := newRun(rapid.IntRange(0, 6).Draw(rt, "junctions"),
				rapid.IntRange(1, 4).Draw(rt, "difficulty"),
				float64(rapid.IntRange(0, 100).Draw(rt, "elapsed")))
			require.NoError(rt, repo.Save(ctx, r))
			require.NoError(rt, mem.Save(ctx, r))
		}
		want, err := mem.Top(ctx, 5)
		require.NoError(rt, err)
		got, err := repo.Top(ctx, 5)
		require.NoError(rt, err)
		require.Len(rt, got, len(want))
		for i := range want {
			assert.Equal(rt, want[i].Junctions, got[i].Junctions)
			assert.Equal(rt, want[i].Difficulty, got[i].Difficulty)
			assert.Equal(rt, want[i].Elapsed, got[i].Elapsed)
		}
	})
}

func TestPool_RequireSchema(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, pc.Pool.RequireSchema(ctx))

	_, err := pc.Pool.DB().Exec(ctx, "DROP TABLE runs")
	require.NoError(t, err)
	assert.ErrorIs(t, pc.Pool.RequireSchema(ctx), postgres.ErrSchemaMissing)
}
