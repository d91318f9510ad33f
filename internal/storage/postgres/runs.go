package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/hallcrawl/internal/records"
)

// RunRepository is a records.Store over a Pool. Close closes the pool.
type RunRepository struct {
	pool *Pool
}

// NewRunRepository creates a RunRepository.
//
// Precondition: pool must be connected and migrated.
func NewRunRepository(pool *Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Save records run; a playthrough already recorded is left unchanged.
func (r *RunRepository) Save(ctx context.Context, run records.Run) error {
	_, err := r.pool.DB().Exec(ctx, `
		INSERT INTO runs (playthrough_id, player, junctions, difficulty, foes_defeated,
		                  items_collected, hits_taken, elapsed_seconds, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (playthrough_id) DO NOTHING`,
		run.PlaythroughID, run.Player, run.Junctions, run.Difficulty, run.FoesDefeated,
		run.ItemsCollected, run.HitsTaken, run.Elapsed, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.PlaythroughID, err)
	}
	return nil
}

// Top returns the best limit runs.
func (r *RunRepository) Top(ctx context.Context, limit int) ([]records.Run, error) {
	rows, err := r.pool.DB().Query(ctx, `
		SELECT playthrough_id::text, player, junctions, difficulty, foes_defeated,
		       items_collected, hits_taken, elapsed_seconds, finished_at
		FROM runs
		ORDER BY junctions DESC, difficulty DESC, elapsed_seconds ASC, finished_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top runs: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (records.Run, error) {
		var run records.Run
		err := row.Scan(&run.PlaythroughID, &run.Player, &run.Junctions, &run.Difficulty, &run.FoesDefeated,
			&run.ItemsCollected, &run.HitsTaken, &run.Elapsed, &run.FinishedAt)
		run.FinishedAt = run.FinishedAt.UTC()
		return run, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning runs: %w", err)
	}
	return out, nil
}

// Count returns the number of recorded runs.
func (r *RunRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.DB().QueryRow(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

// Close closes the underlying pool.
func (r *RunRepository) Close() error {
	r.pool.Close()
	return nil
}
