// Package sqlite stores finished runs in an embedded SQLite database, for
// single-machine play without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/hallcrawl/internal/records"
	"github.com/cory-johannsen/hallcrawl/migrations"
)

// RunStore is a records.Store backed by a SQLite file.
type RunStore struct {
	db *sql.DB

	closeOnce sync.Once
	closeErr  error
}

// Open migrates the database at path to the current schema and opens it.
//
// Precondition: path must be a writable file path.
// Postcondition: Returns a ready RunStore or a non-nil error.
func Open(ctx context.Context, path string) (*RunStore, error) {
	if _, err := migrations.Up(migrations.SQLite, "sqlite://"+path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY between them.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring sqlite database: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Save records run; a playthrough already recorded is left unchanged.
func (s *RunStore) Save(ctx context.Context, run records.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (playthrough_id, player, junctions, difficulty, foes_defeated,
		                  items_collected, hits_taken, elapsed_seconds, finished_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (playthrough_id) DO NOTHING`,
		run.PlaythroughID, run.Player, run.Junctions, run.Difficulty, run.FoesDefeated,
		run.ItemsCollected, run.HitsTaken, run.Elapsed, run.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.PlaythroughID, err)
	}
	return nil
}

// Top returns the best limit runs.
func (s *RunStore) Top(ctx context.Context, limit int) ([]records.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT playthrough_id, player, junctions, difficulty, foes_defeated,
		       items_collected, hits_taken, elapsed_seconds, finished_at_ms
		FROM runs
		ORDER BY junctions DESC, difficulty DESC, elapsed_seconds ASC, finished_at_ms ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top runs: %w", err)
	}
	defer rows.Close()

	var out []records.Run
	for rows.Next() {
		var r records.Run
		var finishedMs int64
		if err := rows.Scan(&r.PlaythroughID, &r.Player, &r.Junctions, &r.Difficulty, &r.FoesDefeated,
			&r.ItemsCollected, &r.HitsTaken, &r.Elapsed, &finishedMs); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.FinishedAt = time.UnixMilli(finishedMs).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return out, nil
}

// Count returns the number of recorded runs.
func (s *RunStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

// Close closes the database. Safe to call more than once.
func (s *RunStore) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.db.Close() })
	return s.closeErr
}
