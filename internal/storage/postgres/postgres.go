// Package postgres stores finished runs in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hallcrawl/internal/config"
)

// ErrSchemaMissing reports a database that cmd/migrate has not prepared.
var ErrSchemaMissing = errors.New("runs table missing; run cmd/migrate")

// applicationName tags hallcrawl connections in pg_stat_activity.
const applicationName = "hallcrawl"

// Pool is the pgx pool behind the run repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens a pool sized by cfg and waits for the first ping.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn for %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	pcfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("reaching postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{pool: p}, nil
}

// RequireSchema fails with ErrSchemaMissing when the runs table is absent.
func (p *Pool) RequireSchema(ctx context.Context) error {
	var present bool
	if err := p.pool.QueryRow(ctx, "SELECT to_regclass('runs') IS NOT NULL").Scan(&present); err != nil {
		return fmt.Errorf("checking runs schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Health pings the server, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close waits for acquired connections to be released, then closes them.
func (p *Pool) Close() { p.pool.Close() }

// DB exposes the pgx pool for queries.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }
