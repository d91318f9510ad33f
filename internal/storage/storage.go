// Package storage opens the records backend named by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/records"
	"github.com/cory-johannsen/hallcrawl/internal/storage/postgres"
	"github.com/cory-johannsen/hallcrawl/internal/storage/sqlite"
)

// OpenRecords returns the records store for cfg.Records, or nil when the
// backend is "none".
//
// Precondition: cfg must be valid. The postgres schema must already be
// migrated (cmd/migrate); sqlite migrates itself.
func OpenRecords(ctx context.Context, cfg config.Config, logger *zap.Logger) (records.Store, error) {
	switch cfg.Records.Backend {
	case config.RecordsNone:
		logger.Info("run records disabled")
		return nil, nil
	case config.RecordsMemory:
		logger.Info("run records kept in memory")
		return records.NewMemory(), nil
	case config.RecordsSQLite:
		store, err := sqlite.Open(ctx, cfg.Records.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite records: %w", err)
		}
		logger.Info("run records in sqlite", zap.String("path", cfg.Records.SQLitePath))
		return store, nil
	case config.RecordsPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("opening postgres records: %w", err)
		}
		if err := pool.RequireSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("opening postgres records: %w", err)
		}
		logger.Info("run records in postgres",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
		)
		return postgres.NewRunRepository(pool), nil
	default:
		return nil, fmt.Errorf("unknown records backend %q", cfg.Records.Backend)
	}
}
