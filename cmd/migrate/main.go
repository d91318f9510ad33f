// Package main applies the run records schema to the configured backend.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/migrations"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var dialect, url string
	switch cfg.Records.Backend {
	case config.RecordsPostgres:
		dialect, url = migrations.Postgres, cfg.Database.DSN()
	case config.RecordsSQLite:
		dialect, url = migrations.SQLite, "sqlite://"+cfg.Records.SQLitePath
	default:
		log.Fatalf("records backend %q has no schema", cfg.Records.Backend)
	}

	m, err := migrations.New(dialect, url)
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatalf("invalid direction %q: must be 'up' or 'down'", *direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	elapsed := time.Since(start)

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stdout, "%s: no changes (version=%d dirty=%v) [%s]\n", dialect, version, dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "%s: migrated %s to version=%d dirty=%v [%s]\n", dialect, *direction, version, dirty, elapsed)
	}
}
