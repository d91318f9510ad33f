// Package migrations embeds the records schema for each SQL dialect and
// applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Dialects with an embedded schema.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// New returns a migrator for dialect against databaseURL
// ("postgres://..." or "sqlite://path").
//
// Precondition: dialect must be Postgres or SQLite.
// Postcondition: The caller must Close the returned migrator.
func New(dialect, databaseURL string) (*migrate.Migrate, error) {
	if dialect != Postgres && dialect != SQLite {
		return nil, fmt.Errorf("unknown migration dialect %q", dialect)
	}
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("opening embedded %s migrations: %w", dialect, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating %s migrator: %w", dialect, err)
	}
	return m, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
//
// Postcondition: Returns the schema version after migrating.
func Up(dialect, databaseURL string) (uint, error) {
	m, err := New(dialect, databaseURL)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrating %s up: %w", dialect, err)
	}
	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading %s schema version: %w", dialect, err)
	}
	return version, nil
}
