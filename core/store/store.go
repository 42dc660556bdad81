// Package store persists pages, image assets and side records in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store holds the database handle and the repositories built on it.
type Store struct {
	db *sql.DB

	Pages       *Pages
	Assets      *Assets
	SideRecords *SideRecords
}

// Open opens the SQLite database at path and applies pending migrations.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	if _, _, err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:          db,
		Pages:       &Pages{db: db},
		Assets:      &Assets{db: db},
		SideRecords: &SideRecords{db: db},
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations applies all pending migrations and returns the schema version.
func runMigrations(db *sql.DB) (uint, bool, error) {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, false, fmt.Errorf("creating sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return 0, false, fmt.Errorf("creating iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, false, fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, false, fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("reading migration version: %w", err)
	}
	return version, dirty, nil
}
