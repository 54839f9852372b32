// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists search profiles and the article catalog in
// SQLite. The catalog's primary key on the arXiv identifier is the single
// source of truth for deduplication; application-level pre-checks are an
// optimization on top of it.
package catalog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrNotFound is returned when a profile id does not exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrDuplicate is returned when an article's arXiv identifier is
	// already in the catalog. Callers treat it the same as a pre-check hit.
	ErrDuplicate = errors.New("catalog: duplicate arxiv id")
)

// timestampLayout pads fractional seconds to a fixed width so that
// lexicographic comparison of stored timestamps matches chronological
// order. RFC3339Nano drops trailing zeros and breaks ordering within a
// second.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path and applies pending
// migrations. The busy timeout lets a scheduled run and a manual run for
// the same profile interleave without immediate SQLITE_BUSY failures.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
