package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"datalens/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements returns the DDL for driver in execution order. Drivers other
// than sqlite3 get the PostgreSQL schema.
func (r *MigrationRunner) Statements(driver string) []string {
	create := `CREATE TABLE IF NOT EXISTS datasets (
			id                TEXT PRIMARY KEY,
			owner_id          TEXT NOT NULL DEFAULT '',
			original_filename TEXT NOT NULL,
			file_path         TEXT NOT NULL,
			file_type         TEXT NOT NULL,
			file_size         BIGINT NOT NULL DEFAULT 0,
			row_count         INTEGER NOT NULL DEFAULT 0,
			column_count      INTEGER NOT NULL DEFAULT 0,
			columns           JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if driver == "sqlite3" {
		// go-sqlite3 only parses times back from DATETIME/TIMESTAMP columns
		create = `CREATE TABLE IF NOT EXISTS datasets (
			id                TEXT PRIMARY KEY,
			owner_id          TEXT NOT NULL DEFAULT '',
			original_filename TEXT NOT NULL,
			file_path         TEXT NOT NULL,
			file_type         TEXT NOT NULL,
			file_size         INTEGER NOT NULL DEFAULT 0,
			row_count         INTEGER NOT NULL DEFAULT 0,
			column_count      INTEGER NOT NULL DEFAULT 0,
			columns           BLOB NOT NULL DEFAULT '[]',
			created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}
	return []string{
		create,
		`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_owner_id ON datasets (owner_id)`,
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin migration", err)
	}
	defer tx.Rollback()

	for i, stmt := range r.Statements(db.DriverName()) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.DatabaseError("migration step failed", errors.Wrapf(err, "statement %d", i+1))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit migration", err)
	}
	return nil
}
