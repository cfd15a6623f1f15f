// Package migrations creates and versions the report schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type migration struct {
	version    int
	statements []string
}

var all = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id VARCHAR PRIMARY KEY,
				target VARCHAR NOT NULL,
				started_at TIMESTAMP NOT NULL,
				finished_at TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS check_results (
				run_id VARCHAR NOT NULL,
				name VARCHAR NOT NULL,
				category VARCHAR NOT NULL,
				status VARCHAR NOT NULL CHECK (status IN ('pass', 'fail', 'skip')),
				detail VARCHAR DEFAULT '',
				elapsed_ms BIGINT NOT NULL DEFAULT 0
			)`,
		},
	},
}

// Run applies all pending migrations. It is safe to call on every startup;
// applied versions are tracked in schema_migrations and skipped.
func Run(ctx context.Context, db *sql.DB) error {
	log := zap.S().Named("migrations")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range all {
		var count int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.version).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		log.Debugw("applying migration", "version", m.version)
		for _, stmt := range m.statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
			}
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	return nil
}
