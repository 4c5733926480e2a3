package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN is re-run on every open.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillUpdatedAt(db); err != nil {
		return fmt.Errorf("backfilling kv.updated_at: %w", err)
	}
	return nil
}

// migrateBackfillUpdatedAt stamps rows written before updated_at existed.
func migrateBackfillUpdatedAt(db *sql.DB) error {
	_, err := db.Exec(`UPDATE kv SET updated_at = ? WHERE updated_at = ''`,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`ALTER TABLE kv ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_kv_updated ON kv(updated_at)`,
}
