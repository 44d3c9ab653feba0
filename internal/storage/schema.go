package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	return createAssetsTable(ctx, db)
}

func createAssetsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		kind TEXT CHECK(kind IN ('logo', 'photo')) NOT NULL,
		content_type TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets(created_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create assets table: %w", err)
	}

	return nil
}
