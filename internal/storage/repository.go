package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domerrors "github.com/garyellow/docmock/internal/errors"
)

// SaveAsset inserts an asset. CreatedAt is set to the current time when zero.
func (db *DB) SaveAsset(ctx context.Context, asset *Asset) error {
	if asset.CreatedAt == 0 {
		asset.CreatedAt = db.now().Unix()
	}
	query := `
		INSERT INTO assets (id, kind, content_type, width, height, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query,
		asset.ID, asset.Kind, asset.ContentType, asset.Width, asset.Height, asset.Data, asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

// GetAsset retrieves an unexpired asset by ID.
// Returns an error matching ErrNotFound when the asset is missing or expired.
func (db *DB) GetAsset(ctx context.Context, id string) (*Asset, error) {
	query := `
		SELECT id, kind, content_type, width, height, data, created_at
		FROM assets WHERE id = ? AND created_at >= ?
	`
	var a Asset
	err := db.conn.QueryRowContext(ctx, query, id, db.expiryCutoff()).Scan(
		&a.ID, &a.Kind, &a.ContentType, &a.Width, &a.Height, &a.Data, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: %w", id, domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &a, nil
}

// DeleteExpiredAssets removes assets older than the specified TTL.
// Returns the number of deleted entries
func (db *DB) DeleteExpiredAssets(ctx context.Context, ttl time.Duration) (int64, error) {
	query := `DELETE FROM assets WHERE created_at < ?`
	expiryTime := db.now().Add(-ttl).Unix()

	result, err := db.conn.ExecContext(ctx, query, expiryTime)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired assets: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for assets: %w", err)
	}
	return rowsAffected, nil
}

// AssetStats returns the number and total size of stored assets.
func (db *DB) AssetStats(ctx context.Context) (AssetStats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(LENGTH(data)), 0) FROM assets`

	var s AssetStats
	if err := db.conn.QueryRowContext(ctx, query).Scan(&s.Count, &s.Bytes); err != nil {
		return AssetStats{}, fmt.Errorf("failed to count assets: %w", err)
	}
	return s, nil
}
