package storage

import (
	"context"
	"time"
)

// AssetRepository defines the interface for asset data operations.
type AssetRepository interface {
	SaveAsset(ctx context.Context, asset *Asset) error
	GetAsset(ctx context.Context, id string) (*Asset, error)
	DeleteExpiredAssets(ctx context.Context, ttl time.Duration) (int64, error)
	AssetStats(ctx context.Context) (AssetStats, error)
}

var _ AssetRepository = (*DB)(nil)
