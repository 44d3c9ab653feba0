package assets

import (
	"context"
	"time"

	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/storage"
)

// GaugeRecorder receives the asset table size after each cleanup.
type GaugeRecorder interface {
	SetAssetStoreSize(count int, bytes int64)
}

// RunCleanup deletes expired assets every interval until ctx is done.
func RunCleanup(ctx context.Context, repo storage.AssetRepository, ttl, interval time.Duration, gauge GaugeRecorder, log *logger.Logger) {
	log = log.WithModule("asset_cleanup")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		CleanupOnce(ctx, repo, ttl, gauge, log)
		select {
		case <-ctx.Done():
			log.Debug("Asset cleanup stopped")
			return
		case <-ticker.C:
		}
	}
}

// CleanupOnce performs a single cleanup pass.
func CleanupOnce(ctx context.Context, repo storage.AssetRepository, ttl time.Duration, gauge GaugeRecorder, log *logger.Logger) {
	deleted, err := repo.DeleteExpiredAssets(ctx, ttl)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("Failed to delete expired assets")
		}
		return
	}
	if deleted > 0 {
		log.WithField("deleted", deleted).Info("Expired assets removed")
	}

	if gauge == nil {
		return
	}
	stats, err := repo.AssetStats(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read asset stats")
		return
	}
	gauge.SetAssetStoreSize(stats.Count, stats.Bytes)
}
