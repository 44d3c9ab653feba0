// Package config provides centralized timeout constants for the application.
//
// Exports are the slowest requests the server handles: every document is
// rendered and rasterized before the archive or stitched image is written.
// The HTTP write timeout must cover ExportProcessing plus response transfer.
package config

import "time"

// HTTP server timeouts
const (
	// ExportProcessing bounds the rendering and rasterization of one export.
	ExportProcessing = 60 * time.Second

	// HTTPRead is the HTTP server read timeout. Uploads are capped at a few
	// megabytes, so this stays short.
	HTTPRead = 15 * time.Second

	// HTTPWrite is the HTTP server write timeout.
	HTTPWrite = 75 * time.Second

	// HTTPIdle is the HTTP server idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Background job intervals
const (
	// AssetCleanupInterval is how often expired uploads are deleted.
	AssetCleanupInterval = time.Hour

	// RateLimiterCleanupInterval is how often idle per-client limiters are dropped.
	RateLimiterCleanupInterval = 5 * time.Minute

	// ReadinessCheck bounds the database ping behind /readyz.
	ReadinessCheck = 3 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight exports to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
