package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "DOCMOCK_PORT"
	EnvLogLevel        = "DOCMOCK_LOG_LEVEL"
	EnvShutdownTimeout = "DOCMOCK_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir       = "DOCMOCK_DATA_DIR"
	EnvAssetTTL      = "DOCMOCK_ASSET_TTL"
	EnvAssetMaxBytes = "DOCMOCK_ASSET_MAX_BYTES"

	// Documents
	EnvUniversityName = "DOCMOCK_UNIVERSITY_NAME"

	// Export
	EnvExportScale       = "DOCMOCK_EXPORT_SCALE"
	EnvExportGridColumns = "DOCMOCK_EXPORT_GRID_COLUMNS"
	EnvExportConcurrency = "DOCMOCK_EXPORT_CONCURRENCY"

	// Rate Limits
	EnvExportRateBurst  = "DOCMOCK_EXPORT_RATE_BURST"
	EnvExportRateRefill = "DOCMOCK_EXPORT_RATE_REFILL"

	// Metrics Auth Feature
	EnvMetricsUsername = "DOCMOCK_METRICS_USERNAME"
	EnvMetricsPassword = "DOCMOCK_METRICS_PASSWORD"

	// Sentry Feature
	EnvSentryDSN         = "DOCMOCK_SENTRY_DSN"
	EnvSentryEnvironment = "DOCMOCK_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "DOCMOCK_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "DOCMOCK_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "DOCMOCK_BETTERSTACK_ENDPOINT"

	// Object Storage Feature
	EnvS3Endpoint        = "DOCMOCK_S3_ENDPOINT"
	EnvS3AccessKeyID     = "DOCMOCK_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "DOCMOCK_S3_SECRET_ACCESS_KEY"
	EnvS3Bucket          = "DOCMOCK_S3_BUCKET"
)
