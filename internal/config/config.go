// Package config provides application configuration management.
// It loads settings from environment variables (optionally from a .env file)
// and provides defaults for the server, exports, asset storage and
// observability integrations.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir       string        // Data directory for the SQLite asset database
	AssetTTL      time.Duration // How long uploaded logos and photos are kept (default: 24h)
	AssetMaxBytes int64         // Upload size limit in bytes (default: 5 MiB)

	// Document Configuration
	UniversityName string // Institution name printed on every document

	// Export Configuration
	Export ExportConfig

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry Configuration (empty DSN = disabled)
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Configuration (empty token = disabled)
	BetterStackToken    string
	BetterStackEndpoint string

	// Object Storage Configuration (all four required to enable publishing)
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
}

// ExportConfig holds image export settings.
type ExportConfig struct {
	Scale       float64 // Device pixel ratio for captures (default: 2)
	GridColumns int     // Columns in the stitched grid (default: 3)
	Concurrency int     // Documents rasterized in parallel (default: 4)

	// Rate Limits (Token Bucket Algorithm, per client IP)
	RateBurst  float64 // Maximum burst exports per client (default: 10)
	RateRefill float64 // Exports refilled per second (default: 0.2 = 1 per 5s)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		DataDir:       getEnv(EnvDataDir, getDefaultDataDir()),
		AssetTTL:      getDurationEnv(EnvAssetTTL, 24*time.Hour),
		AssetMaxBytes: int64(getIntEnv(EnvAssetMaxBytes, 5<<20)),

		// Document Configuration
		UniversityName: getEnv(EnvUniversityName, ""),

		// Export Configuration
		Export: ExportConfig{
			Scale:       getFloatEnv(EnvExportScale, 2.0),
			GridColumns: getIntEnv(EnvExportGridColumns, 3),
			Concurrency: getIntEnv(EnvExportConcurrency, 4),
			RateBurst:   getFloatEnv(EnvExportRateBurst, 10.0),
			RateRefill:  getFloatEnv(EnvExportRateRefill, 0.2), // 1 per 5s
		},

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Sentry Configuration
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		// Better Stack Configuration
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		// Object Storage Configuration
		S3Endpoint:        getEnv(EnvS3Endpoint, ""),
		S3AccessKeyID:     getEnv(EnvS3AccessKeyID, ""),
		S3SecretAccessKey: getEnv(EnvS3SecretAccessKey, ""),
		S3Bucket:          getEnv(EnvS3Bucket, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}
	if c.AssetTTL <= 0 {
		errs = append(errs, fmt.Errorf("ASSET_TTL must be positive, got %v", c.AssetTTL))
	}
	if c.AssetMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("ASSET_MAX_BYTES must be positive, got %d", c.AssetMaxBytes))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("SENTRY_SAMPLE_RATE must be within [0, 1], got %v", c.SentrySampleRate))
	}
	if err := c.Export.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export config: %w", err))
	}
	if c.S3Bucket != "" && !c.HasObjectStorage() {
		errs = append(errs, errors.New("S3_BUCKET requires S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks export settings
func (e ExportConfig) Validate() error {
	var errs []error

	if e.Scale <= 0 || e.Scale > 4 {
		errs = append(errs, fmt.Errorf("EXPORT_SCALE must be within (0, 4], got %v", e.Scale))
	}
	if e.GridColumns < 1 {
		errs = append(errs, fmt.Errorf("EXPORT_GRID_COLUMNS must be at least 1, got %d", e.GridColumns))
	}
	if e.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("EXPORT_CONCURRENCY must be at least 1, got %d", e.Concurrency))
	}
	if e.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("EXPORT_RATE_BURST must be positive, got %v", e.RateBurst))
	}
	if e.RateRefill <= 0 {
		errs = append(errs, fmt.Errorf("EXPORT_RATE_REFILL must be positive, got %v", e.RateRefill))
	}

	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "assets.db")
}

// HasObjectStorage reports whether export publishing is configured.
func (c *Config) HasObjectStorage() bool {
	return c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != "" && c.S3Bucket != ""
}

// HasSentry reports whether error reporting is configured.
func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// HasBetterStack reports whether log shipping is configured.
func (c *Config) HasBetterStack() bool {
	return c.BetterStackToken != ""
}
