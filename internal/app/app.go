// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/garyellow/docmock/internal/assets"
	"github.com/garyellow/docmock/internal/buildinfo"
	"github.com/garyellow/docmock/internal/config"
	"github.com/garyellow/docmock/internal/export"
	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/metrics"
	"github.com/garyellow/docmock/internal/publish"
	"github.com/garyellow/docmock/internal/raster"
	"github.com/garyellow/docmock/internal/ratelimit"
	"github.com/garyellow/docmock/internal/render"
	"github.com/garyellow/docmock/internal/sentry"
	"github.com/garyellow/docmock/internal/storage"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg           *config.Config
	logger        *logger.Logger
	db            *storage.DB
	metrics       *metrics.Metrics
	registry      *prometheus.Registry
	renderer      *render.Renderer
	exporter      *export.Exporter
	assets        *assets.Store
	publisher     *publish.Publisher // nil when object storage is not configured
	exportLimiter *ratelimit.KeyedLimiter
	server        *http.Server
	wg            sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(logger.Options{
		Level:               cfg.LogLevel,
		Writer:              os.Stdout,
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "docmock")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls go through the ContextHandler too.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.Get().Version).Info("Initializing application...")
	if cfg.HasBetterStack() {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if cfg.HasSentry() {
		err := sentry.Initialize(sentry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			Release:     buildinfo.Get().Version,
			SampleRate:  cfg.SentrySampleRate,
		})
		if err != nil {
			log.WithError(err).Warn("Sentry initialization failed")
		} else {
			log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error reporting enabled")
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	db, err := storage.New(ctx, cfg.SQLitePath(), cfg.AssetTTL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).WithField("asset_ttl", cfg.AssetTTL).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	renderer, err := render.New()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("renderer: %w", err)
	}
	rasterizer, err := raster.New()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("rasterizer: %w", err)
	}

	var publisher *publish.Publisher
	if cfg.HasObjectStorage() {
		publisher, err = publish.New(ctx, publish.Config{
			Endpoint:    cfg.S3Endpoint,
			AccessKeyID: cfg.S3AccessKeyID,
			SecretKey:   cfg.S3SecretAccessKey,
			BucketName:  cfg.S3Bucket,
		}, log)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("publisher: %w", err)
		}
		log.WithField("bucket", cfg.S3Bucket).Info("Export publishing enabled")
	}

	app := &Application{
		cfg:       cfg,
		logger:    log,
		db:        db,
		metrics:   m,
		registry:  registry,
		renderer:  renderer,
		assets:    assets.NewStore(db, cfg.AssetMaxBytes, m, log),
		publisher: publisher,
		exporter: export.New(renderer, rasterizer, export.Config{
			Scale:       cfg.Export.Scale,
			GridColumns: cfg.Export.GridColumns,
			Concurrency: cfg.Export.Concurrency,
			Assets:      assets.NewResolver(db),
			Metrics:     m,
		}, log),
		exportLimiter: ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
			Name:          "export",
			Burst:         float64(cfg.Export.RateBurst),
			RefillRate:    cfg.Export.RateRefill,
			CleanupPeriod: config.RateLimiterCleanupInterval,
			Metrics:       m,
		}),
	}

	gin.SetMode(gin.ReleaseMode)
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// routes builds the HTTP router.
func (a *Application) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(requestContextMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/version", a.version)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	router.GET("/", a.previewPage)
	router.GET("/university-logo.png", a.universityLogo)

	api := router.Group("/api")
	api.POST("/records", a.generateRecord)
	api.POST("/records/preview", a.previewRecord)
	api.POST("/documents/:kind", a.renderDocument)
	api.POST("/exports", rateLimitMiddleware(a.exportLimiter), a.exportDocuments)
	api.POST("/exports/:kind", rateLimitMiddleware(a.exportLimiter), a.exportDocument)
	api.POST("/assets", a.uploadAsset)
	api.GET("/assets/:id", a.getAsset)

	return router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	stats, err := a.db.AssetStats(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to read asset stats")
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"assets":   gin.H{"count": stats.Count, "bytes": stats.Bytes},
		"features": gin.H{
			"publish": a.publisher != nil,
			"sentry":  sentry.IsEnabled(),
		},
	})
}

func (a *Application) version(c *gin.Context) {
	c.JSON(http.StatusOK, buildinfo.Get())
}

// Run starts the HTTP server and background jobs.
//
// Shutdown order:
//  1. Receive shutdown signal (SIGINT/SIGTERM)
//  2. Cancel context so background jobs stop
//  3. Wait for background jobs to complete
//  4. Shut down the HTTP server, then close resources
//
// The asset cleanup job must finish before the database closes.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	errCh := a.startHTTPServer()

	select {
	case sig := <-a.waitForShutdownSignal():
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		a.logger.WithError(err).Error("HTTP server stopped unexpectedly")
	}

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		assets.RunCleanup(ctx, a.db, a.cfg.AssetTTL, config.AssetCleanupInterval, a.metrics, a.logger)
	})
}

// startHTTPServer starts the HTTP server in a goroutine. The returned channel
// receives the error if the server stops for any reason other than Shutdown.
func (a *Application) startHTTPServer() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// waitForShutdownSignal returns a channel that receives SIGINT/SIGTERM.
func (a *Application) waitForShutdownSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit
}

// shutdown stops the HTTP server and closes resources.
// Call it only after background jobs have returned.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if a.exportLimiter != nil {
		a.exportLimiter.Stop()
	}

	if sentry.IsEnabled() && !sentry.Flush(2*time.Second) {
		a.logger.Warn("Sentry flush timed out")
	}

	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
