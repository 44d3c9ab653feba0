// Package metrics defines the Prometheus metrics exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Generation metrics
	RecordsGeneratedTotal     prometheus.Counter
	GenerationDurationSeconds prometheus.Histogram

	// Export metrics
	ExportsTotal             *prometheus.CounterVec
	ExportDurationSeconds    *prometheus.HistogramVec
	DocumentsRasterizedTotal *prometheus.CounterVec

	// Asset metrics
	AssetUploadsTotal *prometheus.CounterVec
	AssetStoreCount   prometheus.Gauge
	AssetStoreBytes   prometheus.Gauge

	// Publish metrics
	PublishTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Generation metrics
		RecordsGeneratedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "docmock_records_generated_total",
				Help: "Total number of student records generated",
			},
		),

		GenerationDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docmock_generation_duration_seconds",
				Help:    "Record generation duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05}, // Pure in-memory work
			},
		),

		// Export metrics
		ExportsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmock_exports_total",
				Help: "Total number of exports by mode and status",
			},
			[]string{"mode", "status"}, // status: success, error, canceled
		),

		ExportDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docmock_export_duration_seconds",
				Help:    "Export duration in seconds by mode",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}, // Matches 60s export timeout
			},
			[]string{"mode"}, // mode: stitched, stitched-horizontal, zipped, single
		),

		DocumentsRasterizedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmock_documents_rasterized_total",
				Help: "Total number of documents rasterized by kind",
			},
			[]string{"kind"},
		),

		// Asset metrics
		AssetUploadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmock_asset_uploads_total",
				Help: "Total number of asset uploads by kind and status",
			},
			[]string{"kind", "status"}, // status: success, rejected, error
		),

		AssetStoreCount: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "docmock_asset_store_entries",
				Help: "Number of uploaded assets currently stored",
			},
		),

		AssetStoreBytes: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "docmock_asset_store_bytes",
				Help: "Total size of uploaded assets currently stored",
			},
		),

		// Publish metrics
		PublishTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmock_publish_total",
				Help: "Total number of export uploads to object storage by status",
			},
			[]string{"status"}, // status: success, error
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmock_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"}, // error_type: invalid_input, not_found, rate_limit, export_failed, internal
		),

		// Rate limiter metrics
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docmock_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: export, upload
		),
	}

	return m
}

// RecordGeneration records one generated record
func (m *Metrics) RecordGeneration(duration float64) {
	m.RecordsGeneratedTotal.Inc()
	m.GenerationDurationSeconds.Observe(duration)
}

// RecordExport records an export outcome
func (m *Metrics) RecordExport(mode, status string, duration float64) {
	m.ExportsTotal.WithLabelValues(mode, status).Inc()
	m.ExportDurationSeconds.WithLabelValues(mode).Observe(duration)
}

// RecordDocumentRasterized records one rasterized document
func (m *Metrics) RecordDocumentRasterized(kind string) {
	m.DocumentsRasterizedTotal.WithLabelValues(kind).Inc()
}

// RecordAssetUpload records an asset upload outcome
func (m *Metrics) RecordAssetUpload(kind, status string) {
	m.AssetUploadsTotal.WithLabelValues(kind, status).Inc()
}

// SetAssetStoreSize updates the asset store gauges
func (m *Metrics) SetAssetStoreSize(count int, bytes int64) {
	m.AssetStoreCount.Set(float64(count))
	m.AssetStoreBytes.Set(float64(bytes))
}

// RecordPublish records an object storage upload outcome
func (m *Metrics) RecordPublish(status string) {
	m.PublishTotal.WithLabelValues(status).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}
