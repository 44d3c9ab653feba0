package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(registry)
	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Registering twice on the same registry must fail.
	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	New(registry)
}

func TestRecordGeneration(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordGeneration(0.0002)
	m.RecordGeneration(0.0004)

	if got := testutil.ToFloat64(m.RecordsGeneratedTotal); got != 2 {
		t.Errorf("records generated = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.GenerationDurationSeconds); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestRecordExport(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordExport("zipped", "success", 1.2)
	m.RecordExport("zipped", "success", 0.8)
	m.RecordExport("stitched", "error", 3.0)

	if got := testutil.ToFloat64(m.ExportsTotal.WithLabelValues("zipped", "success")); got != 2 {
		t.Errorf("zipped success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ExportsTotal.WithLabelValues("stitched", "error")); got != 1 {
		t.Errorf("stitched error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.ExportDurationSeconds); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestRecordDocumentRasterized(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	for _, kind := range []string{"tuition", "transcript", "tuition"} {
		m.RecordDocumentRasterized(kind)
	}
	if got := testutil.ToFloat64(m.DocumentsRasterizedTotal.WithLabelValues("tuition")); got != 2 {
		t.Errorf("tuition = %v, want 2", got)
	}
}

func TestAssetMetrics(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordAssetUpload("logo", "success")
	m.RecordAssetUpload("photo", "rejected")
	m.SetAssetStoreSize(3, 4096)
	m.SetAssetStoreSize(1, 1024)

	if got := testutil.ToFloat64(m.AssetUploadsTotal.WithLabelValues("photo", "rejected")); got != 1 {
		t.Errorf("photo rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AssetStoreCount); got != 1 {
		t.Errorf("asset count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AssetStoreBytes); got != 1024 {
		t.Errorf("asset bytes = %v, want 1024", got)
	}
}

func TestRecordErrorsAndDrops(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordHTTPError("rate_limit", "/api/exports")
	m.RecordRateLimiterDrop("export")
	m.RecordRateLimiterDrop("export")
	m.RecordPublish("error")

	if got := testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("rate_limit", "/api/exports")); got != 1 {
		t.Errorf("http errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("export")); got != 2 {
		t.Errorf("drops = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PublishTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("publish errors = %v, want 1", got)
	}
}
