package app

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/docmock/internal/assets"
	"github.com/garyellow/docmock/internal/config"
	"github.com/garyellow/docmock/internal/export"
	"github.com/garyellow/docmock/internal/generator"
	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/metrics"
	"github.com/garyellow/docmock/internal/publish"
	"github.com/garyellow/docmock/internal/raster"
	"github.com/garyellow/docmock/internal/ratelimit"
	"github.com/garyellow/docmock/internal/render"
	"github.com/garyellow/docmock/internal/storage"
)

// stubCapturer returns a flat image per document, or fails when told to.
type stubCapturer struct {
	fail bool
}

func (s stubCapturer) Capture(ctx context.Context, _ []byte, _ raster.Options) (image.Image, error) {
	if s.fail {
		return nil, errors.New("capture exploded")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
}

type testOptions struct {
	capturer        export.Capturer
	burst           float64
	metricsPassword string
	publisher       *publish.Publisher
}

// setupTestApp wires an Application around an in-memory database.
func setupTestApp(t *testing.T, opts testOptions) (*Application, http.Handler) {
	t.Helper()

	db, err := storage.New(context.Background(), storage.MemoryPath, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if opts.capturer == nil {
		opts.capturer = stubCapturer{}
	}
	if opts.burst == 0 {
		opts.burst = 100
	}

	cfg := &config.Config{
		Port:            "0",
		ShutdownTimeout: time.Second,
		AssetTTL:        time.Hour,
		AssetMaxBytes:   1 << 20,
		UniversityName:  "Test University",
		MetricsUsername: "prometheus",
		MetricsPassword: opts.metricsPassword,
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := logger.NewWithWriter("error", io.Discard)

	renderer, err := render.New()
	require.NoError(t, err)

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:       "export",
		Burst:      opts.burst,
		RefillRate: 0.001,
		Metrics:    m,
	})
	t.Cleanup(limiter.Stop)

	a := &Application{
		cfg:       cfg,
		logger:    log,
		db:        db,
		metrics:   m,
		registry:  registry,
		renderer:  renderer,
		assets:    assets.NewStore(db, cfg.AssetMaxBytes, m, log),
		publisher: opts.publisher,
		exporter: export.New(renderer, opts.capturer, export.Config{
			Assets:  assets.NewResolver(db),
			Metrics: m,
		}, log),
		exportLimiter: limiter,
	}
	return a, a.routes()
}

func testRecord(t *testing.T) generator.StudentRecord {
	t.Helper()
	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	return generator.New(generator.WithSeed(3), generator.WithClock(func() time.Time { return now })).Generate()
}

func postJSON(t *testing.T, h http.Handler, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(http.MethodPost, target, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	w := get(h, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestReadinessCheck(t *testing.T) {
	t.Parallel()
	a, h := setupTestApp(t, testOptions{})

	w := get(h, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, false, body["features"].(map[string]any)["publish"])

	require.NoError(t, a.db.Close())
	w = get(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestVersion(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	w := get(h, "/version")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"dev"`)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{metricsPassword: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, get(h, "/metrics").Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prometheus", "s3cret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docmock_")
}

func TestPreviewPage(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	w := get(h, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `action="/api/exports"`)
	assert.Contains(t, w.Body.String(), "Test University")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "form-action 'self'")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRequestIDPropagation(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Correlation-Id", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestUniversityLogo(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	w := get(h, "/university-logo.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	_, err := png.Decode(w.Body)
	assert.NoError(t, err)
}

func TestGenerateRecord(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		w := postJSON(t, h, "/api/records", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rec generator.StudentRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.Equal(t, "Test University", rec.UniversityName)
		assert.NotEmpty(t, rec.StudentName)
		assert.Len(t, rec.Courses.Current, 5)
		assert.Nil(t, rec.StudentPhoto)
	})

	t.Run("keeps uploads", func(t *testing.T) {
		t.Parallel()
		w := postJSON(t, h, "/api/records", map[string]string{
			"universityLogo": "asset:logo-1",
			"studentPhoto":   "asset:photo-1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var rec generator.StudentRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.Equal(t, "asset:logo-1", rec.UniversityLogo)
		require.NotNil(t, rec.StudentPhoto)
		assert.Equal(t, "asset:photo-1", *rec.StudentPhoto)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader("{nope"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "body: is not valid JSON", errorMessage(t, w))
	})
}

func TestRenderDocument(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})
	rec := testRecord(t)

	w := postJSON(t, h, "/api/documents/transcript", rec)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), rec.StudentName)

	w = postJSON(t, h, "/api/documents/diploma", rec)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, h, "/api/documents/tuition", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "record: is required", errorMessage(t, w))
}

func TestPreviewRecord(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})
	rec := testRecord(t)

	w := postJSON(t, h, "/api/records/preview", rec)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, len(render.AllKinds), strings.Count(w.Body.String(), `class="doc-label"`))

	w = postJSON(t, h, "/api/records/preview?documents=tuition,schedule", rec)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `class="doc-label"`))
}

func TestExportDocuments(t *testing.T) {
	t.Parallel()
	rec := testRecord(t)

	t.Run("zipped", func(t *testing.T) {
		t.Parallel()
		_, h := setupTestApp(t, testOptions{})
		w := postJSON(t, h, "/api/exports?mode=zipped", rec)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, export.ContentTypeZip, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), export.ArchiveFilename)

		zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
		require.NoError(t, err)
		var names []string
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"Tuition_Statement.png", "Transcript.png", "Schedule.png"}, names)
	})

	t.Run("preview form", func(t *testing.T) {
		t.Parallel()
		_, h := setupTestApp(t, testOptions{})
		raw, err := json.Marshal(rec)
		require.NoError(t, err)
		form := url.Values{"record": {string(raw)}, "mode": {"stitched-horizontal"}}

		req := httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		// Three 40x30 captures side by side.
		assert.Equal(t, 120, img.Bounds().Dx())
	})

	t.Run("capture failure", func(t *testing.T) {
		t.Parallel()
		_, h := setupTestApp(t, testOptions{capturer: stubCapturer{fail: true}})
		w := postJSON(t, h, "/api/exports?mode=stitched", rec)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"export failed"}`, w.Body.String())
	})

	t.Run("invalid parameters", func(t *testing.T) {
		t.Parallel()
		_, h := setupTestApp(t, testOptions{})
		for _, target := range []string{
			"/api/exports?mode=pdf",
			"/api/exports?documents=tuition,diploma",
			"/api/exports?publish=maybe",
			"/api/exports?publish=true",
		} {
			w := postJSON(t, h, target, rec)
			assert.Equal(t, http.StatusBadRequest, w.Code, target)
		}
	})
}

func TestExportDocument(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	w := postJSON(t, h, "/api/exports/card-front", testRecord(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Student_ID_Front.png")
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestExportRateLimit(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{burst: 1})
	rec := testRecord(t)

	w := postJSON(t, h, "/api/exports/tuition", rec)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, h, "/api/exports/tuition", rec)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", errorMessage(t, w))
}

// s3Stub accepts every PUT and remembers the object paths.
type s3Stub struct {
	mu    sync.Mutex
	paths []string
}

func (s *s3Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func TestExportDocuments_Publish(t *testing.T) {
	t.Parallel()
	stub := &s3Stub{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	pub, err := publish.New(context.Background(), publish.Config{
		Endpoint:    srv.URL,
		AccessKeyID: "test",
		SecretKey:   "test",
		BucketName:  "docs",
	}, logger.NewWithWriter("error", io.Discard))
	require.NoError(t, err)

	_, h := setupTestApp(t, testOptions{publisher: pub})
	w := postJSON(t, h, "/api/exports?mode=zipped&publish=true", testRecord(t))
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.Key, publish.KeyPrefix+"/"))
	assert.True(t, strings.HasSuffix(body.Key, "/"+export.ArchiveFilename))
	assert.Equal(t, export.ArchiveFilename, body.Name)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Equal(t, []string{"/docs/" + body.Key}, stub.paths)
}

func multipartUpload(t *testing.T, kind, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("kind", kind))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: 200, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadAndGetAsset(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartUpload(t, "photo", "me.png", pngBytes(t, 60, 80)))
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		ID     string `json:"id"`
		Ref    string `json:"ref"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, assets.Ref(body.ID), body.Ref)
	assert.Equal(t, 60, body.Width)

	got := get(h, "/api/assets/"+body.ID)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "image/png", got.Header().Get("Content-Type"))
	img, err := png.Decode(got.Body)
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dy())

	// A record referencing the upload renders it through the served path.
	rec := testRecord(t)
	rec.StudentPhoto = &body.Ref
	doc := postJSON(t, h, "/api/documents/card-front", rec)
	require.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), `src="/api/assets/`+body.ID+`"`)
}

func TestUploadAsset_Rejections(t *testing.T) {
	t.Parallel()
	_, h := setupTestApp(t, testOptions{})

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"text file", multipartUpload(t, "logo", "notes.txt", []byte("just some words")), http.StatusUnsupportedMediaType},
		{"bad kind", multipartUpload(t, "banner", "a.png", pngBytes(t, 4, 4)), http.StatusBadRequest},
		{"too large", multipartUpload(t, "logo", "big.png", make([]byte, 2<<20)), http.StatusBadRequest},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/api/assets", strings.NewReader("x")), http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, tt.req)
		assert.Equal(t, tt.want, w.Code, tt.name)
		assert.NotEmpty(t, errorMessage(t, w), tt.name)
	}

	assert.Equal(t, http.StatusNotFound, get(h, "/api/assets/does-not-exist").Code)
}
