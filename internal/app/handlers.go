package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/garyellow/docmock/internal/assets"
	"github.com/garyellow/docmock/internal/config"
	"github.com/garyellow/docmock/internal/ctxutil"
	domerrors "github.com/garyellow/docmock/internal/errors"
	"github.com/garyellow/docmock/internal/export"
	"github.com/garyellow/docmock/internal/generator"
	"github.com/garyellow/docmock/internal/publish"
	"github.com/garyellow/docmock/internal/render"
	"github.com/garyellow/docmock/internal/sentry"
	"github.com/gin-gonic/gin"
)

// maxRecordBytes bounds a posted record. Records may inline a base64 photo.
const maxRecordBytes = 8 << 20

// multipartOverhead is allowed on top of the asset size limit for form framing.
const multipartOverhead = 64 << 10

// recordSeed carries the uploads a regenerated record keeps.
type recordSeed struct {
	UniversityLogo string  `json:"universityLogo"`
	StudentPhoto   *string `json:"studentPhoto"`
}

// newRecord generates a record. Generators are not safe for concurrent use,
// so every request builds its own.
func (a *Application) newRecord(seed *recordSeed) generator.StudentRecord {
	start := time.Now()
	g := generator.New(generator.WithUniversity(a.cfg.UniversityName))

	var rec generator.StudentRecord
	if seed != nil {
		rec = g.Regenerate(generator.StudentRecord{
			UniversityLogo: seed.UniversityLogo,
			StudentPhoto:   seed.StudentPhoto,
		})
	} else {
		rec = g.Generate()
	}

	if a.metrics != nil {
		a.metrics.RecordGeneration(time.Since(start).Seconds())
	}
	return rec
}

// previewPage serves the interactive preview of a fresh record.
func (a *Application) previewPage(c *gin.Context) {
	page, err := a.renderer.Preview(a.newRecord(nil), render.PreviewOptions{Interactive: true})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (a *Application) universityLogo(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", assets.DefaultLogoPNG())
}

// generateRecord returns a new record as JSON. An optional body of
// {universityLogo, studentPhoto} is carried into the new record.
func (a *Application) generateRecord(c *gin.Context) {
	var seed *recordSeed
	if c.Request.ContentLength != 0 {
		var s recordSeed
		if err := decodeJSON(c, &s); err != nil && !errors.Is(err, io.EOF) {
			a.fail(c, err)
			return
		} else if err == nil {
			seed = &s
		}
	}
	c.JSON(http.StatusOK, a.newRecord(seed))
}

func (a *Application) previewRecord(c *gin.Context) {
	rec, err := bindRecord(c)
	if err != nil {
		a.fail(c, err)
		return
	}
	var kinds []render.Kind
	if docs := c.Query("documents"); docs != "" {
		if kinds, err = render.ParseKinds(docs); err != nil {
			a.fail(c, err)
			return
		}
	}
	page, err := a.renderer.Preview(rec, render.PreviewOptions{Kinds: kinds})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (a *Application) renderDocument(c *gin.Context) {
	kind, err := render.ParseKind(c.Param("kind"))
	if err != nil {
		a.fail(c, err)
		return
	}
	rec, err := bindRecord(c)
	if err != nil {
		a.fail(c, err)
		return
	}
	doc, err := a.renderer.Document(kind, rec)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

// exportDocuments packages several documents. The record comes from a JSON
// body or from the "record" field of the preview form; mode and documents
// may be given as query or form values.
func (a *Application) exportDocuments(c *gin.Context) {
	mode, err := export.ParseMode(queryOrForm(c, "mode"))
	if err != nil {
		a.fail(c, err)
		return
	}
	kinds, err := render.ParseKinds(queryOrForm(c, "documents"))
	if err != nil {
		a.fail(c, err)
		return
	}
	publishTo, err := parseBool(queryOrForm(c, "publish"))
	if err != nil {
		a.fail(c, err)
		return
	}
	if publishTo && a.publisher == nil {
		a.fail(c, domerrors.NewValidationError("publish", "object storage is not configured"))
		return
	}
	rec, err := bindRecord(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ExportProcessing)
	defer cancel()

	start := time.Now()
	artifact, err := a.exporter.Export(ctx, rec, mode, kinds)
	a.recordExport(string(mode), err, start)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.deliver(c, &artifact, publishTo)
}

// exportDocument captures one document as PNG.
func (a *Application) exportDocument(c *gin.Context) {
	kind, err := render.ParseKind(c.Param("kind"))
	if err != nil {
		a.fail(c, err)
		return
	}
	rec, err := bindRecord(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ExportProcessing)
	defer cancel()

	start := time.Now()
	artifact, err := a.exporter.Single(ctx, rec, kind)
	a.recordExport("single", err, start)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.deliver(c, &artifact, false)
}

func (a *Application) recordExport(mode string, err error, start time.Time) {
	if a.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordExport(mode, status, time.Since(start).Seconds())
}

// deliver streams the artifact as a download or, when requested, stores it
// in object storage and returns the key. Publishing runs on a detached
// context so a rendered export is not lost when the client hangs up.
func (a *Application) deliver(c *gin.Context, artifact *export.Artifact, publishTo bool) {
	if !publishTo {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
		c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
		return
	}

	ctx, cancel := context.WithTimeout(ctxutil.PreserveTracing(c.Request.Context()), config.ExportProcessing)
	defer cancel()

	key, err := a.publisher.Publish(ctx, artifact)
	if a.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordPublish(status)
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"key":   key,
		"name":  artifact.Name,
		"bytes": len(artifact.Data),
	})
}

// uploadAsset stores a multipart "file" as a logo or photo.
func (a *Application) uploadAsset(c *gin.Context) {
	limit := a.cfg.AssetMaxBytes + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.fail(c, domerrors.NewValidationError("file", fmt.Sprintf("exceeds %d bytes", a.cfg.AssetMaxBytes)))
			return
		}
		a.fail(c, domerrors.NewValidationError("body", "must be multipart/form-data"))
		return
	}

	kind, err := assets.ParseKind(c.PostForm("kind"))
	if err != nil {
		a.fail(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		a.fail(c, domerrors.NewValidationError("file", "a multipart file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		a.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer func() { _ = f.Close() }()

	asset, err := a.assets.Upload(c.Request.Context(), kind, f)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":     asset.ID,
		"ref":    assets.Ref(asset.ID),
		"width":  asset.Width,
		"height": asset.Height,
	})
}

func (a *Application) getAsset(c *gin.Context) {
	asset, err := a.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, asset.ContentType, asset.Data)
}

// bindRecord reads a posted record from the "record" form field or the JSON body.
func bindRecord(c *gin.Context) (generator.StudentRecord, error) {
	var rec generator.StudentRecord
	if isForm(c) {
		raw := c.PostForm("record")
		if raw == "" {
			return rec, domerrors.NewValidationError("record", "is required")
		}
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return rec, domerrors.NewValidationError("record", "is not valid JSON")
		}
		return rec, nil
	}
	if err := decodeJSON(c, &rec); err != nil {
		if errors.Is(err, io.EOF) {
			return rec, domerrors.NewValidationError("record", "is required")
		}
		return rec, err
	}
	return rec, nil
}

// decodeJSON decodes a size-limited JSON body. An empty body yields io.EOF.
func decodeJSON(c *gin.Context, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxRecordBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return err
		case errors.As(err, &tooLarge):
			return domerrors.NewValidationError("body", fmt.Sprintf("exceeds %d bytes", tooLarge.Limit))
		default:
			return domerrors.NewValidationError("body", "is not valid JSON")
		}
	}
	return nil
}

func isForm(c *gin.Context) bool {
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

func queryOrForm(c *gin.Context, key string) string {
	if v, ok := c.GetQuery(key); ok {
		return v
	}
	if isForm(c) {
		return c.PostForm(key)
	}
	return ""
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, domerrors.NewValidationError("publish", "must be true or false")
	}
	return v, nil
}

// fail writes an error response as {"error": message}. Server errors are
// reported to Sentry.
func (a *Application) fail(c *gin.Context, err error) {
	status, errorType, message := classifyError(err)
	_ = c.Error(err)

	if a.metrics != nil {
		a.metrics.RecordHTTPError(errorType, c.FullPath())
	}
	if status >= http.StatusInternalServerError {
		tags := map[string]string{
			"route":      c.FullPath(),
			"error_type": errorType,
		}
		if step, ok := domerrors.StepOf(err); ok {
			tags["step"] = string(step)
		}
		sentry.CaptureExceptionWithContext(c.Request.Context(), err, tags)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// classifyError maps an error to a status code, a metrics label and the
// message shown to the caller.
func classifyError(err error) (int, string, string) {
	var ve *domerrors.ValidationError
	switch {
	case domerrors.IsRateLimitExceeded(err):
		return http.StatusTooManyRequests, "rate_limited", "rate limit exceeded"
	case domerrors.IsExportFailed(err):
		return http.StatusInternalServerError, "export_failed", "export failed"
	case errors.Is(err, publish.ErrBucketNotFound), errors.Is(err, publish.ErrAccessDenied):
		return http.StatusBadGateway, "publish_failed", "publish failed"
	case errors.Is(err, domerrors.ErrUnsupportedImage):
		message := "unsupported image"
		if errors.As(err, &ve) {
			message = ve.Field + ": " + ve.Message
		}
		return http.StatusUnsupportedMediaType, "unsupported_image", message
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation", ve.Field + ": " + ve.Message
	case domerrors.IsInvalidInput(err):
		return http.StatusBadRequest, "validation", domerrors.PublicMessage(err)
	case domerrors.IsNotFound(err):
		return http.StatusNotFound, "not_found", "not found"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
