// Package export rasterizes rendered documents and packages them as a
// single image, a stitched composite or a zip archive.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	domerrors "github.com/garyellow/docmock/internal/errors"
	"github.com/garyellow/docmock/internal/generator"
	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/raster"
	"github.com/garyellow/docmock/internal/render"
)

// Mode selects how several documents are packaged.
type Mode string

const (
	ModeStitched   Mode = "stitched"
	ModeHorizontal Mode = "stitched-horizontal"
	ModeZipped     Mode = "zipped"
)

// Artifact names.
const (
	CombinedFilename = "Documents_Combined.png"
	ArchiveFilename  = "Documents.zip"
)

// Content types of produced artifacts.
const (
	ContentTypePNG = "image/png"
	ContentTypeZip = "application/zip"
)

// ParseMode validates an export mode. An empty string selects ModeHorizontal.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeHorizontal, nil
	case ModeStitched, ModeHorizontal, ModeZipped:
		return m, nil
	default:
		return "", domerrors.NewValidationError("mode", fmt.Sprintf("unknown export mode %q", s))
	}
}

// Artifact is one downloadable export result.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// DocumentRenderer produces the HTML of one document.
type DocumentRenderer interface {
	Document(kind render.Kind, rec generator.StudentRecord) ([]byte, error)
}

// Capturer rasterizes HTML.
type Capturer interface {
	Capture(ctx context.Context, html []byte, opts raster.Options) (image.Image, error)
}

// DocumentRecorder counts rasterized documents.
type DocumentRecorder interface {
	RecordDocumentRasterized(kind string)
}

// Config tunes an Exporter.
type Config struct {
	Scale       float64
	GridColumns int
	Concurrency int
	Background  color.Color
	Assets      raster.AssetResolver
	Metrics     DocumentRecorder // optional
	// BeforeCapture adjusts each parsed document. Default raster.FlattenEffects.
	BeforeCapture func(*goquery.Document)
}

const (
	defaultGridColumns = 3
	defaultConcurrency = 4
	// gridGap is the space between and around documents in a grid, in CSS pixels.
	gridGap = 40
)

// Exporter renders, captures and packages documents. It is safe for concurrent use.
type Exporter struct {
	renderer DocumentRenderer
	capturer Capturer
	cfg      Config
	log      *logger.Logger
}

// New creates an Exporter.
func New(renderer DocumentRenderer, capturer Capturer, cfg Config, log *logger.Logger) *Exporter {
	if cfg.Scale <= 0 {
		cfg.Scale = raster.DefaultScale
	}
	if cfg.GridColumns <= 0 {
		cfg.GridColumns = defaultGridColumns
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Background == nil {
		cfg.Background = color.White
	}
	if cfg.BeforeCapture == nil {
		cfg.BeforeCapture = raster.FlattenEffects
	}
	return &Exporter{
		renderer: renderer,
		capturer: capturer,
		cfg:      cfg,
		log:      log.WithModule("export"),
	}
}

func (e *Exporter) options() raster.Options {
	return raster.Options{
		Background:    e.cfg.Background,
		Scale:         e.cfg.Scale,
		Ignore:        raster.IgnoreDocLabels,
		Assets:        e.cfg.Assets,
		BeforeCapture: e.cfg.BeforeCapture,
	}
}

// CaptureAll captures the given documents concurrently, preserving order.
// The first failure cancels the remaining captures.
func (e *Exporter) CaptureAll(ctx context.Context, rec generator.StudentRecord, kinds []render.Kind) ([]image.Image, error) {
	if len(kinds) == 0 {
		return nil, domerrors.NewValidationError("documents", "no documents selected")
	}

	images := make([]image.Image, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for i, kind := range kinds {
		g.Go(func() error {
			img, err := e.capture(ctx, rec, kind)
			if err != nil {
				return domerrors.NewExportError(kind.Filename(), err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.log.WithError(err).Warn("Document capture failed")
		return nil, err
	}
	return images, nil
}

func (e *Exporter) capture(ctx context.Context, rec generator.StudentRecord, kind render.Kind) (image.Image, error) {
	html, err := e.renderer.Document(kind, rec)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	img, err := e.capturer.Capture(ctx, html, e.options())
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.RecordDocumentRasterized(string(kind))
	}
	return img, nil
}

// Single exports one document as PNG.
func (e *Exporter) Single(ctx context.Context, rec generator.StudentRecord, kind render.Kind) (Artifact, error) {
	images, err := e.CaptureAll(ctx, rec, []render.Kind{kind})
	if err != nil {
		return Artifact{}, err
	}
	data, err := encodePNG(images[0])
	if err != nil {
		return Artifact{}, domerrors.NewExportError(kind.Filename(), err)
	}
	return Artifact{Name: kind.Filename(), ContentType: ContentTypePNG, Data: data}, nil
}

// Export packages the selected documents according to mode.
// Either the whole artifact is produced or an error matching ErrExportFailed is returned.
func (e *Exporter) Export(ctx context.Context, rec generator.StudentRecord, mode Mode, kinds []render.Kind) (Artifact, error) {
	if len(kinds) == 0 {
		kinds = render.CoreKinds
	}
	images, err := e.CaptureAll(ctx, rec, kinds)
	if err != nil {
		return Artifact{}, err
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, domerrors.NewExportError(string(mode), err)
	}

	switch mode {
	case ModeZipped:
		files := make([]File, len(images))
		for i, img := range images {
			data, err := encodePNG(img)
			if err != nil {
				return Artifact{}, domerrors.NewExportError(kinds[i].Filename(), err)
			}
			files[i] = File{Name: kinds[i].Filename(), Data: data}
		}
		archive, err := Zip(files)
		if err != nil {
			return Artifact{}, domerrors.NewExportError(ArchiveFilename, err)
		}
		return Artifact{Name: ArchiveFilename, ContentType: ContentTypeZip, Data: archive}, nil

	case ModeStitched, ModeHorizontal:
		var composite image.Image
		if mode == ModeStitched {
			gap := int(gridGap * e.cfg.Scale)
			composite = StitchGrid(images, e.cfg.GridColumns, gap, e.cfg.Background)
		} else {
			composite = StitchHorizontal(images, 0, e.cfg.Background)
		}
		data, err := encodePNG(composite)
		if err != nil {
			return Artifact{}, domerrors.NewExportError(CombinedFilename, err)
		}
		return Artifact{Name: CombinedFilename, ContentType: ContentTypePNG, Data: data}, nil

	default:
		return Artifact{}, domerrors.NewValidationError("mode", fmt.Sprintf("unknown export mode %q", mode))
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
