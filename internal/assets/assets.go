// Package assets normalizes uploaded logos and photos and resolves the image
// references that records carry.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder for image.Decode
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder for image.Decode

	domerrors "github.com/garyellow/docmock/internal/errors"
	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/storage"
)

// Kind is the role of an uploaded image.
type Kind string

const (
	KindLogo  Kind = "logo"
	KindPhoto Kind = "photo"
)

// RefPrefix marks a record image field that points at a stored asset.
const RefPrefix = "asset:"

// ServedPrefix is the path rendered documents use for a stored asset.
const ServedPrefix = "/api/assets/"

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes = 5 << 20

// MaxPixels caps the declared dimensions of an image before it is decoded.
const MaxPixels = 40_000_000

// bounds are the largest stored dimensions per kind.
var bounds = map[Kind]image.Point{
	KindLogo:  {X: 512, Y: 512},
	KindPhoto: {X: 600, Y: 750},
}

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ParseKind validates an asset kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := bounds[k]; !ok {
		return "", domerrors.NewValidationError("kind", "must be logo or photo")
	}
	return k, nil
}

// Ref returns the record field value referencing an asset.
func Ref(id string) string {
	return RefPrefix + id
}

// MetricsRecorder receives upload outcomes.
type MetricsRecorder interface {
	RecordAssetUpload(kind, status string)
}

// Store normalizes uploads and keeps them in the asset repository.
type Store struct {
	repo     storage.AssetRepository
	maxBytes int64
	metrics  MetricsRecorder
	log      *logger.Logger
}

// NewStore creates an asset store. maxBytes <= 0 selects DefaultMaxBytes.
func NewStore(repo storage.AssetRepository, maxBytes int64, metrics MetricsRecorder, log *logger.Logger) *Store {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{
		repo:     repo,
		maxBytes: maxBytes,
		metrics:  metrics,
		log:      log.WithModule("assets"),
	}
}

// Upload reads an image, downsizes it to the kind's bounds and stores it as PNG.
func (s *Store) Upload(ctx context.Context, kind Kind, r io.Reader) (*storage.Asset, error) {
	asset, err := s.upload(ctx, kind, r)
	status := "success"
	switch {
	case err == nil:
	case domerrors.IsInvalidInput(err) || errors.Is(err, domerrors.ErrUnsupportedImage):
		status = "rejected"
	default:
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.RecordAssetUpload(string(kind), status)
	}
	return asset, err
}

func (s *Store) upload(ctx context.Context, kind Kind, r io.Reader) (*storage.Asset, error) {
	bound, ok := bounds[kind]
	if !ok {
		return nil, domerrors.NewValidationError("kind", "must be logo or photo")
	}

	raw, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, domerrors.NewValidationError("file", fmt.Sprintf("exceeds %d bytes", s.maxBytes))
	}

	img, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	img = downscale(img, bound.X, bound.Y)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	b := img.Bounds()
	asset := &storage.Asset{
		ID:          uuid.NewString(),
		Kind:        string(kind),
		ContentType: "image/png",
		Width:       b.Dx(),
		Height:      b.Dy(),
		Data:        buf.Bytes(),
		CreatedAt:   time.Now().Unix(),
	}
	if err := s.repo.SaveAsset(ctx, asset); err != nil {
		return nil, domerrors.AtStep(domerrors.StepStore, string(kind)).Wrap(err, "could not store image")
	}

	s.log.WithFields(map[string]any{
		"asset_id": asset.ID,
		"kind":     kind,
		"width":    asset.Width,
		"height":   asset.Height,
		"bytes":    len(asset.Data),
	}).Info("Asset stored")
	return asset, nil
}

// Get returns a stored asset by ID.
func (s *Store) Get(ctx context.Context, id string) (*storage.Asset, error) {
	return s.repo.GetAsset(ctx, id)
}

// Decode sniffs and decodes PNG, JPEG, GIF or WebP data.
func Decode(raw []byte) (image.Image, error) {
	ct := http.DetectContentType(raw)
	if !allowedTypes[ct] {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrUnsupportedImage,
			domerrors.NewValidationError("file", fmt.Sprintf("content type %s is not a supported image", ct)))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrUnsupportedImage,
			domerrors.NewValidationError("file", "image data is corrupt"))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrUnsupportedImage,
			domerrors.NewValidationError("file", fmt.Sprintf("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, MaxPixels)))
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrUnsupportedImage,
			domerrors.NewValidationError("file", "image data is corrupt"))
	}
	return img, nil
}

// downscale shrinks src to fit maxW×maxH, keeping the aspect ratio.
// Images already within bounds are returned unchanged.
func downscale(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
