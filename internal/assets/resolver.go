package assets

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/garyellow/docmock/internal/data"
	domerrors "github.com/garyellow/docmock/internal/errors"
	"github.com/garyellow/docmock/internal/storage"
)

// Resolver turns record image references into images. It understands stored
// asset references, inline base64 data URLs and the built-in logo path.
type Resolver struct {
	repo storage.AssetRepository
}

// NewResolver creates a resolver. repo may be nil, in which case asset
// references do not resolve.
func NewResolver(repo storage.AssetRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve loads the image referenced by src.
func (r *Resolver) Resolve(ctx context.Context, src string) (image.Image, error) {
	switch {
	case src == data.DefaultUniversityLogo:
		return DefaultLogo(), nil

	case strings.HasPrefix(src, RefPrefix), strings.HasPrefix(src, ServedPrefix):
		if r.repo == nil {
			return nil, fmt.Errorf("resolve %s: %w", src, domerrors.ErrNotFound)
		}
		id := strings.TrimPrefix(strings.TrimPrefix(src, RefPrefix), ServedPrefix)
		asset, err := r.repo.GetAsset(ctx, id)
		if err != nil {
			return nil, domerrors.AtStep(domerrors.StepResolve, id).Wrap(err, "could not load image")
		}
		return Decode(asset.Data)

	case strings.HasPrefix(src, "data:"):
		raw, err := decodeDataURL(src)
		if err != nil {
			return nil, err
		}
		return Decode(raw)

	default:
		return nil, fmt.Errorf("resolve %q: %w", src, domerrors.ErrNotFound)
	}
}

// decodeDataURL extracts the payload of a base64 image data URL.
func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok || !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, domerrors.NewValidationError("src", "expected a base64 image data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domerrors.NewValidationError("src", "invalid base64 payload")
	}
	return raw, nil
}
