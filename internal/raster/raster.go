// Package raster draws the HTML documents produced by the render package
// into images.
//
// It understands the block subset the document templates use: headings,
// paragraphs, table rows, horizontal rules, images and colour bands. The
// layout is a single top-to-bottom flow inside the document's padding box.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AssetResolver loads the image referenced by an img src attribute.
type AssetResolver interface {
	Resolve(ctx context.Context, src string) (image.Image, error)
}

// Options controls a capture.
type Options struct {
	// Background fills the canvas before drawing. Default white.
	Background color.Color
	// Scale is the device pixel ratio. Default 2.
	Scale float64
	// Ignore excludes an element and its subtree. Default skips .doc-label.
	Ignore func(*goquery.Selection) bool
	// BeforeCapture may modify the parsed document before layout.
	BeforeCapture func(*goquery.Document)
	// Assets resolves image sources. Without it every image is a placeholder.
	Assets AssetResolver
}

// DefaultScale is the device pixel ratio used when Options.Scale is unset.
const DefaultScale = 2.0

// MaxScale bounds the device pixel ratio.
const MaxScale = 4.0

// ErrNoContent is returned when the HTML has no element to capture.
var ErrNoContent = errors.New("raster: no content to capture")

// IgnoreDocLabels is the default Ignore predicate.
func IgnoreDocLabels(sel *goquery.Selection) bool {
	return sel.HasClass("doc-label")
}

// flattenedProperties are the inline style properties FlattenEffects removes.
var flattenedProperties = map[string]bool{
	"box-shadow":              true,
	"background-image":        true,
	"backdrop-filter":         true,
	"-webkit-backdrop-filter": true,
	"filter":                  true,
}

// FlattenEffects strips shadows, background images and filters from inline
// styles so a capture matches a printed page.
func FlattenEffects(doc *goquery.Document) {
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		decls := strings.Split(s.AttrOr("style", ""), ";")
		kept := decls[:0]
		for _, d := range decls {
			name, _, _ := strings.Cut(d, ":")
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || flattenedProperties[name] {
				continue
			}
			kept = append(kept, strings.TrimSpace(d))
		}
		if len(kept) == 0 {
			s.RemoveAttr("style")
			return
		}
		s.SetAttr("style", strings.Join(kept, "; ")+";")
	})
}

func (o Options) withDefaults() Options {
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Ignore == nil {
		o.Ignore = IgnoreDocLabels
	}
	return o
}

// Rasterizer captures HTML documents. It is safe for concurrent use.
type Rasterizer struct {
	fonts *fontSet
}

// New loads the fonts used for drawing.
func New() (*Rasterizer, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Rasterizer{fonts: fonts}, nil
}

// Capture renders the first .document element of html (or the body when
// there is none) into an RGBA image.
func (r *Rasterizer) Capture(ctx context.Context, html []byte, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	if opts.Scale > MaxScale {
		return nil, fmt.Errorf("raster: scale %.2f exceeds %.0f", opts.Scale, MaxScale)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("raster: parse html: %w", err)
	}
	if opts.BeforeCapture != nil {
		opts.BeforeCapture(doc)
	}

	root := doc.Find(".document").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return !ignored(s, opts.Ignore)
	}).First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	if root.Length() == 0 {
		return nil, ErrNoContent
	}

	faces := newFaceCache(r.fonts)
	defer faces.Close()

	l := newLayout(ctx, root, opts, faces)
	if err := l.run(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.paint(), nil
}

// ignored reports whether sel or one of its ancestors is excluded.
func ignored(sel *goquery.Selection, ignore func(*goquery.Selection) bool) bool {
	for s := sel; s.Length() > 0; s = s.Parent() {
		if goquery.NodeName(s) == "#document" {
			return false
		}
		if ignore(s) {
			return true
		}
	}
	return false
}

func px(v, scale float64) int {
	return int(math.Round(v * scale))
}
