package raster

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontSet holds the parsed Go fonts. Parsed fonts are shared; faces are not.
type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
}

func loadFonts() (*fontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &fontSet{regular: regular, bold: bold}, nil
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache creates faces on demand for a single capture.
// Faces keep glyph buffers and must not be shared between goroutines.
type faceCache struct {
	fonts *fontSet
	faces map[faceKey]font.Face
}

func newFaceCache(fonts *fontSet) *faceCache {
	return &faceCache{fonts: fonts, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(size float64, bold bool) (font.Face, error) {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	src := c.fonts.regular
	if bold {
		src = c.fonts.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %.1fpx: %w", size, err)
	}
	c.faces[key] = f
	return f, nil
}

func (c *faceCache) Close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
	clear(c.faces)
}
