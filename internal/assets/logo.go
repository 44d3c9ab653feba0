package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/draw"
)

const logoSize = 256

var (
	logoOnce sync.Once
	logoImg  *image.RGBA
	logoPNG  []byte
)

// DefaultLogo returns the built-in crest used when no logo was uploaded.
// The returned image is shared and must not be modified.
func DefaultLogo() image.Image {
	logoOnce.Do(buildLogo)
	return logoImg
}

// DefaultLogoPNG returns the built-in crest encoded as PNG.
func DefaultLogoPNG() []byte {
	logoOnce.Do(buildLogo)
	return logoPNG
}

func buildLogo() {
	navy := color.RGBA{0x1e, 0x3a, 0x8a, 0xff}
	gold := color.RGBA{0xd9, 0xa4, 0x1e, 0xff}

	img := image.NewRGBA(image.Rect(0, 0, logoSize, logoSize))
	c := logoSize / 2
	outer, ring, inner := c-4, c-20, c-30

	for y := range logoSize {
		for x := range logoSize {
			dx, dy := x-c, y-c
			d := dx*dx + dy*dy
			switch {
			case d <= inner*inner:
				img.Set(x, y, navy)
			case d <= ring*ring:
				img.Set(x, y, gold)
			case d <= outer*outer:
				img.Set(x, y, navy)
			}
		}
	}

	// Open book: two gold pages with a navy spine.
	page := image.NewUniform(gold)
	draw.Draw(img, image.Rect(c-56, c-36, c-4, c+36), page, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(c+4, c-36, c+56, c+36), page, image.Point{}, draw.Over)

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)

	logoImg = img
	logoPNG = buf.Bytes()
}
