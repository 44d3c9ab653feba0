package export

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// StitchHorizontal places images left to right, top aligned, separated by gap pixels.
func StitchHorizontal(images []image.Image, gap int, bg color.Color) image.Image {
	return StitchGrid(images, len(images), gap, bg)
}

// StitchGrid lays images out row by row in the given number of columns.
// Column widths and row heights fit the largest image in them. A non-zero gap
// also pads the outer edge.
func StitchGrid(images []image.Image, columns, gap int, bg color.Color) image.Image {
	if len(images) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	columns = max(1, min(columns, len(images)))
	rows := (len(images) + columns - 1) / columns

	colW := make([]int, columns)
	rowH := make([]int, rows)
	for i, img := range images {
		b := img.Bounds()
		colW[i%columns] = max(colW[i%columns], b.Dx())
		rowH[i/columns] = max(rowH[i/columns], b.Dy())
	}

	width := gap
	for _, w := range colW {
		width += w + gap
	}
	height := gap
	for _, h := range rowH {
		height += h + gap
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	y := gap
	for r := range rows {
		x := gap
		for c := range columns {
			i := r*columns + c
			if i >= len(images) {
				break
			}
			src := images[i]
			b := src.Bounds()
			draw.Draw(dst, image.Rect(x, y, x+b.Dx(), y+b.Dy()), src, b.Min, draw.Over)
			x += colW[c] + gap
		}
		y += rowH[r] + gap
	}
	return dst
}
