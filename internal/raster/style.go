package raster

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// textStyle is the computed style of a text block, in CSS pixels.
type textStyle struct {
	size        float64
	bold        bool
	color       color.Color
	align       align
	spaceBefore float64
	spaceAfter  float64
	rule        bool // signature line above the text
}

var (
	colorText   = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorMuted  = color.RGBA{0x64, 0x74, 0x8b, 0xff}
	colorRule   = color.RGBA{0xcb, 0xd5, 0xe1, 0xff}
	colorHeader = color.RGBA{0xf1, 0xf5, 0xf9, 0xff}
	colorBorder = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorFrame  = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorFill   = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
)

const (
	lineHeightRatio = 1.4
	tableFontSize   = 13.0
	cellPaddingX    = 6.0
	cellPaddingY    = 4.0
	signatureWidth  = 260.0
)

func styleFor(sel *goquery.Selection) textStyle {
	st := textStyle{size: 14, color: colorText, spaceBefore: 4, spaceAfter: 4}
	switch goquery.NodeName(sel) {
	case "h1":
		st = textStyle{size: 26, bold: true, color: colorText, spaceAfter: 8}
	case "h2":
		st = textStyle{size: 20, bold: true, color: colorText, spaceBefore: 12, spaceAfter: 8}
	case "h3":
		st = textStyle{size: 16, bold: true, color: colorText, spaceBefore: 12, spaceAfter: 6}
	}

	if sel.HasClass("small") {
		st.size = 11
	}
	if sel.HasClass("bold") {
		st.bold = true
	}
	if sel.HasClass("muted") {
		st.color = colorMuted
	}
	if sel.HasClass("sig") {
		st.spaceBefore = 32
		st.rule = true
	}
	st.align = alignOf(sel)
	return st
}

func alignOf(sel *goquery.Selection) align {
	switch {
	case sel.HasClass("center"):
		return alignCenter
	case sel.HasClass("right"):
		return alignRight
	default:
		return alignLeft
	}
}

// parseHexColor parses #rgb and #rrggbb colors.
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// contrastText picks black or white text for a background.
func contrastText(bg color.Color) color.Color {
	r, g, b, _ := bg.RGBA()
	lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
	if lum > 0.6 {
		return colorText
	}
	return color.White
}

func attrFloat(sel *goquery.Selection, name string, def float64) float64 {
	v, ok := sel.Attr(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

// columnWeights reads a table's data-cols attribute ("1,3,1").
func columnWeights(table *goquery.Selection, n int) []float64 {
	weights := make([]float64, n)
	parts := strings.Split(table.AttrOr("data-cols", ""), ",")
	for i := range weights {
		weights[i] = 1
		if i < len(parts) {
			if w, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64); err == nil && w > 0 {
				weights[i] = w
			}
		}
	}
	return weights
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
