package raster

import (
	"context"
	"image"
	"image/color"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const blockSelector = "h1, h2, h3, p, tr, hr, img, .band"

// op is a deferred drawing operation in device pixels.
type op interface {
	draw(dst *image.RGBA)
}

type fillOp struct {
	rect  image.Rectangle
	color color.Color
}

func (o fillOp) draw(dst *image.RGBA) {
	draw.Draw(dst, o.rect, image.NewUniform(o.color), image.Point{}, draw.Over)
}

type textOp struct {
	face  font.Face
	dot   fixed.Point26_6
	text  string
	color color.Color
}

func (o textOp) draw(dst *image.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(o.color),
		Face: o.face,
		Dot:  o.dot,
	}
	d.DrawString(o.text)
}

type imageOp struct {
	rect image.Rectangle
	src  image.Image
}

func (o imageOp) draw(dst *image.RGBA) {
	draw.CatmullRom.Scale(dst, o.rect, o.src, o.src.Bounds(), draw.Over, nil)
}

// layout walks a document root and records drawing operations.
type layout struct {
	ctx   context.Context
	root  *goquery.Selection
	opts  Options
	faces *faceCache

	width     int // device pixels
	minHeight int
	fixed     bool
	left      int // content box
	right     int
	y         int
	ops       []op
}

func newLayout(ctx context.Context, root *goquery.Selection, opts Options, faces *faceCache) *layout {
	s := opts.Scale
	padding := 40.0
	if root.HasClass("card") {
		padding = 24
	}
	width := px(attrFloat(root, "data-width", 800), s)
	pad := px(padding, s)
	return &layout{
		ctx:       ctx,
		root:      root,
		opts:      opts,
		faces:     faces,
		width:     width,
		minHeight: px(attrFloat(root, "data-height", 0), s),
		fixed:     root.AttrOr("data-fixed", "") == "true",
		left:      pad,
		right:     width - pad,
		y:         pad,
	}
}

func (l *layout) px(v float64) int { return px(v, l.opts.Scale) }

func (l *layout) run() error {
	var err error
	l.root.Find(blockSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if err = l.ctx.Err(); err != nil {
			return false
		}
		if ignored(sel, l.opts.Ignore) || nestedBlock(sel) {
			return true
		}
		switch goquery.NodeName(sel) {
		case "tr":
			err = l.row(sel)
		case "hr":
			l.rule()
		case "img":
			err = l.image(sel)
		default:
			if sel.HasClass("band") {
				err = l.band(sel)
			} else {
				err = l.text(sel)
			}
		}
		return err == nil
	})
	return err
}

// nestedBlock reports whether sel is drawn by an enclosing block.
func nestedBlock(sel *goquery.Selection) bool {
	if sel.Is(".band") {
		return sel.ParentsFiltered(".band").Length() > 0
	}
	return sel.ParentsFiltered(".band, tr").Length() > 0
}

func (l *layout) height() int {
	h := l.y + l.left // bottom padding equals side padding
	if l.fixed && l.minHeight > 0 {
		return l.minHeight
	}
	return max(h, l.minHeight)
}

func (l *layout) paint() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height()))
	draw.Draw(img, img.Bounds(), image.NewUniform(l.opts.Background), image.Point{}, draw.Src)
	for _, o := range l.ops {
		o.draw(img)
	}
	return img
}

func (l *layout) text(sel *goquery.Selection) error {
	st := styleFor(sel)
	face, err := l.faces.face(float64(l.px(st.size)), st.bold)
	if err != nil {
		return err
	}

	l.y += l.px(st.spaceBefore)
	if st.rule {
		w := min(l.px(signatureWidth), l.right-l.left)
		l.ops = append(l.ops, fillOp{image.Rect(l.left, l.y, l.left+w, l.y+max(1, l.px(1))), colorText})
		l.y += l.px(4)
	}

	lh := l.px(st.size * lineHeightRatio)
	for _, line := range wrap(face, normalizeSpace(sel.Text()), l.right-l.left) {
		l.ops = append(l.ops, textOp{
			face:  face,
			dot:   fixed.P(alignX(face, line, l.left, l.right, st.align), baseline(face, l.y, lh)),
			text:  line,
			color: st.color,
		})
		l.y += lh
	}
	l.y += l.px(st.spaceAfter)
	return nil
}

func (l *layout) rule() {
	l.y += l.px(10)
	l.ops = append(l.ops, fillOp{image.Rect(l.left, l.y, l.right, l.y+max(1, l.px(1))), colorRule})
	l.y += l.px(10)
}

func (l *layout) band(sel *goquery.Selection) error {
	h := l.px(attrFloat(sel, "data-height", 48))
	bg, ok := parseHexColor(sel.AttrOr("data-color", ""))
	if !ok {
		bg = color.RGBA{0x1e, 0x3a, 0x8a, 0xff}
	}
	rect := image.Rect(l.left, l.y, l.right, l.y+h)
	l.ops = append(l.ops, fillOp{rect, bg})

	if label := normalizeSpace(sel.Text()); label != "" {
		face, err := l.faces.face(float64(l.px(18)), true)
		if err != nil {
			return err
		}
		inset := l.px(16)
		lines := wrap(face, label, rect.Dx()-2*inset)
		lh := l.px(18 * lineHeightRatio)
		top := l.y + (h-lh*len(lines))/2
		for i, line := range lines {
			l.ops = append(l.ops, textOp{
				face:  face,
				dot:   fixed.P(rect.Min.X+inset, baseline(face, top+i*lh, lh)),
				text:  line,
				color: contrastText(bg),
			})
		}
	}
	l.y += h + l.px(8)
	return nil
}

func (l *layout) row(sel *goquery.Selection) error {
	cells := sel.ChildrenFiltered("td, th")
	if cells.Length() == 0 {
		return nil
	}
	header := sel.ChildrenFiltered("th").Length() > 0

	weights := columnWeights(sel.Closest("table"), cells.Length())
	var total float64
	for _, w := range weights {
		total += w
	}

	face, err := l.faces.face(float64(l.px(tableFontSize)), header)
	if err != nil {
		return err
	}
	lh := l.px(tableFontSize * lineHeightRatio)
	padX, padY := l.px(cellPaddingX), l.px(cellPaddingY)
	span := float64(l.right - l.left)

	type cell struct {
		x0, x1 int
		lines  []string
		align  align
	}
	laid := make([]cell, 0, cells.Length())
	x := float64(l.left)
	rows := 1
	cells.Each(func(i int, c *goquery.Selection) {
		w := span * weights[i] / total
		x0, x1 := int(x), int(x+w)
		lines := wrap(face, normalizeSpace(c.Text()), x1-x0-2*padX)
		rows = max(rows, len(lines))
		laid = append(laid, cell{x0: x0 + padX, x1: x1 - padX, lines: lines, align: alignOf(c)})
		x += w
	})

	h := rows*lh + 2*padY
	rect := image.Rect(l.left, l.y, l.right, l.y+h)
	if header {
		l.ops = append(l.ops, fillOp{rect, colorHeader})
	} else {
		l.ops = append(l.ops, fillOp{image.Rect(l.left, rect.Max.Y-max(1, l.px(1)), l.right, rect.Max.Y), colorBorder})
	}
	for _, c := range laid {
		for i, line := range c.lines {
			l.ops = append(l.ops, textOp{
				face:  face,
				dot:   fixed.P(alignX(face, line, c.x0, c.x1, c.align), baseline(face, l.y+padY+i*lh, lh)),
				text:  line,
				color: colorText,
			})
		}
	}
	l.y += h
	return nil
}

func (l *layout) image(sel *goquery.Selection) error {
	w := l.px(attrFloat(sel, "width", 96))
	h := l.px(attrFloat(sel, "height", 96))
	w = min(w, l.right-l.left)

	x := l.left
	switch alignOf(sel) {
	case alignCenter:
		x = l.left + (l.right-l.left-w)/2
	case alignRight:
		x = l.right - w
	}
	rect := image.Rect(x, l.y, x+w, l.y+h)

	var src image.Image
	if ref := strings.TrimSpace(sel.AttrOr("src", "")); ref != "" && l.opts.Assets != nil {
		img, err := l.opts.Assets.Resolve(l.ctx, ref)
		if err != nil {
			if ctxErr := l.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		} else {
			src = img
		}
	}

	if src != nil {
		l.ops = append(l.ops, imageOp{rect: rect, src: src})
	} else {
		l.placeholder(rect)
	}
	l.y += h + l.px(8)
	return nil
}

// placeholder draws a framed grey box where an image could not be resolved.
func (l *layout) placeholder(r image.Rectangle) {
	b := max(1, l.px(1))
	l.ops = append(l.ops,
		fillOp{r, colorFrame},
		fillOp{r.Inset(b), colorFill},
	)
}

// wrap breaks text into lines no wider than width. Words wider than a line
// are kept whole.
func wrap(face font.Face, text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if font.MeasureString(face, candidate).Ceil() > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	return append(lines, line)
}

func alignX(face font.Face, text string, left, right int, a align) int {
	w := font.MeasureString(face, text).Ceil()
	switch a {
	case alignCenter:
		return left + (right-left-w)/2
	case alignRight:
		return right - w
	default:
		return left
	}
}

// baseline centers a line's ascent and descent within a line box.
func baseline(face font.Face, top, lineHeight int) int {
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	return top + (lineHeight-(ascent+descent))/2 + ascent
}
