package fontface

import (
	"image"
	"image/color"

	"github.com/flavioheleno/ili9488/rgb666"
	"github.com/golang/glog"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Tiny draws glyphs of a TinyGo tinyfont font.
type Tiny struct {
	font   tinyfont.Fonter
	ascent int16
	height int
}

// NewTiny returns a Tiny drawing glyphs of f. ascent is the distance in
// pixels from the top of a line to the baseline.
func NewTiny(f tinyfont.Fonter, ascent int) *Tiny {
	return &Tiny{
		font:   f,
		ascent: int16(ascent),
		height: int(f.GetYAdvance()),
	}
}

// Height returns the line height in pixels.
func (t *Tiny) Height() int {
	return t.height
}

func (t *Tiny) advance(r rune) int {
	_, outbox := tinyfont.LineWidth(t.font, string(r))
	return int(outbox)
}

// GetLetter implements ili9488.Font.
func (t *Tiny) GetLetter(r rune, fg, bg rgb666.RGB) (pix []byte, width, height int) {
	width = t.advance(r)
	if width <= 0 || t.height <= 0 {
		glog.Warningf("fontface: tiny font has no glyph for character %q", r)
		return nil, 0, 0
	}
	c := &cell{img: rgb666.NewImage(image.Rect(0, 0, width, t.height))}
	copy(c.img.Pix, rgb666.Fill(bg, width*t.height))
	tinyfont.DrawChar(c, t.font, 0, t.ascent, r, color.RGBA{R: fg.R, G: fg.G, B: fg.B, A: 0xFF})
	return c.img.Pix, width, t.height
}

// MeasureText implements ili9488.Font.
func (t *Tiny) MeasureText(s string, scale, spacing int) int {
	if scale < 1 {
		scale = 1
	}
	n := 0
	for _, r := range s {
		if w := t.advance(r); w > 0 {
			n += w*scale + spacing
		}
	}
	return n
}

// cell is the drivers.Displayer tinyfont draws a single glyph into.
type cell struct {
	img *rgb666.Image
}

var _ drivers.Displayer = (*cell)(nil)

func (c *cell) Size() (x, y int16) {
	return int16(c.img.Rect.Dx()), int16(c.img.Rect.Dy())
}

func (c *cell) SetPixel(x, y int16, col color.RGBA) {
	c.img.SetRGB(int(x), int(y), rgb666.RGB{R: col.R, G: col.G, B: col.B})
}

func (c *cell) Display() error {
	return nil
}
