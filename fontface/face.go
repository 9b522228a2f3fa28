// Package fontface adapts fonts from other Go font libraries to the
// ili9488.Font interface, so that Dev.Text can draw them like X-GLCD
// fonts.
package fontface

import (
	"image"
	"image/draw"

	"github.com/flavioheleno/ili9488/rgb666"
	"github.com/golang/glog"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Face draws glyphs of a golang.org/x/image font.Face. Every glyph is a
// cell as wide as its advance and as tall as the face's ascent plus
// descent.
type Face struct {
	face   font.Face
	ascent int
	height int
}

// NewFace returns a Face drawing glyphs of f.
func NewFace(f font.Face) *Face {
	m := f.Metrics()
	ascent := m.Ascent.Ceil()
	return &Face{
		face:   f,
		ascent: ascent,
		height: ascent + m.Descent.Ceil(),
	}
}

// Height returns the cell height in pixels.
func (f *Face) Height() int {
	return f.height
}

// GetLetter implements ili9488.Font.
func (f *Face) GetLetter(r rune, fg, bg rgb666.RGB) (pix []byte, width, height int) {
	dr, mask, maskp, advance, ok := f.face.Glyph(fixed.P(0, f.ascent), r)
	if !ok {
		glog.Warningf("fontface: face does not contain character %q", r)
		return nil, 0, 0
	}
	width = advance.Ceil()
	if width <= 0 {
		return nil, 0, 0
	}
	img := rgb666.NewImage(image.Rect(0, 0, width, f.height))
	draw.Draw(img, img.Rect, image.NewUniform(bg), image.Point{}, draw.Src)
	if mask != nil {
		draw.DrawMask(img, dr, image.NewUniform(fg), image.Point{}, mask, maskp, draw.Over)
	}
	return img.Pix, width, f.height
}

// MeasureText implements ili9488.Font.
func (f *Face) MeasureText(s string, scale, spacing int) int {
	if scale < 1 {
		scale = 1
	}
	n := 0
	for _, r := range s {
		_, _, _, advance, ok := f.face.Glyph(fixed.Point26_6{}, r)
		if !ok || advance.Ceil() <= 0 {
			continue
		}
		n += advance.Ceil()*scale + spacing
	}
	return n
}
