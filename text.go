package ili9488

import (
	"errors"

	"github.com/flavioheleno/ili9488/rgb666"
	"github.com/golang/glog"
)

// Font renders characters into pixel buffers for Text.
//
// Implementations are in the xglcd and fontface packages.
type Font interface {
	// GetLetter returns the pixels of r drawn in fg over bg, 3 bytes per
	// pixel in row-major order, and the glyph size. A character the font
	// cannot draw yields an empty buffer.
	GetLetter(r rune, fg, bg rgb666.RGB) (pix []byte, width, height int)
	// MeasureText returns the width in pixels of s drawn at scale with
	// spacing pixels after each character.
	MeasureText(s string, scale, spacing int) int
}

// TextStyle controls how Text draws a string.
type TextStyle struct {
	Color      rgb666.RGB
	Background rgb666.RGB // zero value is black
	Scale      int        // integer magnification, values below 1 mean 1
	Spacing    int        // pixels between characters
}

// SetFont sets the font used by Text.
func (d *Dev) SetFont(f Font) {
	d.font = f
}

// Font returns the font used by Text, or nil.
func (d *Dev) Font() Font {
	return d.font
}

// Text draws s with its top left corner at (x, y) using the current font.
// Characters the font does not contain are skipped without advancing.
func (d *Dev) Text(x, y int, s string, style TextStyle) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	if d.font == nil {
		glog.Warningf("ili9488: no font set, not drawing %q", s)
		return nil
	}
	scale := max(style.Scale, 1)
	for _, r := range s {
		pix, w, h := d.font.GetLetter(r, style.Color, style.Background)
		if len(pix) == 0 {
			continue
		}
		if scale > 1 {
			pix = rgb666.Scale(pix, w, h, scale)
		}
		sw, sh := w*scale, h*scale
		if err := d.SetWindow(x, y, x+sw-1, y+sh-1); err != nil {
			return err
		}
		if err := d.WriteData(pix...); err != nil {
			return err
		}
		x += sw + style.Spacing
	}
	return nil
}

// MeasureText returns the width of s as Text would draw it with style, or
// 0 when no font is set.
func (d *Dev) MeasureText(s string, style TextStyle) int {
	if d.font == nil {
		return 0
	}
	return d.font.MeasureText(s, max(style.Scale, 1), style.Spacing)
}
