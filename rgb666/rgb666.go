package rgb666

import (
	"image"
	"image/color"
)

// RGB is a color as sent to the ILI9488 in 18-bit mode: one byte per
// channel, of which the controller only latches the upper 6 bits.
type RGB struct {
	R, G, B uint8
}

// Predefined colors.
var (
	Black   = RGB{0, 0, 0}
	White   = RGB{255, 255, 255}
	Red     = RGB{255, 0, 0}
	Green   = RGB{0, 255, 0}
	Blue    = RGB{0, 0, 255}
	Yellow  = RGB{255, 255, 0}
	Cyan    = RGB{0, 255, 255}
	Magenta = RGB{255, 0, 255}
	Gray    = RGB{128, 128, 128}
	Orange  = RGB{255, 165, 0}
	Purple  = RGB{128, 0, 128}
)

// RGBA implements color.Color. The color is always opaque.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xFFFF
}

// Bytes returns the wire representation of c.
func (c RGB) Bytes() [3]byte {
	return [3]byte{c.R, c.G, c.B}
}

func toRGB(c color.Color) color.Color {
	if v, ok := c.(RGB); ok {
		return v
	}
	// Alpha is dropped; premultiplied channels render as if over black.
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Model converts colors to RGB.
var Model = color.ModelFunc(toRGB)

// Fill returns a buffer of n pixels of color c.
func Fill(c RGB, n int) []byte {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, 3*n)
	for i := 0; i < len(buf); i += 3 {
		buf[i] = c.R
		buf[i+1] = c.G
		buf[i+2] = c.B
	}
	return buf
}

// Image is an in-memory image whose Pix layout matches the controller's
// memory-write stream: rows top to bottom, 3 bytes per pixel.
type Image struct {
	Pix    []byte          // Pixel data, R G B per pixel
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage returns a new black Image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 3*w*h),
		Stride: 3 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *Image) At(x, y int) color.Color {
	return p.RGBAt(x, y)
}

// RGBAt returns the RGB color of the pixel at (x, y).
func (p *Image) RGBAt(x, y int) RGB {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return RGB{}
	}
	i := p.PixOffset(x, y)
	return RGB{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2]}
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB(x, y, Model.Convert(c).(RGB))
}

// SetRGB sets the RGB color of the pixel at (x, y) without conversion.
func (p *Image) SetRGB(x, y int, c RGB) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = c.R
	p.Pix[i+1] = c.G
	p.Pix[i+2] = c.B
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// Scale enlarges a w×h pixel buffer by the integer factor s, turning each
// pixel into an s×s block. The row-major pixel order is kept. For s <= 1
// pix is returned as is.
func Scale(pix []byte, w, h, s int) []byte {
	if s <= 1 {
		return pix
	}
	sw := w * s
	out := make([]byte, 3*sw*h*s)
	dst := 0
	for y := 0; y < h; y++ {
		row := out[dst : dst+3*sw]
		ri := 0
		for x := 0; x < w; x++ {
			src := 3 * (y*w + x)
			for k := 0; k < s; k++ {
				copy(row[ri:ri+3], pix[src:src+3])
				ri += 3
			}
		}
		dst += len(row)
		for k := 1; k < s; k++ {
			copy(out[dst:dst+len(row)], row)
			dst += len(row)
		}
	}
	return out
}
