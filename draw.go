package ili9488

import (
	"errors"
	"image"
	"image/draw"

	"github.com/flavioheleno/ili9488/rgb666"
	"github.com/golang/glog"
)

// clip returns the part of the w×h rectangle at (x, y) that lies on the
// panel. A non-positive size yields an empty rectangle.
func (d *Dev) clip(x, y, w, h int) image.Rectangle {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(x, y, x+w, y+h).Intersect(d.Bounds())
}

// writeRows sets the window to r and sends row once per row of r.
func (d *Dev) writeRows(r image.Rectangle, row []byte) error {
	if err := d.SetWindow(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1); err != nil {
		return err
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := d.WriteData(row...); err != nil {
			return err
		}
	}
	return nil
}

// FillScreen fills the whole display with c.
func (d *Dev) FillScreen(c rgb666.RGB) error {
	return d.FillRect(0, 0, d.width, d.height, c)
}

// FillRect fills the w×h rectangle at (x, y) with c. The rectangle is
// clipped to the display; nothing is sent if no part of it is visible.
func (d *Dev) FillRect(x, y, w, h int, c rgb666.RGB) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	r := d.clip(x, y, w, h)
	if r.Empty() {
		return nil
	}
	return d.writeRows(r, rgb666.Fill(c, r.Dx()))
}

// HLine draws a horizontal line of w pixels starting at (x, y).
func (d *Dev) HLine(x, y, w int, c rgb666.RGB) error {
	return d.line1(d.clip(x, y, w, 1), c)
}

// VLine draws a vertical line of h pixels starting at (x, y).
func (d *Dev) VLine(x, y, h int, c rgb666.RGB) error {
	return d.line1(d.clip(x, y, 1, h), c)
}

// line1 fills a one pixel thick rectangle with a single data write.
func (d *Dev) line1(r image.Rectangle, c rgb666.RGB) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	if r.Empty() {
		return nil
	}
	if err := d.SetWindow(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1); err != nil {
		return err
	}
	return d.WriteData(rgb666.Fill(c, r.Dx()*r.Dy())...)
}

// Rect draws the outline of the w×h rectangle at (x, y).
func (d *Dev) Rect(x, y, w, h int, c rgb666.RGB) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if err := d.HLine(x, y, w, c); err != nil {
		return err
	}
	if err := d.HLine(x, y+h-1, w, c); err != nil {
		return err
	}
	if err := d.VLine(x, y, h, c); err != nil {
		return err
	}
	return d.VLine(x+w-1, y, h, c)
}

// Pixel sets the pixel at (x, y). Pixels off the display are ignored.
func (d *Dev) Pixel(x, y int, c rgb666.RGB) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	if !(image.Point{X: x, Y: y}.In(d.Bounds())) {
		glog.V(3).Infof("ili9488: pixel (%d, %d) off display", x, y)
		return nil
	}
	if err := d.SetWindow(x, y, x, y); err != nil {
		return err
	}
	b := c.Bytes()
	return d.WriteData(b[:]...)
}

// Line draws a line from (x0, y0) to (x1, y1), both ends included, one
// pixel at a time.
func (d *Dev) Line(x0, y0, x1, y1 int, c rgb666.RGB) error {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		if e := d.Pixel(x0, y0, c); e != nil {
			return e
		}
		if x0 == x1 && y0 == y1 {
			return nil
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Image writes a w×h block of pixels at (x, y). data holds 3 bytes per
// pixel, row-major, and must be exactly 3*w*h bytes long.
func (d *Dev) Image(x, y, w, h int, data []byte) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(data) != 3*w*h {
		return errors.New("ili9488: invalid buffer size")
	}
	if err := d.SetWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	return d.WriteData(data...)
}

// Write sends a whole frame of raw pixels, 3 bytes per pixel in row-major
// order for the current rotation. The data must be exactly
// 3 * Width() * Height() bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != 3*d.width*d.height {
		return 0, errors.New("ili9488: invalid buffer size")
	}
	if err := d.Image(0, 0, d.width, d.height, pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws src onto the display. It implements display.Drawer.
//
// dst is clipped to the display; the pixels of src starting at sp are
// converted to RGB and streamed into the clipped rectangle.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	clipped := dst.Intersect(d.Bounds())
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))

	w, h := clipped.Dx(), clipped.Dy()

	// Fast path: rows of src are already laid out as the panel wants them.
	if img, ok := src.(*rgb666.Image); ok && img.Stride == 3*w && (image.Rectangle{Min: sp, Max: sp.Add(clipped.Size())}).In(img.Rect) {
		off := img.PixOffset(sp.X, sp.Y)
		return d.Image(clipped.Min.X, clipped.Min.Y, w, h, img.Pix[off:off+3*w*h])
	}

	img := rgb666.NewImage(clipped)
	draw.Draw(img, clipped, src, sp, draw.Src)
	return d.Image(clipped.Min.X, clipped.Min.Y, w, h, img.Pix)
}
