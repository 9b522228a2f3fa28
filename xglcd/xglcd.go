// Package xglcd loads bitmap fonts in the X-GLCD "C" text format, as
// exported by the MikroElektronika GLCD Font Creator, and renders their
// glyphs into RGB666 pixel buffers.
//
// Each glyph record is a line of comma separated hex bytes: the glyph
// width, then for every column ceil(height/8) bytes covering 8 rows
// each, least significant bit on top.
package xglcd

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/flavioheleno/ili9488/rgb666"
	"github.com/golang/glog"
)

// Opts describes the geometry of a font file.
//
// Zero values select the defaults noted on each field, so StartLetter
// cannot be 0: fonts exported from code 0 must be loaded from their first
// printable record on, with the leading records removed.
type Opts struct {
	Width       int  // Maximum glyph width in pixels
	Height      int  // Glyph height in pixels (raised to 8 if smaller)
	StartLetter rune // First character code (default: 32)
	LetterCount int  // Number of glyphs (default: 96)
}

// Font is a loaded X-GLCD font. It is immutable once loaded.
type Font struct {
	letters        []byte
	width          int
	height         int
	start          rune
	count          int
	bytesPerLetter int
	bytesPerCol    int
}

// LoadFile loads a font from the file at path.
func LoadFile(path string, opts *Opts) (*Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xglcd: %w", err)
	}
	defer f.Close()
	return Load(f, opts)
}

// Load parses a font from r.
//
// Lines that are empty or do not start with "0x" are skipped; "//"
// comments and a trailing comma are stripped. Every remaining line is one
// glyph record and must hold exactly the number of bytes a glyph of the
// configured geometry occupies.
func Load(r io.Reader, opts *Opts) (*Font, error) {
	if opts == nil {
		return nil, fmt.Errorf("xglcd: font geometry is required")
	}
	if opts.Width <= 0 || opts.Width > 255 {
		return nil, fmt.Errorf("xglcd: width must be between 1 and 255")
	}
	if opts.Height <= 0 {
		return nil, fmt.Errorf("xglcd: height must be positive")
	}
	f := &Font{
		width:  opts.Width,
		height: max(opts.Height, 8),
		start:  opts.StartLetter,
		count:  opts.LetterCount,
	}
	if f.start == 0 {
		f.start = 32
	}
	if f.count <= 0 {
		f.count = 96
	}
	f.bytesPerCol = (f.height-1)/8 + 1
	f.bytesPerLetter = f.bytesPerCol*f.width + 1
	f.letters = make([]byte, f.bytesPerLetter*f.count)

	s := bufio.NewScanner(r)
	lineNo := 0
	n := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(line, "0x") {
			continue
		}
		if n == f.count {
			glog.Warningf("xglcd: ignoring glyph records past %d (line %d)", f.count, lineNo)
			break
		}
		if i := strings.Index(line, "//"); i != -1 {
			line = strings.TrimSpace(line[:i])
		}
		line = strings.TrimSuffix(line, ",")
		fields := strings.Split(line, ",")
		if len(fields) != f.bytesPerLetter {
			return nil, fmt.Errorf("xglcd: line %d: got %d bytes, want %d", lineNo, len(fields), f.bytesPerLetter)
		}
		rec := f.letters[n*f.bytesPerLetter : (n+1)*f.bytesPerLetter]
		for i, field := range fields {
			v, err := strconv.ParseUint(strings.TrimSpace(field), 0, 8)
			if err != nil {
				return nil, fmt.Errorf("xglcd: line %d: %w", lineNo, err)
			}
			rec[i] = byte(v)
		}
		n++
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("xglcd: %w", err)
	}
	if n < f.count {
		glog.Warningf("xglcd: font has %d of %d glyphs", n, f.count)
	}
	return f, nil
}

// Height returns the glyph height in pixels.
func (f *Font) Height() int {
	return f.height
}

// Width returns the maximum glyph width in pixels.
func (f *Font) Width() int {
	return f.width
}

// letter returns the glyph record of r, or nil if the font has none.
func (f *Font) letter(r rune) []byte {
	i := int(r) - int(f.start)
	if i < 0 || i >= f.count {
		return nil
	}
	return f.letters[i*f.bytesPerLetter : (i+1)*f.bytesPerLetter]
}

// GetLetter renders r in fg over bg and returns the pixels (3 bytes per
// pixel, row-major) with the glyph dimensions. A character the font does
// not contain yields an empty buffer and zero dimensions.
func (f *Font) GetLetter(r rune, fg, bg rgb666.RGB) (pix []byte, width, height int) {
	rec := f.letter(r)
	if rec == nil {
		glog.Warningf("xglcd: font does not contain character %q", r)
		return nil, 0, 0
	}
	width = int(rec[0])
	height = f.height
	pix = rgb666.Fill(bg, width*height)

	col, segment := 0, 0
	for _, b := range rec[1:] {
		for b != 0 && col < width {
			bit := bits.TrailingZeros8(b)
			b &^= 1 << bit
			row := segment*8 + bit
			if row >= height {
				continue
			}
			i := 3 * (row*width + col)
			pix[i] = fg.R
			pix[i+1] = fg.G
			pix[i+2] = fg.B
		}
		segment++
		if segment == f.bytesPerCol {
			segment = 0
			col++
		}
	}
	return pix, width, height
}

// MeasureText returns the pixel length of s drawn at the given scale with
// spacing pixels after every character. Characters absent from the font
// are skipped, as they are when drawing.
func (f *Font) MeasureText(s string, scale, spacing int) int {
	if scale < 1 {
		scale = 1
	}
	n := 0
	for _, r := range s {
		rec := f.letter(r)
		if rec == nil || rec[0] == 0 {
			continue
		}
		n += int(rec[0])*scale + spacing
	}
	return n
}

// String returns a short description of the font.
func (f *Font) String() string {
	return fmt.Sprintf("xglcd.Font{%dx%d, %d glyphs from %q}", f.width, f.height, f.count, f.start)
}
