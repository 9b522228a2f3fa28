// Package xpt2046 reads the XPT2046 resistive touch controller found on
// most ILI9488 modules via SPI.
//
// Raw 12-bit readings are debounced and mapped to display coordinates
// using a linear calibration per axis.
package xpt2046

import (
	"fmt"
	"image"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers/touch"
)

// Controller commands: 12-bit differential conversion of one axis.
const (
	cmdReadX = 0x90
	cmdReadY = 0xD0
)

const (
	// confidence is the number of consecutive samples GetTouch averages.
	confidence = 5
	// maxVariance bounds the spread of the averaged samples.
	maxVariance = 50
)

// Opts is the configuration for the touch controller.
//
// Zero values select the defaults noted on each field.
type Opts struct {
	// Display size in the unrotated orientation (default: 480x320).
	Width, Height int
	// Rotation in quarter turns, 0 to 3. Other values apply no rotation.
	Rotation int

	// Raw readings at the panel edges (default: x 120..1968, y 120..1800).
	// Readings outside these ranges are treated as no touch.
	XMin, XMax int
	YMin, YMax int

	// Optional pen interrupt pin, low while the panel is pressed.
	IRQ gpio.PinIn
	// Optional chip select pin. Leave nil when the SPI port drives CS.
	CS gpio.PinOut

	// SPI clock (default: 2MHz)
	Frequency physic.Frequency
}

// Dev is a handle to the XPT2046. It must not be used concurrently.
type Dev struct {
	c   conn.Conn
	irq gpio.PinIn
	cs  gpio.PinOut

	width, height, rotation int

	xMin, xMax, yMin, yMax int
	xMul, xAdd, yMul, yAdd float64

	timeout  time.Duration
	interval time.Duration
	sleep    func(time.Duration)
}

// NewSPI returns a Dev reading the controller on p.
//
// opts can be nil to use defaults.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	f := opts.Frequency
	if f == 0 {
		f = 2 * physic.MegaHertz
	}
	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("xpt2046: %w", err)
	}
	return newDev(c, opts)
}

func newDev(c conn.Conn, opts *Opts) (*Dev, error) {
	d := &Dev{
		c:        c,
		irq:      opts.IRQ,
		cs:       opts.CS,
		width:    orDefault(opts.Width, 480),
		height:   orDefault(opts.Height, 320),
		rotation: opts.Rotation,
		xMin:     orDefault(opts.XMin, 120),
		xMax:     orDefault(opts.XMax, 1968),
		yMin:     orDefault(opts.YMin, 120),
		yMax:     orDefault(opts.YMax, 1800),
		timeout:  2 * time.Second,
		interval: 50 * time.Millisecond,
		sleep:    time.Sleep,
	}
	if d.xMin >= d.xMax {
		return nil, fmt.Errorf("xpt2046: x calibration %d..%d is empty", d.xMin, d.xMax)
	}
	if d.yMin >= d.yMax {
		return nil, fmt.Errorf("xpt2046: y calibration %d..%d is empty", d.yMin, d.yMax)
	}
	d.xMul = float64(d.width) / float64(d.xMax-d.xMin)
	d.xAdd = -float64(d.xMin) * d.xMul
	d.yMul = float64(d.height) / float64(d.yMax-d.yMin)
	d.yAdd = -float64(d.yMin) * d.yMul
	if d.cs != nil {
		if err := d.cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("xpt2046: failed to release CS: %w", err)
		}
	}
	return d, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// read runs a single conversion and returns the 12-bit result.
func (d *Dev) read(cmd byte) (v int, err error) {
	if d.cs != nil {
		if err := d.cs.Out(gpio.Low); err != nil {
			return 0, fmt.Errorf("xpt2046: failed to assert CS: %w", err)
		}
		defer func() {
			if e := d.cs.Out(gpio.High); e != nil && err == nil {
				err = fmt.Errorf("xpt2046: failed to release CS: %w", e)
			}
		}()
	}
	var r [3]byte
	if err := d.c.Tx([]byte{cmd, 0, 0}, r[:]); err != nil {
		return 0, err
	}
	return int(r[1])<<4 | int(r[2])>>4, nil
}

// RawTouch reads both axes. ok is false when either reading falls
// outside the calibration range.
func (d *Dev) RawTouch() (x, y int, ok bool, err error) {
	if x, err = d.read(cmdReadX); err != nil {
		return 0, 0, false, err
	}
	if y, err = d.read(cmdReadY); err != nil {
		return 0, 0, false, err
	}
	ok = x >= d.xMin && x <= d.xMax && y >= d.yMin && y <= d.yMax
	return x, y, ok, nil
}

// Touched reports whether the panel is pressed. Without an IRQ pin a raw
// reading is taken and a valid one counts as a touch.
func (d *Dev) Touched() (bool, error) {
	if d.irq != nil {
		return d.irq.Read() == gpio.Low, nil
	}
	_, _, ok, err := d.RawTouch()
	return ok, err
}

// GetTouch returns a debounced touch position in display coordinates.
//
// Samples are taken every 50ms until the last five valid ones agree,
// for at most 2 seconds. An invalid sample discards the ones collected
// so far. ok is false when the panel is not pressed or no stable reading
// was found in time.
func (d *Dev) GetTouch() (p image.Point, ok bool, err error) {
	touched, err := d.Touched()
	if err != nil || !touched {
		return image.Point{}, false, err
	}

	var buf [confidence]image.Point
	n, next := 0, 0
	for left := d.timeout; left > 0; left -= d.interval {
		if n == confidence {
			if mean, stable := settle(buf[:]); stable {
				return d.Normalize(mean.X, mean.Y), true, nil
			}
		}
		x, y, valid, err := d.RawTouch()
		if err != nil {
			return image.Point{}, false, err
		}
		if !valid {
			n = 0
		} else {
			buf[next] = image.Pt(x, y)
			next = (next + 1) % confidence
			n = min(n+1, confidence)
		}
		d.sleep(d.interval)
	}
	glog.V(2).Infof("xpt2046: no stable reading within %s", d.timeout)
	return image.Point{}, false, nil
}

// settle returns the integer mean of samples and whether their variance
// is small enough to trust it.
func settle(samples []image.Point) (image.Point, bool) {
	var sum image.Point
	for _, s := range samples {
		sum = sum.Add(s)
	}
	mean := sum.Div(len(samples))
	dev := 0
	for _, s := range samples {
		dx, dy := s.X-mean.X, s.Y-mean.Y
		dev += dx*dx + dy*dy
	}
	return mean, float64(dev)/float64(len(samples)) <= maxVariance
}

// Normalize maps a raw reading to display coordinates, applying the
// rotation.
func (d *Dev) Normalize(x, y int) image.Point {
	nx := int(d.xMul*float64(x) + d.xAdd)
	ny := int(d.yMul*float64(y) + d.yAdd)
	switch d.rotation {
	case 1:
		return image.Pt(ny, d.width-nx)
	case 2:
		return image.Pt(d.width-nx, d.height-ny)
	case 3:
		return image.Pt(d.height-ny, nx)
	default:
		return image.Pt(nx, ny)
	}
}

// ReadTouchPoint implements touch.Pointer. Z is 1 while a stable touch is
// read and 0 otherwise; errors are logged and reported as no touch.
func (d *Dev) ReadTouchPoint() touch.Point {
	p, ok, err := d.GetTouch()
	if err != nil {
		glog.Errorf("xpt2046: %v", err)
		return touch.Point{}
	}
	if !ok {
		return touch.Point{}
	}
	return touch.Point{X: p.X, Y: p.Y, Z: 1}
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("xpt2046.Dev{%s}", d.c)
}

// Halt implements conn.Resource. The controller powers down between
// conversions on its own.
func (d *Dev) Halt() error {
	return nil
}

var (
	_ touch.Pointer = (*Dev)(nil)
	_ conn.Resource = (*Dev)(nil)
)
