package ili9488

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/flavioheleno/ili9488/rgb666"
	"github.com/golang/glog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Controller commands.
const (
	cmdSoftReset  = 0x01
	cmdSleepIn    = 0x10
	cmdSleepOut   = 0x11
	cmdInvertOff  = 0x20
	cmdInvertOn   = 0x21
	cmdDisplayOff = 0x28
	cmdDisplayOn  = 0x29
	cmdColumnSet  = 0x2A
	cmdPageSet    = 0x2B
	cmdMemWrite   = 0x2C
	cmdMADCTL     = 0x36
	cmdPixelFmt   = 0x3A

	cmdInterfaceMode = 0xB0
	cmdFrameRate     = 0xB1
	cmdInversion     = 0xB4
	cmdFunction      = 0xB6
	cmdEntryMode     = 0xB7
	cmdPower1        = 0xC0
	cmdPower2        = 0xC1
	cmdVCOM          = 0xC5
	cmdGammaPos      = 0xE0
	cmdGammaNeg      = 0xE1
	cmdAdjust3       = 0xF7
)

// Native panel size in the default landscape orientation.
const (
	nativeWidth  = 480
	nativeHeight = 320
)

// Opts is the configuration for the ILI9488 display.
type Opts struct {
	// Optional hardware reset pin. When nil a software reset is sent.
	RST gpio.PinOut
	// Optional chip select pin. Leave nil when the SPI port drives CS.
	CS gpio.PinOut

	// Rotation in degrees, one of 0, 90, 180 or 270 after normalization.
	Rotation int

	// Font used by Text until another one is set with SetFont.
	Font Font

	// SPI clock (default: 60MHz)
	Frequency physic.Frequency
}

// Dev is the device handle for the ILI9488 display.
//
// A Dev must not be used concurrently, nor interleaved with other devices
// sharing its SPI bus without external locking.
type Dev struct {
	// Communication
	c   conn.Conn   // SPI connection
	dc  gpio.PinOut // Data/Command pin
	rst gpio.PinOut // Reset pin (optional)
	cs  gpio.PinOut // Chip select pin (optional)

	maxTx int // Largest single transfer, 0 if unlimited

	// Geometry
	width, height int
	rotation      int

	font Font

	halted bool
	sleep  func(time.Duration)
}

// NewSPI creates a new ILI9488 device connected via SPI.
//
// The SPI port is configured for Mode0, 8-bit transfers. The panel is
// reset, initialized and rotated before NewSPI returns.
//
// opts can be nil to use defaults.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if dc == nil {
		return nil, errors.New("ili9488: dc pin is required")
	}
	f := opts.Frequency
	if f == 0 {
		f = 60 * physic.MegaHertz
	}
	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ili9488: %w", err)
	}
	d := newDev(c, dc, opts)
	if err := d.Reset(); err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	if err := d.Rotate(opts.Rotation); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(c conn.Conn, dc gpio.PinOut, opts *Opts) *Dev {
	d := &Dev{
		c:      c,
		dc:     dc,
		rst:    opts.RST,
		cs:     opts.CS,
		width:  nativeWidth,
		height: nativeHeight,
		font:   opts.Font,
		sleep:  time.Sleep,
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize()
	}
	return d
}

// Reset pulses the reset line, or issues a software reset when no reset
// pin was provided. It must complete before any other command is sent.
func (d *Dev) Reset() error {
	if d.rst == nil {
		if err := d.WriteCommand(cmdSoftReset); err != nil {
			return err
		}
		d.sleep(150 * time.Millisecond)
		return nil
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("ili9488: failed to pull RST low: %w", err)
	}
	d.sleep(50 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("ili9488: failed to pull RST high: %w", err)
	}
	d.sleep(50 * time.Millisecond)
	return nil
}

// initSequence is the register setup for the panel, command byte first.
var initSequence = [][]byte{
	{cmdGammaPos, 0x00, 0x03, 0x09, 0x08, 0x16, 0x0A, 0x3F, 0x78, 0x4C, 0x09, 0x0A, 0x08, 0x16, 0x1A, 0x0F},
	{cmdGammaNeg, 0x00, 0x16, 0x19, 0x03, 0x0F, 0x05, 0x32, 0x45, 0x46, 0x04, 0x0E, 0x0D, 0x35, 0x37, 0x0F},
	{cmdPower1, 0x17, 0x15},
	{cmdPower2, 0x41},
	{cmdVCOM, 0x00, 0x12, 0x80},
	{cmdPixelFmt, 0x66}, // 18 bits per pixel
	{cmdInterfaceMode, 0x00},
	{cmdFrameRate, 0xA0},
	{cmdInversion, 0x02},
	{cmdFunction, 0x02, 0x02, 0x3B},
	{cmdEntryMode, 0xC6},
	{cmdAdjust3, 0xA9, 0x51, 0x2C, 0x82},
}

// Init sends the controller setup sequence, then leaves sleep mode and
// turns the display on.
func (d *Dev) Init() error {
	for _, reg := range initSequence {
		if err := d.WriteCommand(reg[0]); err != nil {
			return err
		}
		if err := d.WriteData(reg[1:]...); err != nil {
			return err
		}
	}
	if err := d.WriteCommand(cmdSleepOut); err != nil {
		return err
	}
	d.sleep(120 * time.Millisecond)
	if err := d.WriteCommand(cmdDisplayOn); err != nil {
		return err
	}
	d.sleep(25 * time.Millisecond)
	d.halted = false
	return nil
}

// orientations maps a rotation in degrees to its MADCTL value and the
// resulting width and height.
var orientations = map[int]struct {
	madctl        byte
	width, height int
}{
	0:   {0x28, 480, 320},
	90:  {0x48, 320, 480},
	180: {0xE8, 480, 320},
	270: {0x88, 320, 480},
}

// Rotate sets the display rotation in degrees. The value is taken modulo
// 360. Rotations that are not a multiple of 90 are ignored.
func (d *Dev) Rotate(degrees int) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	rot := (degrees%360 + 360) % 360
	o, ok := orientations[rot]
	if !ok {
		glog.Warningf("ili9488: invalid rotation %d, skipping", degrees)
		return nil
	}
	if err := d.WriteCommand(cmdMADCTL); err != nil {
		return err
	}
	if err := d.WriteData(o.madctl); err != nil {
		return err
	}
	d.rotation = rot
	d.width, d.height = o.width, o.height
	glog.V(2).Infof("ili9488: rotation %d, %dx%d", rot, d.width, d.height)
	return nil
}

// Rotation returns the current rotation in degrees.
func (d *Dev) Rotation() int {
	return d.rotation
}

// Width returns the width of the display in the current rotation.
func (d *Dev) Width() int {
	return d.width
}

// Height returns the height of the display in the current rotation.
func (d *Dev) Height() int {
	return d.height
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb666.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// SetWindow defines the inclusive rectangle (x0, y0)-(x1, y1) that the
// following pixel data fills, and starts a memory write.
func (d *Dev) SetWindow(x0, y0, x1, y1 int) error {
	if err := d.WriteCommand(cmdColumnSet); err != nil {
		return err
	}
	if err := d.WriteData(byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.WriteCommand(cmdPageSet); err != nil {
		return err
	}
	if err := d.WriteData(byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return d.WriteCommand(cmdMemWrite)
}

// WriteCommand sends a single command byte.
func (d *Dev) WriteCommand(cmd byte) error {
	return d.transfer(gpio.Low, []byte{cmd})
}

// WriteData sends parameter or pixel bytes.
func (d *Dev) WriteData(data ...byte) error {
	if len(data) == 0 {
		return nil
	}
	return d.transfer(gpio.High, data)
}

// transfer runs one bus transaction with the DC line at level dc. The
// chip select is released even if the transfer fails.
func (d *Dev) transfer(dc gpio.Level, b []byte) (err error) {
	if d.cs != nil {
		if err := d.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("ili9488: failed to assert CS: %w", err)
		}
		defer func() {
			if e := d.cs.Out(gpio.High); e != nil && err == nil {
				err = fmt.Errorf("ili9488: failed to release CS: %w", e)
			}
		}()
	}
	if err := d.dc.Out(dc); err != nil {
		return fmt.Errorf("ili9488: failed to set DC: %w", err)
	}
	for len(b) > 0 {
		n := len(b)
		if d.maxTx > 0 && n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(b[:n], nil); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("ili9488: halted")
	}
	cmd := byte(cmdInvertOff)
	if invert {
		cmd = cmdInvertOn
	}
	return d.WriteCommand(cmd)
}

// Halt turns the display off and puts the controller to sleep.
// After calling Halt, drawing fails until the device is re-initialized.
func (d *Dev) Halt() error {
	d.halted = true
	if err := d.WriteCommand(cmdDisplayOff); err != nil {
		return err
	}
	return d.WriteCommand(cmdSleepIn)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ili9488.Dev{%dx%d, %d°}", d.width, d.height, d.rotation)
}

var _ display.Drawer = (*Dev)(nil)
