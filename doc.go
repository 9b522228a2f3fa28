// Package ili9488 controls an ILI9488 TFT display via SPI.
//
// The ILI9488 drives 480×320 color panels. This driver runs it in 18-bit
// color mode, where every pixel is sent as 3 bytes (red, green, blue) of
// which the controller keeps the top 6 bits. It implements the
// display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 480×320 pixels, rotatable in steps of 90 degrees
// - 18-bit color (262144 colors)
// - Window addressing: any rectangle can be filled without touching the rest
// - Display inversion and sleep
//
// # Hardware Connection
//
// Connect the display to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCK         → SPI Clock (SCLK)
//	SDI/MOSI    → SPI Data (MOSI)
//	DC/RS       → GPIO (any available pin)
//	CS          → SPI Chip Select, or a GPIO passed as Opts.CS
//	RESET       → Optional: GPIO for hardware reset
//	LED         → 3.3V (backlight)
//
// Most modules also carry an XPT2046 touch controller on the same bus; see
// the xpt2046 package.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"github.com/flavioheleno/ili9488"
//		"github.com/flavioheleno/ili9488/rgb666"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		dcPin := gpioreg.ByName("GPIO24")
//
//		dev, _ := ili9488.NewSPI(spiBus, dcPin, &ili9488.Opts{
//			RST: gpioreg.ByName("GPIO25"),
//		})
//		defer dev.Halt()
//
//		dev.FillScreen(rgb666.Black)
//		dev.FillRect(10, 10, 100, 50, rgb666.Red)
//		dev.Line(0, 0, dev.Width()-1, dev.Height()-1, rgb666.White)
//	}
//
// NewSPI resets the panel, sends the initialization sequence and applies
// Opts.Rotation. Without a reset pin a software reset is issued instead.
//
// # Rotation
//
// Rotate accepts any multiple of 90 degrees, negative values included, and
// swaps Width and Height in portrait orientations:
//
//	dev.Rotate(90)  // 320×480
//	dev.Rotate(-90) // same as 270
//
// Other angles are logged and ignored.
//
// # Drawing
//
// Primitives write straight to the controller's memory, so there is no
// frame buffer on the host side. Shapes are clipped to the display.
//
//	dev.Pixel(x, y, c)
//	dev.HLine(x, y, w, c)
//	dev.Rect(x, y, w, h, c)
//	dev.Image(x, y, w, h, pix) // pix holds 3×w×h bytes
//
// Any image.Image can be drawn with Draw; an *rgb666.Image whose rows match
// the destination is sent without conversion.
//
// # Text
//
// Text needs a Font. Three implementations are available:
//
//	f, _ := xglcd.LoadFile("Unispace12x24.c", &xglcd.Opts{Width: 12, Height: 24})
//	f := fontface.NewFace(basicfont.Face7x13)
//	f := fontface.NewTiny(&proggy.TinySZ8pt7b, 10)
//
//	dev.SetFont(f)
//	dev.Text(10, 10, "OPEN", ili9488.TextStyle{
//		Color: rgb666.StatusOpen.Color(),
//		Scale: 2,
//	})
//
// Characters missing from the font are skipped.
//
// # Logging
//
// Recoverable problems such as an unsupported rotation or a missing glyph
// are reported through glog warnings. Bus-level traces are logged at
// verbosity 2 and above.
package ili9488
