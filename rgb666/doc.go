// Package rgb666 provides the color and pixel buffer types used to talk
// to an ILI9488 controller in 18-bit SPI mode.
//
// In this mode the controller expects 3 bytes per pixel, one per channel,
// and only the upper 6 bits of each byte are significant. Pixel streams
// are row-major, top to bottom, left to right within a row.
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0            1
//	Color:  red          white
//	Bytes:  FF 00 00     FF FF FF
//
// This package provides:
//
// - RGB: a color record with the usual named colors
// - Model: a color model converting standard Go colors to RGB
// - Image: a draw.Image whose Pix can be streamed to the panel verbatim
// - Scale: integer up-scaling of pixel buffers
// - Status: the station status to color table of the status screen
//
// Example usage:
//
//	img := rgb666.NewImage(image.Rect(0, 0, 16, 16))
//	img.SetRGB(3, 4, rgb666.Red)
//	c := img.RGBAt(3, 4) // rgb666.Red
package rgb666
