package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// InkMinValue is the exclusive lower bound on HSV value for ink.
	InkMinValue = 0.9

	// InkMaxSaturation is the exclusive upper bound on HSV saturation for ink.
	InkMaxSaturation = 0.1
)

// HSV converts 8-bit RGB to hue (0-360), saturation (0-1) and value (0-1)
// using the max/min/delta formulation. Saturation is 0 when max is 0.
func HSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	return c.Hsv()
}

// IsInk reports whether a pixel is caption ink: bright and nearly colourless.
func IsInk(r, g, b uint8) bool {
	_, s, v := HSV(r, g, b)
	return v > InkMinValue && s < InkMaxSaturation
}

// Threshold produces a binary buffer of the same size as src where ink
// pixels are pure white and everything else pure black.
//
// Rows are processed in parallel; each row writes a disjoint slice of the
// output so the result is identical to a sequential pass. Thresholding an
// already-binary buffer returns an equal buffer.
func Threshold(src *PixelBuffer) *PixelBuffer {
	dst := NewPixelBuffer(src.width, src.height)

	parallel.Line(src.height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < src.width; x++ {
				r, g, b := src.RGB(x, y)
				if IsInk(r, g, b) {
					dst.SetRGB(x, y, 255, 255, 255)
				}
			}
		}
	})

	return dst
}
