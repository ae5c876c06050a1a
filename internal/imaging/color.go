package imaging

import (
	"fmt"
	"image"
	"math"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSVColor is the value/saturation view the ink threshold works in.
type HSVColor struct {
	H float64 `json:"h"` // Hue: 0-360 degrees
	S float64 `json:"s"` // Saturation: 0-1
	V float64 `json:"v"` // Value: 0-1
}

// ColorResult describes one pixel and how the thresholder classifies it.
type ColorResult struct {
	Hex string   `json:"hex"` // "#RRGGBB"
	RGB RGBColor `json:"rgb"`
	HSV HSVColor `json:"hsv"`

	// Ink is true when the pixel would become caption ink.
	Ink bool `json:"ink"`
}

// SampleColor extracts the color at (x, y) and reports whether it counts as
// caption ink. Useful when tuning images that threshold badly.
//
// Coordinates are 0-based with origin at the top-left of img.Bounds().
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
	h, s, v := HSV(r8, g8, b8)

	return &ColorResult{
		Hex: fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB: RGBColor{R: r8, G: g8, B: b8},
		HSV: HSVColor{
			H: math.Round(h*10) / 10,
			S: math.Round(s*1000) / 1000,
			V: math.Round(v*1000) / 1000,
		},
		Ink: IsInk(r8, g8, b8),
	}, nil
}
