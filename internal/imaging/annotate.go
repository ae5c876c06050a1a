package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box is an inclusive rectangle with an optional label drawn above it.
type Box struct {
	X1    int    `json:"x1"`
	Y1    int    `json:"y1"`
	X2    int    `json:"x2"`
	Y2    int    `json:"y2"`
	Label string `json:"label,omitempty"`
}

// AnnotateResult contains the annotated image.
type AnnotateResult struct {
	EncodedImage
	Boxes int `json:"boxes"`
}

// Annotate draws each box outline over a copy of img and writes its label
// just above the top-left corner. boxColorHex falls back to opaque red when
// it cannot be parsed.
func Annotate(img image.Image, boxes []Box, boxColorHex string) (*AnnotateResult, error) {
	out := DrawBoxes(img, boxes, boxColorHex)

	enc, err := EncodePNG(out)
	if err != nil {
		return nil, err
	}
	return &AnnotateResult{EncodedImage: *enc, Boxes: len(boxes)}, nil
}

// DrawBoxes is Annotate without the PNG encoding.
func DrawBoxes(img image.Image, boxes []Box, boxColorHex string) *image.RGBA {
	boxColor, err := parseHexColor(boxColorHex)
	if err != nil {
		boxColor = color.RGBA{255, 0, 0, 255}
	}
	labelColor := color.RGBA{0, 255, 255, 255}

	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	for _, b := range boxes {
		for x := b.X1; x <= b.X2; x++ {
			setClipped(result, x, b.Y1, boxColor)
			setClipped(result, x, b.Y2, boxColor)
		}
		for y := b.Y1; y <= b.Y2; y++ {
			setClipped(result, b.X1, y, boxColor)
			setClipped(result, b.X2, y, boxColor)
		}
		if b.Label != "" {
			drawLabel(result, b.X1, b.Y1-2, b.Label, labelColor)
		}
	}
	return result
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawLabel draws text with its baseline at (x, y) using the 7x13 bitmap face.
// font.Drawer clips to the destination, so labels near the border are safe.
func drawLabel(img *image.RGBA, x, y int, text string, fg color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
