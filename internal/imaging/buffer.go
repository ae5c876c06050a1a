package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/clone"
)

// PixelBuffer is a width×height grid of 8-bit RGB triples addressed from (0,0).
//
// A buffer has a single owner at a time. The pipeline creates two per run:
// the decoded source and the binary threshold buffer derived from it.
type PixelBuffer struct {
	width  int
	height int
	pix    []uint8 // 3 bytes per pixel, row-major
}

// NewPixelBuffer allocates an all-black buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*3),
	}
}

// FromImage copies any image.Image into a PixelBuffer. The image's bounds are
// rebased so that its top-left pixel becomes (0,0). Alpha is dropped.
func FromImage(img image.Image) *PixelBuffer {
	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())

	for y := 0; y < buf.height; y++ {
		row := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		dst := y * buf.width * 3
		for x := 0; x < buf.width; x++ {
			src := row + x*4
			buf.pix[dst] = rgba.Pix[src]
			buf.pix[dst+1] = rgba.Pix[src+1]
			buf.pix[dst+2] = rgba.Pix[src+2]
			dst += 3
		}
	}
	return buf
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int { return b.height }

// RGB returns the components at (x, y). Callers must stay within bounds.
func (b *PixelBuffer) RGB(x, y int) (r, g, bl uint8) {
	i := (y*b.width + x) * 3
	return b.pix[i], b.pix[i+1], b.pix[i+2]
}

// SetRGB writes the components at (x, y). Callers must stay within bounds.
func (b *PixelBuffer) SetRGB(x, y int, r, g, bl uint8) {
	i := (y*b.width + x) * 3
	b.pix[i] = r
	b.pix[i+1] = g
	b.pix[i+2] = bl
}

// Ink reports whether (x, y) is an ink pixel of a binary buffer, i.e. its red
// channel is non-zero.
func (b *PixelBuffer) Ink(x, y int) bool {
	return b.pix[(y*b.width+x)*3] != 0
}

// InkCount returns the number of ink pixels.
func (b *PixelBuffer) InkCount() int {
	n := 0
	for i := 0; i < len(b.pix); i += 3 {
		if b.pix[i] != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether both buffers have identical size and content.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	return bytes.Equal(b.pix, o.pix)
}

// Image converts the buffer to an opaque *image.RGBA.
func (b *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for i, j := 0, 0; i < len(b.pix); i, j = i+3, j+4 {
		img.Pix[j] = b.pix[i]
		img.Pix[j+1] = b.pix[i+1]
		img.Pix[j+2] = b.pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// EncodedImage is a PNG payload returned to MCP clients.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG payload.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
