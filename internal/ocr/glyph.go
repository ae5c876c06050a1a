package ocr

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/caption-ocr-mcp/internal/config"
)

// inkCutoff is the alpha/gray level at or above which a template pixel is ink.
const inkCutoff = 128

// Glyph is the binary reference bitmap of one character.
// Glyphs are read-only once built and may be shared between goroutines.
type Glyph struct {
	Char   rune
	width  int
	height int
	ink    []bool
	bottom int
}

// newGlyph wraps an ink mask and records its lowest ink row.
func newGlyph(ch rune, width, height int, ink []bool) *Glyph {
	g := &Glyph{Char: ch, width: width, height: height, ink: ink, bottom: -1}
	for i := len(ink) - 1; i >= 0; i-- {
		if ink[i] {
			g.bottom = i / width
			break
		}
	}
	return g
}

// Width returns the canvas width.
func (g *Glyph) Width() int { return g.width }

// Height returns the canvas height.
func (g *Glyph) Height() int { return g.height }

// Ink reports whether (x, y) is an ink pixel.
func (g *Glyph) Ink(x, y int) bool { return g.ink[y*g.width+x] }

// InkCount returns the number of ink pixels.
func (g *Glyph) InkCount() int {
	n := 0
	for _, v := range g.ink {
		if v {
			n++
		}
	}
	return n
}

// RefHeight is the height of the padded box a region gets when this glyph is
// pasted with its canvas origin one pixel above and left of the box. A box of
// that height maps onto the template one to one. Blank glyphs use the canvas
// height.
func (g *Glyph) RefHeight() float64 {
	if g.bottom < 0 {
		return float64(g.height)
	}
	return float64(g.bottom + 1)
}

// firstInkX returns the leftmost ink column, or the width for a blank glyph.
func (g *Glyph) firstInkX() int {
	fwx := g.width
	for y := 0; y < g.height; y++ {
		for x := 0; x < fwx; x++ {
			if g.Ink(x, y) {
				fwx = x
				break
			}
		}
	}
	return fwx
}

// firstInkY returns the topmost ink row, or the height for a blank glyph.
func (g *Glyph) firstInkY() int {
	for i, v := range g.ink {
		if v {
			return i / g.width
		}
	}
	return g.height
}

// Image renders the glyph as white ink on black.
func (g *Glyph) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.width, g.height))
	for i, v := range g.ink {
		if v {
			img.Pix[i] = 0xff
		}
	}
	return img
}

// glyphFromImage binarizes img by luminance.
func glyphFromImage(ch rune, img image.Image) *Glyph {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	ink := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			ink[y*w+x] = gray.Y >= inkCutoff
		}
	}
	return newGlyph(ch, w, h, ink)
}

// Library is the ordered set of glyph templates for one alphabet.
type Library struct {
	glyphs []*Glyph
}

// Len returns the number of glyphs.
func (l *Library) Len() int { return len(l.glyphs) }

// Glyphs returns the templates in alphabet order. The slice must not be modified.
func (l *Library) Glyphs() []*Glyph { return l.glyphs }

// Glyph looks up the template for ch.
func (l *Library) Glyph(ch rune) (*Glyph, bool) {
	for _, g := range l.glyphs {
		if g.Char == ch {
			return g, true
		}
	}
	return nil, false
}

// Alphabet returns the characters in template order.
func (l *Library) Alphabet() string {
	rs := make([]rune, len(l.glyphs))
	for i, g := range l.glyphs {
		rs[i] = g.Char
	}
	return string(rs)
}

// RenderOptions controls font rasterisation.
type RenderOptions struct {
	CanvasWidth  int
	CanvasHeight int
	FontSize     float64

	// OffsetY is where the font's ascent line sits on the canvas.
	OffsetY int
}

// RenderLibrary rasterises every character of alphabet with ttf.
//
// Each character is drawn once to find its leftmost ink column and topmost
// ink row, then drawn again shifted so its ink starts at column 1 and row 1
// regardless of side bearing. Region boxes carry one pixel of padding, so a
// template aligned this way lines up with the box of its own ink.
func RenderLibrary(ttf *truetype.Font, alphabet string, opts RenderOptions) *Library {
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	lib := &Library{}
	for _, ch := range alphabet {
		first := renderGlyph(face, ch, 0, 0, opts)
		if first.bottom < 0 {
			lib.glyphs = append(lib.glyphs, first)
			continue
		}
		dx, dy := 1-first.firstInkX(), 1-first.firstInkY()
		lib.glyphs = append(lib.glyphs, renderGlyph(face, ch, dx, dy, opts))
	}
	return lib
}

func renderGlyph(face font.Face, ch rune, dx, dy int, opts RenderOptions) *Glyph {
	img := image.NewAlpha(image.Rect(0, 0, opts.CanvasWidth, opts.CanvasHeight))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(dx),
			Y: fixed.I(opts.OffsetY+dy) + face.Metrics().Ascent,
		},
	}
	d.DrawString(string(ch))

	ink := make([]bool, len(img.Pix))
	for i, a := range img.Pix {
		ink[i] = a >= inkCutoff
	}
	return newGlyph(ch, opts.CanvasWidth, opts.CanvasHeight, ink)
}

// ParseFont parses TrueType data. A parse failure is a resource error.
func ParseFont(name string, data []byte) (*truetype.Font, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, NewResourceError(name, err)
	}
	return ttf, nil
}

// NewLibraryFromBitmaps builds a library from pre-rendered images, one per
// character of alphabet. Bitmaps are used as given, without re-alignment.
func NewLibraryFromBitmaps(alphabet string, imgs []image.Image) (*Library, error) {
	chars := []rune(alphabet)
	if len(chars) != len(imgs) {
		return nil, fmt.Errorf("alphabet has %d characters but %d bitmaps were given", len(chars), len(imgs))
	}
	lib := &Library{glyphs: make([]*Glyph, len(chars))}
	for i, ch := range chars {
		lib.glyphs[i] = glyphFromImage(ch, imgs[i])
	}
	return lib, nil
}

// LoadLibraryDir reads <char>.png for every character of alphabet.
func LoadLibraryDir(dir, alphabet string) (*Library, error) {
	var imgs []image.Image
	for _, ch := range alphabet {
		path := filepath.Join(dir, string(ch)+".png")
		img, err := imaging.Open(path)
		if err != nil {
			return nil, NewResourceError(path, err)
		}
		imgs = append(imgs, img)
	}
	return NewLibraryFromBitmaps(alphabet, imgs)
}

// LoadLibrary builds the glyph library described by cfg: a bitmap directory
// when one is set, else the configured font file, else the embedded Go Bold
// face.
func LoadLibrary(cfg config.GlyphConfig) (*Library, error) {
	if cfg.Directory != "" {
		return LoadLibraryDir(cfg.Directory, cfg.Alphabet)
	}

	name, data := "gobold", gobold.TTF
	if cfg.FontPath != "" {
		b, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			return nil, NewResourceError(cfg.FontPath, err)
		}
		name, data = cfg.FontPath, b
	}

	ttf, err := ParseFont(name, data)
	if err != nil {
		return nil, err
	}
	return RenderLibrary(ttf, cfg.Alphabet, RenderOptions{
		CanvasWidth:  cfg.CanvasWidth,
		CanvasHeight: cfg.CanvasHeight,
		FontSize:     float64(cfg.FontSize),
		OffsetY:      cfg.OffsetY,
	}), nil
}
