package ocr

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/caption-ocr-mcp/internal/config"
)

// wordList is a WordSet over a fixed list of words.
type wordList map[string]bool

func newWordList(words ...string) wordList {
	w := wordList{}
	for _, s := range words {
		w[s] = true
	}
	return w
}

func (w wordList) Contains(s string) bool { return w[s] }

// blockBitmap draws white rectangles (inclusive corners) on a 100x110 canvas.
func blockBitmap(rects ...[4]int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 100, 110))
	for y := 0; y < 110; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.Black)
		}
	}
	for _, r := range rects {
		for y := r[1]; y <= r[3]; y++ {
			for x := r[0]; x <= r[2]; x++ {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

// blockLibrary holds squared-off A, H and I glyphs. Every glyph has ink from
// column 1 to 81 and row 1 to 99, so a pasted glyph gets a box of height 100
// and maps onto its template one to one.
func blockLibrary(t *testing.T) *Library {
	t.Helper()
	leftLeg := [4]int{1, 1, 10, 99}
	rightLeg := [4]int{72, 1, 81, 99}
	topBar := [4]int{1, 1, 81, 10}
	midBar := [4]int{1, 48, 81, 57}

	lib, err := NewLibraryFromBitmaps("AHI", []image.Image{
		blockBitmap(leftLeg, rightLeg, topBar, midBar),
		blockBitmap(leftLeg, rightLeg, midBar),
		blockBitmap([4]int{36, 1, 45, 99}, topBar, [4]int{1, 90, 81, 99}),
	})
	if err != nil {
		t.Fatalf("NewLibraryFromBitmaps failed: %v", err)
	}
	return lib
}

// blackImage returns an opaque black canvas.
func blackImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// paste draws the ink of g in white with its canvas origin at (ox, oy).
func paste(dst *image.RGBA, g *Glyph, ox, oy int) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Ink(x, y) {
				dst.Set(ox+x, oy+y, color.White)
			}
		}
	}
}

func TestNewLibraryFromBitmaps(t *testing.T) {
	lib := blockLibrary(t)

	if lib.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", lib.Len())
	}
	if lib.Alphabet() != "AHI" {
		t.Errorf("Alphabet: got %q, want %q", lib.Alphabet(), "AHI")
	}

	h, ok := lib.Glyph('H')
	if !ok {
		t.Fatal("Glyph('H') not found")
	}
	// two legs plus the bar between them
	if want := 2*10*99 + 10*61; h.InkCount() != want {
		t.Errorf("H ink: got %d, want %d", h.InkCount(), want)
	}
	if h.firstInkX() != 1 {
		t.Errorf("bitmaps are not re-aligned: firstInkX = %d", h.firstInkX())
	}
	if h.RefHeight() != 100 {
		t.Errorf("RefHeight: got %v, want 100", h.RefHeight())
	}
	if _, ok := lib.Glyph('Z'); ok {
		t.Error("Glyph('Z') should not exist")
	}
}

func TestNewLibraryFromBitmaps_CountMismatch(t *testing.T) {
	if _, err := NewLibraryFromBitmaps("AB", []image.Image{blockBitmap()}); err == nil {
		t.Error("expected error for mismatched bitmap count")
	}
}

func TestGlyph_Image(t *testing.T) {
	lib := blockLibrary(t)
	g, _ := lib.Glyph('I')
	img := g.Image()

	if img.Bounds() != image.Rect(0, 0, 100, 110) {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	if img.GrayAt(40, 50).Y != 0xff {
		t.Error("stem pixel should be white")
	}
	if img.GrayAt(20, 50).Y != 0 {
		t.Error("background pixel should be black")
	}
}

func TestLoadLibrary_EmbeddedFont(t *testing.T) {
	cfg := config.Default().Glyphs

	lib, err := LoadLibrary(cfg)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	if lib.Alphabet() != config.DefaultAlphabet {
		t.Errorf("Alphabet: got %q, want %q", lib.Alphabet(), config.DefaultAlphabet)
	}
	for _, g := range lib.Glyphs() {
		if g.Width() != cfg.CanvasWidth || g.Height() != cfg.CanvasHeight {
			t.Errorf("%c: canvas %dx%d", g.Char, g.Width(), g.Height())
		}
		if g.InkCount() == 0 {
			t.Errorf("%c: blank glyph", g.Char)
			continue
		}
		if fwx, fwy := g.firstInkX(), g.firstInkY(); fwx != 1 || fwy != 1 {
			t.Errorf("%c: ink starts at (%d, %d), want (1, 1)", g.Char, fwx, fwy)
		}
		if g.RefHeight() <= 1 || g.RefHeight() > float64(cfg.CanvasHeight) {
			t.Errorf("%c: RefHeight %v out of range", g.Char, g.RefHeight())
		}
	}
}

func TestLoadLibrary_MissingFont(t *testing.T) {
	cfg := config.Default().Glyphs
	cfg.FontPath = filepath.Join(t.TempDir(), "missing.ttf")

	_, err := LoadLibrary(cfg)
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Fatalf("expected resource error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause should be preserved, got %v", err)
	}
}

func TestLoadLibrary_InvalidFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default().Glyphs
	cfg.FontPath = path
	if _, err := LoadLibrary(cfg); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("expected resource error, got %v", err)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func TestLoadLibraryDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "A.png"), blockBitmap([4]int{1, 1, 10, 99}))
	writePNG(t, filepath.Join(dir, "1.png"), blockBitmap([4]int{40, 1, 49, 99}))

	cfg := config.Default().Glyphs
	cfg.Directory = dir
	cfg.Alphabet = "A1"

	lib, err := LoadLibrary(cfg)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	if lib.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", lib.Len())
	}
	one, _ := lib.Glyph('1')
	if one.InkCount() != 10*99 {
		t.Errorf("1 ink: got %d, want %d", one.InkCount(), 10*99)
	}
}

func TestLoadLibraryDir_MissingBitmap(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "A.png"), blockBitmap())

	_, err := LoadLibraryDir(dir, "AB")
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("expected resource error, got %v", err)
	}
}
