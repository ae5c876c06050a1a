package detection

import (
	"math/rand"
	"testing"
)

// inkGrid is an InkMap backed by a bool matrix.
type inkGrid struct {
	w, h int
	ink  []bool
}

func newInkGrid(w, h int) *inkGrid {
	return &inkGrid{w: w, h: h, ink: make([]bool, w*h)}
}

// gridFromRows builds a grid where '#' marks ink.
func gridFromRows(rows ...string) *inkGrid {
	g := newInkGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				g.set(x, y)
			}
		}
	}
	return g
}

func (g *inkGrid) Width() int        { return g.w }
func (g *inkGrid) Height() int       { return g.h }
func (g *inkGrid) Ink(x, y int) bool { return g.ink[y*g.w+x] }
func (g *inkGrid) set(x, y int)      { g.ink[y*g.w+x] = true }
func (g *inkGrid) fill(x1, y1, x2, y2 int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			g.set(x, y)
		}
	}
}

func defaultSegmentOptions() SegmentOptions {
	return SegmentOptions{RowStride: 10, ColStride: 5, Budget: 30000, StripFraction: 0.25}
}

func TestSegment_AllBlack(t *testing.T) {
	seg := Segment(newInkGrid(100, 110), defaultSegmentOptions())

	if len(seg.Regions) != 0 {
		t.Errorf("Expected 0 regions, got %d", len(seg.Regions))
	}
	if len(seg.Rejected) != 0 {
		t.Errorf("Expected 0 rejected regions, got %d", len(seg.Rejected))
	}
}

func TestFlood_Block(t *testing.T) {
	g := newInkGrid(10, 10)
	g.fill(4, 4, 5, 5)

	s := NewSegmenter(g, 30000)
	r, ok := s.Flood(4, 4)
	if !ok {
		t.Fatal("Flood should finalize the block")
	}
	if r.Size() != 4 {
		t.Errorf("Size: got %d, want 4", r.Size())
	}
	want := Bounds{X1: 3, Y1: 3, X2: 6, Y2: 6}
	if r.Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", r.Bounds, want)
	}
	if r.ID != 1 {
		t.Errorf("ID: got %d, want 1", r.ID)
	}
}

func TestFlood_SeedOnClaimedPixel(t *testing.T) {
	g := newInkGrid(10, 10)
	g.fill(4, 4, 5, 5)

	s := NewSegmenter(g, 30000)
	s.Flood(4, 4)
	if _, ok := s.Flood(5, 5); ok {
		t.Error("second flood into a claimed region should yield nothing")
	}
	if got := len(s.Result().Regions); got != 1 {
		t.Errorf("Expected 1 region, got %d", got)
	}
}

func TestFlood_SeedOnBackground(t *testing.T) {
	g := newInkGrid(10, 10)
	s := NewSegmenter(g, 30000)
	if _, ok := s.Flood(5, 5); ok {
		t.Error("flood from background should yield nothing")
	}
}

func TestFlood_MarginExcluded(t *testing.T) {
	g := gridFromRows(
		"......",
		"######",
		"######",
		"......",
	)

	s := NewSegmenter(g, 30000)
	r, ok := s.Flood(2, 1)
	if !ok {
		t.Fatal("Flood should finalize")
	}
	// columns 0 and 5 are margin
	if r.Size() != 8 {
		t.Errorf("Size: got %d, want 8", r.Size())
	}
	for _, p := range r.Pixels {
		if p.X == 0 || p.X == 5 {
			t.Errorf("margin pixel %v was claimed", p)
		}
	}
}

func TestFlood_SinglePixelIsNoise(t *testing.T) {
	g := newInkGrid(10, 10)
	g.set(5, 5)

	s := NewSegmenter(g, 30000)
	if _, ok := s.Flood(5, 5); ok {
		t.Error("single pixel should not be finalized")
	}
	s.Flood(5, 5)

	res := s.Result()
	if res.Noise != 1 {
		t.Errorf("Noise: got %d, want 1", res.Noise)
	}
	if len(res.Regions) != 0 {
		t.Errorf("Expected 0 regions, got %d", len(res.Regions))
	}
	if res.Owner(5, 5) != 0 {
		t.Errorf("noise pixel owner: got %d, want 0", res.Owner(5, 5))
	}
}

func TestFlood_BudgetExceeded(t *testing.T) {
	g := newInkGrid(20, 20)
	g.fill(0, 0, 19, 19)

	s := NewSegmenter(g, 50)
	if _, ok := s.Flood(5, 5); ok {
		t.Fatal("fill over budget should not finalize")
	}

	res := s.Result()
	if len(res.Regions) != 0 {
		t.Errorf("Expected 0 regions, got %d", len(res.Regions))
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("Expected 1 rejected region, got %d", len(res.Rejected))
	}
	if res.Owner(5, 5) != ownerRejected {
		t.Errorf("seed owner: got %d, want %d", res.Owner(5, 5), ownerRejected)
	}

	// A fresh seed in the same blob runs into rejected pixels
	if _, ok := s.Flood(15, 15); ok {
		t.Error("fill touching a rejected region should not finalize")
	}
	if got := len(s.Result().Regions); got != 0 {
		t.Errorf("Expected 0 regions after second fill, got %d", got)
	}
}

func TestFlood_BudgetBoundary(t *testing.T) {
	// A region of n pixels takes 1+4n pops to finalize, whatever its shape.
	tests := []struct {
		name   string
		x2, y2 int
		budget int
		wantOK bool
	}{
		{"two pixels short", 5, 4, 9, false},
		{"two pixels", 5, 4, 10, true},
		{"five pixels short", 8, 4, 21, false},
		{"five pixels", 8, 4, 22, true},
		{"square short", 6, 6, 37, false},
		{"square", 6, 6, 38, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newInkGrid(12, 12)
			g.fill(4, 4, tt.x2, tt.y2)
			s := NewSegmenter(g, tt.budget)
			if _, ok := s.Flood(4, 4); ok != tt.wantOK {
				t.Errorf("budget %d: got ok=%v, want %v", tt.budget, ok, tt.wantOK)
			}
		})
	}
}

func TestSegment_Disjoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := newInkGrid(120, 80)
	for i := 0; i < 60; i++ {
		x := rng.Intn(110)
		y := rng.Intn(70)
		g.fill(x, y, x+rng.Intn(9), y+rng.Intn(9))
	}

	opts := SegmentOptions{RowStride: 2, ColStride: 2, Budget: 300, StripFraction: 0.5}
	seg := Segment(g, opts)

	if len(seg.Regions) == 0 {
		t.Fatal("Expected some regions")
	}

	seen := make(map[Point]int)
	check := func(id int, pixels []Point) {
		for _, p := range pixels {
			if prev, dup := seen[p]; dup {
				t.Fatalf("pixel %v in region %d and %d", p, prev, id)
			}
			seen[p] = id
			if !g.Ink(p.X, p.Y) {
				t.Fatalf("pixel %v is not ink", p)
			}
		}
	}
	for _, r := range seg.Regions {
		if r.Size() < 2 {
			t.Errorf("region %d has %d pixels", r.ID, r.Size())
		}
		check(r.ID, r.Pixels)
		for _, p := range r.Pixels {
			if seg.Owner(p.X, p.Y) != r.ID {
				t.Fatalf("owner map disagrees at %v", p)
			}
		}
	}
	for i, r := range seg.Rejected {
		check(-1-i, r.Pixels)
	}
}

func TestBoundingBox(t *testing.T) {
	pixels := []Point{{X: 5, Y: 7}, {X: 2, Y: 9}, {X: 8, Y: 3}}
	want := Bounds{X1: 1, Y1: 2, X2: 9, Y2: 10}
	if got := BoundingBox(pixels); got != want {
		t.Errorf("BoundingBox: got %+v, want %+v", got, want)
	}
	if want.Width() != 8 || want.Height() != 8 {
		t.Errorf("Width/Height: got %d/%d, want 8/8", want.Width(), want.Height())
	}
}

func TestStripSeeds(t *testing.T) {
	seeds := StripSeeds(20, 40, defaultSegmentOptions())

	// rows 0 and 30, columns 0,5,10,15
	if len(seeds) != 8 {
		t.Fatalf("Expected 8 seeds, got %d", len(seeds))
	}
	if seeds[0] != (Point{X: 0, Y: 0}) {
		t.Errorf("first seed: got %v", seeds[0])
	}
	if seeds[3] != (Point{X: 15, Y: 0}) {
		t.Errorf("row-major order broken: seeds[3] = %v", seeds[3])
	}
	if seeds[4] != (Point{X: 0, Y: 30}) {
		t.Errorf("bottom strip start: got %v", seeds[4])
	}
}

func TestSegment_IgnoresMiddleBand(t *testing.T) {
	g := newInkGrid(40, 100)
	g.fill(10, 8, 14, 12)  // top strip, crosses seed row 10
	g.fill(10, 45, 14, 55) // middle band, never seeded
	g.fill(20, 80, 24, 90) // bottom strip, crosses seed row 85

	seg := Segment(g, defaultSegmentOptions())
	if len(seg.Regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(seg.Regions))
	}
	if seg.Regions[0].Bounds.Y1 != 7 || seg.Regions[1].Bounds.Y1 != 79 {
		t.Errorf("unexpected regions: %+v, %+v", seg.Regions[0].Bounds, seg.Regions[1].Bounds)
	}
	if seg.Owner(12, 50) != 0 {
		t.Error("middle band pixel should be unowned")
	}
}
