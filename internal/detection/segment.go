package detection

// Bounds is a region's bounding box, padded by one pixel on every side.
//
// Both corners are inclusive, so a box may start at -1 or end at the image
// width when its region touches the margin band.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width is X2 - X1, the extent used by the layout heuristics.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height is Y2 - Y1. The glyph matcher scales templates by this value.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Region is a 4-connected set of ink pixels found by one flood fill.
type Region struct {
	// ID is the 1-based owner id written to the ownership map.
	ID int `json:"id"`

	// Pixels are listed in discovery order.
	Pixels []Point `json:"-"`

	// Bounds is computed once when the region is finalized.
	Bounds Bounds `json:"bounds"`
}

// Size returns the pixel count.
func (r Region) Size() int { return len(r.Pixels) }

// InkMap is the read side of a binary threshold buffer.
// *imaging.PixelBuffer satisfies it.
type InkMap interface {
	Width() int
	Height() int
	Ink(x, y int) bool
}

// Ownership map markers. Positive values are region ids.
const (
	ownerNone     = 0
	ownerRejected = -1
	ownerNoise    = -2
)

// SegmentOptions controls seed placement and the per-region fill budget.
type SegmentOptions struct {
	RowStride     int
	ColStride     int
	Budget        int
	StripFraction float64
}

// Segmentation is the outcome of one segmentation pass.
type Segmentation struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Regions are the finalized regions in discovery order.
	Regions []Region `json:"regions"`

	// Rejected regions ran out of budget. Their pixels are never reused.
	Rejected []Region `json:"rejected"`

	// Noise counts single-pixel fills that were dropped.
	Noise int `json:"noise"`

	owner []int
}

// Owner returns the id of the finalized region that owns (x, y), -1 for a
// pixel of a rejected region, or 0 when no region owns it.
func (s *Segmentation) Owner(x, y int) int {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return ownerNone
	}
	o := s.owner[y*s.Width+x]
	if o == ownerNoise {
		return ownerNone
	}
	return o
}

// Segmenter grows regions one seed at a time over a single ink map. It keeps
// a buffer-sized ownership map so a pixel can belong to at most one region,
// finalized or rejected.
//
// A Segmenter is not safe for concurrent use.
type Segmenter struct {
	ink    InkMap
	width  int
	height int
	budget int
	owner  []int
	nextID int

	regions  []Region
	rejected []Region
	noise    int
}

// NewSegmenter creates a segmenter over ink with the given expansion budget.
func NewSegmenter(ink InkMap, budget int) *Segmenter {
	w, h := ink.Width(), ink.Height()
	return &Segmenter{
		ink:    ink,
		width:  w,
		height: h,
		budget: budget,
		owner:  make([]int, w*h),
		nextID: 1,
	}
}

// inside reports whether (x, y) lies strictly within the margin band.
func (s *Segmenter) inside(x, y int) bool {
	return x > 0 && x < s.width-1 && y > 0 && y < s.height-1
}

// Flood grows a region from (x, y) and reports whether it was finalized.
//
// Every stack pop costs one unit of budget. When the budget runs out, or the
// fill reaches a pixel already owned by another region, the pixels gathered
// so far move to the rejected set. A fill of a single pixel is recorded as
// noise. A seed on a claimed pixel yields nothing.
func (s *Segmenter) Flood(x, y int) (Region, bool) {
	if x >= 0 && y >= 0 && x < s.width && y < s.height && s.owner[y*s.width+x] != ownerNone {
		return Region{}, false
	}

	id := s.nextID
	budget := s.budget
	stack := []Point{{X: x, Y: y}}
	var area []Point

	for len(stack) > 0 {
		budget--
		if budget <= 0 {
			s.reject(area)
			return Region{}, false
		}

		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !s.inside(p.X, p.Y) {
			continue
		}
		idx := p.Y*s.width + p.X
		switch o := s.owner[idx]; {
		case o == id:
			continue
		case o != ownerNone:
			s.reject(area)
			return Region{}, false
		}
		if !s.ink.Ink(p.X, p.Y) {
			continue
		}

		s.owner[idx] = id
		area = append(area, p)
		stack = append(stack,
			Point{X: p.X - 1, Y: p.Y},
			Point{X: p.X, Y: p.Y - 1},
			Point{X: p.X + 1, Y: p.Y},
			Point{X: p.X, Y: p.Y + 1},
		)
	}

	switch len(area) {
	case 0:
		return Region{}, false
	case 1:
		s.owner[area[0].Y*s.width+area[0].X] = ownerNoise
		s.noise++
		return Region{}, false
	}

	r := Region{ID: id, Pixels: area, Bounds: BoundingBox(area)}
	s.regions = append(s.regions, r)
	s.nextID++
	return r, true
}

func (s *Segmenter) reject(area []Point) {
	for _, p := range area {
		s.owner[p.Y*s.width+p.X] = ownerRejected
	}
	if len(area) > 0 {
		s.rejected = append(s.rejected, Region{ID: ownerRejected, Pixels: area, Bounds: BoundingBox(area)})
	}
}

// Result returns everything segmented so far.
func (s *Segmenter) Result() *Segmentation {
	return &Segmentation{
		Width:    s.width,
		Height:   s.height,
		Regions:  s.regions,
		Rejected: s.rejected,
		Noise:    s.noise,
		owner:    s.owner,
	}
}

// BoundingBox returns the min/max extent of pixels padded by one pixel.
// pixels must not be empty.
func BoundingBox(pixels []Point) Bounds {
	b := Bounds{X1: pixels[0].X, Y1: pixels[0].Y, X2: pixels[0].X, Y2: pixels[0].Y}
	for _, p := range pixels[1:] {
		if p.X < b.X1 {
			b.X1 = p.X
		}
		if p.Y < b.Y1 {
			b.Y1 = p.Y
		}
		if p.X > b.X2 {
			b.X2 = p.X
		}
		if p.Y > b.Y2 {
			b.Y2 = p.Y
		}
	}
	return Bounds{X1: b.X1 - 1, Y1: b.Y1 - 1, X2: b.X2 + 1, Y2: b.Y2 + 1}
}

// StripSeeds lists seed points along the top and bottom strips of a
// width×height image, row by row. Captions are assumed to sit in those
// strips; fraction is the share of the height each strip covers.
func StripSeeds(width, height int, opts SegmentOptions) []Point {
	rowStride, colStride := opts.RowStride, opts.ColStride
	if rowStride < 1 {
		rowStride = 1
	}
	if colStride < 1 {
		colStride = 1
	}

	var rows []int
	for y := 0; y < int(float64(height)*opts.StripFraction); y += rowStride {
		rows = append(rows, y)
	}
	for y := int(float64(height) * (1 - opts.StripFraction)); y < height; y += rowStride {
		rows = append(rows, y)
	}

	seeds := make([]Point, 0, len(rows)*(width/colStride+1))
	for _, y := range rows {
		for x := 0; x < width; x += colStride {
			seeds = append(seeds, Point{X: x, Y: y})
		}
	}
	return seeds
}

// Segment floods ink from every strip seed and returns the regions found.
func Segment(ink InkMap, opts SegmentOptions) *Segmentation {
	s := NewSegmenter(ink, opts.Budget)
	for _, p := range StripSeeds(ink.Width(), ink.Height(), opts) {
		s.Flood(p.X, p.Y)
	}
	return s.Result()
}
