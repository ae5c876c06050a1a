package ocr

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/caption-ocr-mcp/internal/detection"
)

// Candidate is one character guess for a region.
type Candidate struct {
	Char  rune
	Score float64
}

// MarshalJSON writes the character as a string rather than a code point.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Char  string  `json:"char"`
		Score float64 `json:"score"`
	}{string(c.Char), c.Score})
}

// CandidateList is ordered by descending score. When any raw score was
// positive the first entry scores exactly 1.0.
type CandidateList []Candidate

// Best returns the top character, or 0 for an empty list.
func (l CandidateList) Best() rune {
	if len(l) == 0 {
		return 0
	}
	return l[0].Char
}

// Top returns at most n leading candidates.
func (l CandidateList) Top(n int) CandidateList {
	if n < len(l) {
		return l[:n]
	}
	return l
}

// RawScore is an unnormalized per-character agreement count.
type RawScore struct {
	Char  rune
	Score int
}

// Normalize sorts scores descending and divides each by the top score,
// truncated to three decimals. Non-positive scores, or any list whose top
// score is zero, map to 0. Ties keep their input order.
func Normalize(scores []RawScore) CandidateList {
	sorted := make([]RawScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	out := make(CandidateList, len(sorted))
	for i, s := range sorted {
		out[i] = Candidate{Char: s.Char}
		if s.Score <= 0 || sorted[0].Score == 0 {
			continue
		}
		n := float64(s.Score) / float64(sorted[0].Score)
		out[i].Score = math.Trunc(n*1000) / 1000
	}
	return out
}

// Matcher scores regions against a glyph library.
type Matcher struct {
	lib       *Library
	refHeight float64
}

// NewMatcher creates a matcher. refHeight is the box height that maps a
// template onto the image one to one; zero uses each glyph's own RefHeight.
func NewMatcher(lib *Library, refHeight float64) *Matcher {
	return &Matcher{lib: lib, refHeight: refHeight}
}

// Score compares glyph g with the ink under box.
//
// The template is scaled by box height over the reference height and laid
// over the box from its top-left corner. Inside the box every agreeing pixel
// adds one and every disagreeing pixel subtracts one. Past the right edge of
// the box only template ink is penalized.
func (m *Matcher) Score(ink detection.InkMap, box detection.Bounds, g *Glyph) int {
	w, h := ink.Width(), ink.Height()
	ref := m.refHeight
	if ref <= 0 {
		ref = g.RefHeight()
	}
	sc := float64(box.Height()) / ref

	score := 0
	for x := 0; x < g.width; x++ {
		xp := clamp(int(float64(x)*sc+float64(box.X1)), w-1)
		for y := 0; y < g.height; y++ {
			yp := clamp(int(float64(y)*sc+float64(box.Y1)), h-1)
			t := g.Ink(x, y)
			switch {
			case xp < box.X2:
				if t == ink.Ink(xp, yp) {
					score++
				} else {
					score--
				}
			case t:
				score--
			}
		}
	}
	return score
}

// Match returns the normalized candidate list for one box.
func (m *Matcher) Match(ink detection.InkMap, box detection.Bounds) CandidateList {
	glyphs := m.lib.Glyphs()
	raw := make([]RawScore, len(glyphs))
	for i, g := range glyphs {
		raw[i] = RawScore{Char: g.Char, Score: m.Score(ink, box, g)}
	}
	return Normalize(raw)
}

// MatchAll matches every box. Boxes are scored in parallel; each result
// only depends on its own box, so the output equals a sequential run.
func (m *Matcher) MatchAll(ink detection.InkMap, boxes []detection.Bounds) []CandidateList {
	out := make([]CandidateList, len(boxes))
	parallel.Line(len(boxes), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = m.Match(ink, boxes[i])
		}
	})
	return out
}

// clamp limits v to [0, hi].
func clamp(v, hi int) int {
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
