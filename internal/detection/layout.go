package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TokenKind distinguishes region tokens from inferred punctuation.
type TokenKind int

const (
	TokenRegion TokenKind = iota
	TokenSpace
	TokenApostrophe
	TokenExclamation
	TokenQuestion
)

// Token is one element of an assembled line.
type Token struct {
	Kind TokenKind `json:"kind"`

	// Region indexes the boxes passed to Assemble. It is set for every
	// kind except TokenSpace, where it is -1.
	Region int `json:"region"`
}

// Sentinel returns the text of a non-region token, or 0 for TokenRegion.
func (t Token) Sentinel() rune {
	switch t.Kind {
	case TokenSpace:
		return ' '
	case TokenApostrophe:
		return '\''
	case TokenExclamation:
		return '!'
	case TokenQuestion:
		return '?'
	}
	return 0
}

// Line is one row of caption text, left to right.
type Line struct {
	// Regions are the member indices sorted by X1.
	Regions []int   `json:"regions"`
	Tokens  []Token `json:"tokens"`
}

// LayoutOptions holds the geometric thresholds used by Assemble.
type LayoutOptions struct {
	// YTolerance is the strict absolute distance between a box's Y1 and a
	// line's mean Y1 for the box to join that line.
	YTolerance int

	// SpaceGapRatio of the mean box width separates two words.
	SpaceGapRatio float64

	// Boxes shorter than ApostropheRatio of the mean height become an
	// apostrophe; shorter than PunctRatio become ! or ?.
	ApostropheRatio float64
	PunctRatio      float64
}

// Assemble clusters boxes into lines and inserts sentinel tokens.
//
// best holds the top candidate character for each box; it decides between
// ! (an I or J shaped glyph) and ?. Lines are ordered by the Y1 of their
// leftmost member.
func Assemble(boxes []Bounds, best []rune, opts LayoutOptions) []Line {
	var groups [][]int
	for i, b := range boxes {
		joined := false
		for g, members := range groups {
			if math.Abs(float64(b.Y1)-meanY1(boxes, members)) < float64(opts.YTolerance) {
				groups[g] = append(members, i)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, []int{i})
		}
	}

	for _, members := range groups {
		sort.SliceStable(members, func(a, b int) bool {
			return boxes[members[a]].X1 < boxes[members[b]].X1
		})
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return boxes[groups[a][0]].Y1 < boxes[groups[b][0]].Y1
	})

	lines := make([]Line, 0, len(groups))
	for _, members := range groups {
		lines = append(lines, Line{
			Regions: members,
			Tokens:  lineTokens(boxes, best, members, opts),
		})
	}
	return lines
}

func lineTokens(boxes []Bounds, best []rune, members []int, opts LayoutOptions) []Token {
	widths := make([]float64, len(members))
	heights := make([]float64, len(members))
	for i, m := range members {
		widths[i] = float64(boxes[m].Width())
		heights[i] = float64(boxes[m].Height())
	}
	meanW := stat.Mean(widths, nil)
	meanH := stat.Mean(heights, nil)

	tokens := make([]Token, 0, 2*len(members))
	for i, m := range members {
		tok := Token{Kind: TokenRegion, Region: m}
		h := heights[i]
		switch {
		case h < opts.ApostropheRatio*meanH:
			tok.Kind = TokenApostrophe
		case h < opts.PunctRatio*meanH:
			if m < len(best) && (best[m] == 'I' || best[m] == 'J') {
				tok.Kind = TokenExclamation
			} else {
				tok.Kind = TokenQuestion
			}
		}
		tokens = append(tokens, tok)

		if i < len(members)-1 {
			gap := float64(boxes[members[i+1]].X1 - boxes[m].X2)
			if gap > opts.SpaceGapRatio*meanW {
				tokens = append(tokens, Token{Kind: TokenSpace, Region: -1})
			}
		}
	}
	return tokens
}

func meanY1(boxes []Bounds, members []int) float64 {
	ys := make([]float64, len(members))
	for i, m := range members {
		ys[i] = float64(boxes[m].Y1)
	}
	return stat.Mean(ys, nil)
}
