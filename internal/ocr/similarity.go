package ocr

// SimilarityRow lists how closely every other glyph resembles one glyph.
type SimilarityRow struct {
	Char    string        `json:"char"`
	Similar CandidateList `json:"similar"`
}

// GlyphSimilarity scores each glyph against every other glyph with the
// matcher's one point per pixel rule, over the first glyph's canvas. Pixels
// outside the second glyph's canvas count against it. Rows are normalized
// like candidate lists, so the closest look-alike scores 1.
func GlyphSimilarity(lib *Library) []SimilarityRow {
	glyphs := lib.Glyphs()
	rows := make([]SimilarityRow, len(glyphs))
	for i, a := range glyphs {
		raw := make([]RawScore, 0, len(glyphs)-1)
		for j, b := range glyphs {
			if i == j {
				continue
			}
			raw = append(raw, RawScore{Char: b.Char, Score: compareGlyphs(a, b)})
		}
		rows[i] = SimilarityRow{Char: string(a.Char), Similar: Normalize(raw)}
	}
	return rows
}

func compareGlyphs(a, b *Glyph) int {
	score := 0
	for x := 0; x < a.width; x++ {
		for y := 0; y < a.height; y++ {
			switch {
			case x >= b.width || y >= b.height:
				score--
			case a.Ink(x, y) == b.Ink(x, y):
				score++
			default:
				score--
			}
		}
	}
	return score
}
