package ocr

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Quality returns the fraction of caption tokens found in words. Tokens are
// split on single spaces, so runs of spaces leave empty tokens that count
// against the score. The marks . , ! and ? count as tokens of their own.
// A nil word set scores 0.
func Quality(text string, words WordSet) float64 {
	if words == nil {
		return 0
	}
	text = strings.ReplaceAll(text, "\n", " ")
	for _, p := range []string{".", ",", "!", "?"} {
		text = strings.ReplaceAll(text, p, " "+p)
	}
	tokens := strings.Split(text, " ")

	found := 0
	for _, t := range tokens {
		if words.Contains(t) {
			found++
		}
	}
	return float64(found) / float64(len(tokens))
}

// RankedCaption is a caption with its quality score.
type RankedCaption struct {
	Label   string  `json:"label"`
	Caption string  `json:"caption"`
	Quality float64 `json:"quality"`
}

// RankCaptions scores each caption and orders them best first. Ties keep
// their input order.
func RankCaptions(words WordSet, captions []RankedCaption) []RankedCaption {
	out := make([]RankedCaption, len(captions))
	for i, c := range captions {
		c.Quality = Quality(c.Caption, words)
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quality > out[j].Quality
	})
	return out
}

// Evaluation compares a recognised caption with the expected text.
type Evaluation struct {
	Caption    string  `json:"caption"`
	Expected   string  `json:"expected,omitempty"`
	Quality    float64 `json:"quality"`
	Similarity float64 `json:"similarity,omitempty"`
	Pairs      []Pair  `json:"pairs,omitempty"`
}

// Evaluate scores caption against words and, when expected is not empty,
// aligns the two texts case-insensitively.
func Evaluate(caption, expected string, words WordSet) *Evaluation {
	ev := &Evaluation{Caption: caption, Expected: expected}
	if words != nil {
		ev.Quality = Quality(caption, words)
	}
	if expected == "" {
		return ev
	}

	upper := cases.Upper(language.Und)
	ev.Pairs = WordPair(upper.String(caption), upper.String(expected))
	ev.Similarity = WordSimilarity(ev.Pairs)
	return ev
}
