package ocr

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ironsheep/caption-ocr-mcp/internal/detection"
)

// WordSet answers membership queries for uppercase words.
type WordSet interface {
	Contains(word string) bool
}

// ResolveStats counts what happened to the words of one caption.
type ResolveStats struct {
	Words     int `json:"words"`
	Exact     int `json:"exact"`
	Corrected int `json:"corrected"`
	Misses    int `json:"misses"`
	Truncated int `json:"truncated"`
	Dropped   int `json:"dropped_lines"`

	// MissedWords lists best guesses kept after a failed search.
	MissedWords []string `json:"missed_words,omitempty"`
}

// Resolver turns assembled lines into caption text, correcting words that
// are not in the word set by trying lower ranked candidates.
type Resolver struct {
	Words WordSet

	// Threshold is the lowest alternate score worth trying.
	Threshold float64

	// MaxCombinations caps the strings tested per search step.
	MaxCombinations int

	// Simple skips correction and emits the best guesses.
	Simple bool
}

// Resolve builds the caption for lines, using cands indexed by region.
// Lines that look like noise are dropped; the rest are joined with "\n".
func (r *Resolver) Resolve(lines []detection.Line, cands []CandidateList) (string, ResolveStats) {
	var stats ResolveStats
	var out []string
	for _, l := range lines {
		text := r.resolveLine(l, cands, &stats)
		if IsGibberish(text) {
			stats.Dropped++
			continue
		}
		text = strings.ReplaceAll(text, " !", "!")
		text = strings.ReplaceAll(text, " ?", "?")
		out = append(out, text)
	}
	return strings.Join(out, "\n"), stats
}

// wordPart is one piece of a line between separators: either a run of
// region and apostrophe tokens, or a lone ! or ?.
type wordPart struct {
	tokens []detection.Token
	punct  rune
}

// splitWords breaks a line on spaces and on ! and ?, which form words of
// their own. Empty words are skipped.
func splitWords(tokens []detection.Token) []wordPart {
	var parts []wordPart
	var cur []detection.Token
	flush := func() {
		if len(cur) > 0 {
			parts = append(parts, wordPart{tokens: cur})
			cur = nil
		}
	}
	for _, tok := range tokens {
		switch tok.Kind {
		case detection.TokenSpace:
			flush()
		case detection.TokenExclamation, detection.TokenQuestion:
			flush()
			parts = append(parts, wordPart{punct: tok.Sentinel()})
		default:
			cur = append(cur, tok)
		}
	}
	flush()
	return parts
}

func (r *Resolver) resolveLine(l detection.Line, cands []CandidateList, stats *ResolveStats) string {
	parts := splitWords(l.Tokens)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.punct != 0 {
			words = append(words, string(p.punct))
			continue
		}
		words = append(words, r.resolveWord(p.tokens, cands, stats))
	}
	return strings.Join(words, " ")
}

// alternate is a lower ranked candidate for the region at position pos.
type alternate struct {
	pos   int
	char  rune
	score float64
}

func (r *Resolver) resolveWord(tokens []detection.Token, cands []CandidateList, stats *ResolveStats) string {
	stats.Words++

	word := make([]rune, len(tokens))
	var queue []alternate
	for i, tok := range tokens {
		if tok.Kind != detection.TokenRegion {
			word[i] = tok.Sentinel()
			continue
		}
		list := cands[tok.Region]
		word[i] = list.Best()
		for _, c := range list[min(1, len(list)):] {
			queue = append(queue, alternate{pos: i, char: c.Char, score: c.Score})
		}
	}
	guess := string(word)

	if r.Simple {
		return guess
	}
	if r.contains(guess) {
		stats.Exact++
		return guess
	}

	// Highest score last so the best alternate is popped first.
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].score < queue[j].score
	})

	// choices[k] holds the options for region order[k]: its original
	// character followed by every alternate queued for it so far.
	var order []int
	choices := map[int][]rune{}

	for len(queue) > 0 && queue[len(queue)-1].score >= r.Threshold {
		next := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if _, ok := choices[next.pos]; !ok {
			order = append(order, next.pos)
			choices[next.pos] = []rune{word[next.pos]}
		}
		choices[next.pos] = append(choices[next.pos], next.char)

		if hit, ok := r.search(word, order, choices, next, stats); ok {
			stats.Corrected++
			return hit
		}
	}

	stats.Misses++
	stats.MissedWords = append(stats.MissedWords, guess)
	return guess
}

// search tests every combination of queued substitutions that uses the
// newest alternate. Older combinations were tested in earlier steps.
func (r *Resolver) search(word []rune, order []int, choices map[int][]rune, newest alternate, stats *ResolveStats) (string, bool) {
	trial := make([]rune, len(word))
	copy(trial, word)
	trial[newest.pos] = newest.char

	var others []int
	for _, pos := range order {
		if pos != newest.pos {
			others = append(others, pos)
		}
	}

	idx := make([]int, len(others))
	for tested := 0; ; tested++ {
		if r.MaxCombinations > 0 && tested >= r.MaxCombinations {
			stats.Truncated++
			return "", false
		}
		for k, pos := range others {
			trial[pos] = choices[pos][idx[k]]
		}
		if s := string(trial); r.contains(s) {
			return s, true
		}

		// advance the odometer
		k := 0
		for ; k < len(others); k++ {
			idx[k]++
			if idx[k] < len(choices[others[k]]) {
				break
			}
			idx[k] = 0
		}
		if k == len(others) {
			return "", false
		}
	}
}

func (r *Resolver) contains(word string) bool {
	return r.Words != nil && r.Words.Contains(word)
}

// IsGibberish reports whether a resolved line is too short or too sparse to
// be caption text: under 3 characters, under 4 with a space, or more than a
// third spaces.
func IsGibberish(text string) bool {
	n := utf8.RuneCountInString(text)
	if n < 3 {
		return true
	}
	if n < 4 && strings.Contains(text, " ") {
		return true
	}
	return strings.Count(text, " ") > n/3
}
