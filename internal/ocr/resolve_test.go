package ocr

import (
	"testing"

	"github.com/ironsheep/caption-ocr-mcp/internal/detection"
)

// lineBuilder assembles a token line and the candidate lists it refers to.
type lineBuilder struct {
	tokens []detection.Token
	cands  []CandidateList
}

// region appends a region token whose candidates are cands.
func (b *lineBuilder) region(cands ...Candidate) *lineBuilder {
	b.tokens = append(b.tokens, detection.Token{Kind: detection.TokenRegion, Region: len(b.cands)})
	b.cands = append(b.cands, cands)
	return b
}

// word appends one region per character, each a certain guess.
func (b *lineBuilder) word(s string) *lineBuilder {
	for _, ch := range s {
		b.region(Candidate{ch, 1}, Candidate{'#', 0.1})
	}
	return b
}

func (b *lineBuilder) sentinel(kind detection.TokenKind) *lineBuilder {
	b.tokens = append(b.tokens, detection.Token{Kind: kind, Region: -1})
	return b
}

func (b *lineBuilder) line() detection.Line {
	return detection.Line{Tokens: b.tokens}
}

func defaultResolver(words WordSet) *Resolver {
	return &Resolver{Words: words, Threshold: 0.8, MaxCombinations: 4096}
}

func TestResolve_NoLines(t *testing.T) {
	got, _ := defaultResolver(newWordList()).Resolve(nil, nil)
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestResolve_SpaceSplitsWords(t *testing.T) {
	b := (&lineBuilder{}).word("H").sentinel(detection.TokenSpace).word("I")

	parts := splitWords(b.tokens)
	if len(parts) != 2 {
		t.Fatalf("Expected 2 words, got %d", len(parts))
	}

	r := defaultResolver(newWordList())
	var stats ResolveStats
	if got := r.resolveLine(b.line(), b.cands, &stats); got != "H I" {
		t.Errorf("resolveLine: got %q, want %q", got, "H I")
	}
	if stats.Words != 2 {
		t.Errorf("Words: got %d, want 2", stats.Words)
	}

	// Three characters with a space is below the noise gate.
	got, stats := r.Resolve([]detection.Line{b.line()}, b.cands)
	if got != "" || stats.Dropped != 1 {
		t.Errorf("Resolve: got %q (dropped %d), want empty with 1 dropped", got, stats.Dropped)
	}
}

func TestResolve_ExactWord(t *testing.T) {
	b := (&lineBuilder{}).word("HELLO")
	got, stats := defaultResolver(newWordList("HELLO")).Resolve([]detection.Line{b.line()}, b.cands)
	if got != "HELLO" {
		t.Errorf("got %q, want HELLO", got)
	}
	if stats.Exact != 1 {
		t.Errorf("Exact: got %d, want 1", stats.Exact)
	}
}

func TestResolve_BacktrackingFindsWord(t *testing.T) {
	b := (&lineBuilder{}).
		word("W").
		region(Candidate{'C', 1}, Candidate{'O', 0.9}, Candidate{'G', 0.6}).
		word("RLD")

	got, stats := defaultResolver(newWordList("WORLD")).Resolve([]detection.Line{b.line()}, b.cands)
	if got != "WORLD" {
		t.Errorf("got %q, want WORLD", got)
	}
	if stats.Corrected != 1 {
		t.Errorf("Corrected: got %d, want 1", stats.Corrected)
	}
}

func TestResolve_EarlierWrongAlternateDoesNotMask(t *testing.T) {
	// R->I is tried first and fails; the later C->O must still be tried
	// with R kept as it was.
	b := (&lineBuilder{}).
		word("W").
		region(Candidate{'C', 1}, Candidate{'O', 0.9}).
		region(Candidate{'R', 1}, Candidate{'I', 0.95}).
		word("LD")

	got, _ := defaultResolver(newWordList("WORLD")).Resolve([]detection.Line{b.line()}, b.cands)
	if got != "WORLD" {
		t.Errorf("got %q, want WORLD", got)
	}
}

func TestResolve_CombinesTwoAlternates(t *testing.T) {
	b := (&lineBuilder{}).
		region(Candidate{'8', 1}, Candidate{'B', 0.9}).
		word("U").
		region(Candidate{'5', 1}, Candidate{'S', 0.85})

	got, _ := defaultResolver(newWordList("BUS")).Resolve([]detection.Line{b.line()}, b.cands)
	if got != "BUS" {
		t.Errorf("got %q, want BUS", got)
	}
}

func TestResolve_ThresholdStopsSearch(t *testing.T) {
	b := (&lineBuilder{}).
		word("W").
		region(Candidate{'C', 1}, Candidate{'O', 0.79}).
		word("RLD")

	got, stats := defaultResolver(newWordList("WORLD")).Resolve([]detection.Line{b.line()}, b.cands)
	if got != "WCRLD" {
		t.Errorf("got %q, want the best guess WCRLD", got)
	}
	if stats.Misses != 1 || len(stats.MissedWords) != 1 || stats.MissedWords[0] != "WCRLD" {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestResolve_MaxCombinations(t *testing.T) {
	b := &lineBuilder{}
	for i := 0; i < 4; i++ {
		b.region(Candidate{'X', 1}, Candidate{'A', 0.99}, Candidate{'B', 0.98}, Candidate{'C', 0.97})
	}

	r := defaultResolver(newWordList("CCCC"))
	r.MaxCombinations = 2
	got, stats := r.Resolve([]detection.Line{b.line()}, b.cands)
	if got != "XXXX" {
		t.Errorf("got %q, want XXXX", got)
	}
	if stats.Truncated == 0 {
		t.Error("expected truncated search steps")
	}

	r.MaxCombinations = 4096
	if got, _ := r.Resolve([]detection.Line{b.line()}, b.cands); got != "CCCC" {
		t.Errorf("uncapped: got %q, want CCCC", got)
	}
}

func TestResolve_SimpleMode(t *testing.T) {
	b := (&lineBuilder{}).
		word("W").
		region(Candidate{'C', 1}, Candidate{'O', 0.9}).
		word("RLD")

	r := defaultResolver(newWordList("WORLD"))
	r.Simple = true
	if got, _ := r.Resolve([]detection.Line{b.line()}, b.cands); got != "WCRLD" {
		t.Errorf("got %q, want WCRLD", got)
	}
}

func TestResolve_NilWordSet(t *testing.T) {
	b := (&lineBuilder{}).word("ABC")
	if got, _ := defaultResolver(nil).Resolve([]detection.Line{b.line()}, b.cands); got != "ABC" {
		t.Errorf("got %q, want ABC", got)
	}
}

func TestResolve_Punctuation(t *testing.T) {
	tests := []struct {
		name  string
		build func() *lineBuilder
		want  string
	}{
		{
			name: "exclamation attaches to word",
			build: func() *lineBuilder {
				return (&lineBuilder{}).word("HEY").sentinel(detection.TokenExclamation)
			},
			want: "HEY!",
		},
		{
			name: "question after space",
			build: func() *lineBuilder {
				return (&lineBuilder{}).word("WHY").sentinel(detection.TokenSpace).sentinel(detection.TokenQuestion)
			},
			want: "WHY?",
		},
		{
			name: "apostrophe stays inside word",
			build: func() *lineBuilder {
				return (&lineBuilder{}).word("IT").sentinel(detection.TokenApostrophe).word("S")
			},
			want: "IT'S",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build()
			got, _ := defaultResolver(newWordList("HEY", "WHY", "IT'S")).Resolve([]detection.Line{b.line()}, b.cands)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_MultipleLines(t *testing.T) {
	b := (&lineBuilder{}).word("ONE")
	top := b.line()
	b.tokens = nil
	bottom := b.word("DOES").line()

	got, _ := defaultResolver(newWordList()).Resolve([]detection.Line{top, bottom}, b.cands)
	if got != "ONE\nDOES" {
		t.Errorf("got %q, want %q", got, "ONE\nDOES")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	b := (&lineBuilder{}).
		word("W").
		region(Candidate{'C', 1}, Candidate{'O', 0.9}).
		word("RLD").
		sentinel(detection.TokenSpace).
		word("HI")

	r := defaultResolver(newWordList("WORLD"))
	lines := []detection.Line{b.line()}
	first, _ := r.Resolve(lines, b.cands)
	second, _ := r.Resolve(lines, b.cands)
	if first != second {
		t.Errorf("results differ: %q vs %q", first, second)
	}
	if first != "WORLD HI" {
		t.Errorf("got %q, want %q", first, "WORLD HI")
	}
}

func TestIsGibberish(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"AB", true},
		{"A B", true},
		{"ABC", false},
		{"AB C", false},
		{"A B C D", true},
		{"AB CD", false},
		{"HELLO WORLD", false},
	}
	for _, tt := range tests {
		if got := IsGibberish(tt.text); got != tt.want {
			t.Errorf("IsGibberish(%q): got %v, want %v", tt.text, got, tt.want)
		}
	}
}
