package ocr

import (
	"math"
	"testing"
)

func TestWordPair(t *testing.T) {
	tests := []struct {
		a, b string
		want []Pair
	}{
		{"ABC", "ABC", []Pair{{"A", "A"}, {"B", "B"}, {"C", "C"}}},
		{"DEED", "INDEED", []Pair{{"", "IN"}, {"D", "D"}, {"E", "E"}, {"E", "E"}, {"D", "D"}}},
		{"ABC", "XYZ", []Pair{{"ABC", "XYZ"}}},
		{"AB", "ABCD", []Pair{{"A", "A"}, {"B", "B"}, {"", "CD"}}},
		{"", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			got := WordPair(tt.a, tt.b)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pair %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWordSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"WORLD", "WORLD", 1},
		{"DEED", "INDEED", 0.8},
		{"PRINCIPAL", "PRINCIPLE", 8.0 / 9.0},
		{"ABC", "XYZ", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		got := WordSimilarity(WordPair(tt.a, tt.b))
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s/%s: got %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
