// Package dictionary holds the word list captions are corrected against.
//
// Words are stored in NFC form and upper case, matching the glyph alphabet,
// so lookups are case-insensitive. A Dictionary is read-only after
// construction and safe for concurrent use.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Dictionary is a set of upper-case words.
type Dictionary struct {
	words map[string]struct{}
}

// New builds a dictionary from words. Blank entries are ignored.
func New(words ...string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		d.add(w)
	}
	return d
}

// Load reads a word list with one word per line. Lines starting with '#'
// are comments.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	return d, nil
}

// Read parses a word list from r.
func Read(r io.Reader) (*Dictionary, error) {
	d := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dictionary) add(w string) {
	if w = fold(w); w != "" {
		d.words[w] = struct{}{}
	}
}

// Contains reports whether w is a known word, ignoring case.
func (d *Dictionary) Contains(w string) bool {
	if d == nil {
		return false
	}
	_, ok := d.words[fold(w)]
	return ok
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// fold creates a fresh caser per call; cases.Caser is not safe for
// concurrent use.
func fold(w string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(w)))
}
