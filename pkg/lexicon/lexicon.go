// Package lexicon provides a dictionary fallback for tokenization.
// A single Aho-Corasick automaton built from the vocabulary serves as both
// membership lookup AND text scanner: when the morphological analyzer is
// unavailable, vocabulary words are found directly in raw text by
// leftmost-longest matching, so a run can still produce a plot.
package lexicon

import (
	"errors"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/kittclouds/kotomap/pkg/tokenize"
)

// ErrNoPatterns means the scanner was compiled from an empty word list.
var ErrNoPatterns = errors.New("lexicon has no patterns")

// Scanner finds known vocabulary words in raw text.
type Scanner struct {
	ac ahocorasick.AhoCorasick

	// Pattern index -> word. Patterns are the words themselves, so this
	// doubles as the match resolution table.
	patterns []string

	// Word -> pattern index, for exact lookup.
	patternIndex map[string]int
}

// Match is one detected vocabulary word in text.
type Match struct {
	Word  string
	Start int // byte offset
	End   int
}

// Compile builds a Scanner from a word list. Duplicates collapse to one
// pattern.
func Compile(words []string) (*Scanner, error) {
	s := &Scanner{patternIndex: make(map[string]int, len(words))}

	for _, w := range words {
		if w == "" {
			continue
		}
		if _, exists := s.patternIndex[w]; exists {
			continue
		}
		s.patternIndex[w] = len(s.patterns)
		s.patterns = append(s.patterns, w)
	}

	if len(s.patterns) == 0 {
		return nil, ErrNoPatterns
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	s.ac = builder.Build(s.patterns)

	return s, nil
}

// Contains reports whether a word is in the lexicon.
func (s *Scanner) Contains(word string) bool {
	_, exists := s.patternIndex[word]
	return exists
}

// Len returns the number of distinct patterns.
func (s *Scanner) Len() int {
	return len(s.patterns)
}

// Scan finds all vocabulary word occurrences in text, leftmost-longest,
// in text order. O(len(text)) via the automaton.
func (s *Scanner) Scan(text string) []Match {
	matches := s.ac.FindAll(text)

	result := make([]Match, 0, len(matches))
	for _, m := range matches {
		result = append(result, Match{
			Word:  s.patterns[m.Pattern()],
			Start: m.Start(),
			End:   m.End(),
		})
	}
	return result
}

// Analyze satisfies the tokenize.Analyzer contract. Every hit is a known
// vocabulary word, so matches are tagged as nouns: the fallback has no
// morphology, and an untagged token would be thrown away by the POS filter
// despite being plot-eligible by construction.
func (s *Scanner) Analyze(text string) []tokenize.Token {
	matches := s.Scan(text)

	out := make([]tokenize.Token, 0, len(matches))
	for _, m := range matches {
		out = append(out, tokenize.Token{
			Surface: m.Word,
			POS:     "名詞",
			Base:    m.Word,
		})
	}
	return out
}
