// Package vocab holds the session vocabulary: an ordered word list whose
// position assigns each word a stable integer index, plus the derived
// word -> index map. Both are built together from a JSON string array and
// never mutated afterwards.
package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors returned by vocabulary construction and lookup.
var (
	ErrEmptyVocabulary = errors.New("vocabulary is empty")
	ErrNotInVocabulary = errors.New("word not in vocabulary")
)

// Vocabulary is an ordered word list with a derived index map.
// Index assignment is array order and is stable for the session.
type Vocabulary struct {
	words []string
	index map[string]int
}

// FromJSON builds a Vocabulary from a JSON array of strings.
// Array order defines index assignment. Duplicate words keep their first
// index; later occurrences are ignored for lookup but still occupy a slot
// so indices stay aligned with the embedding table.
func FromJSON(data []byte) (*Vocabulary, error) {
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parsing vocabulary: %w", err)
	}
	return New(words)
}

// New builds a Vocabulary from an ordered word list.
func New(words []string) (*Vocabulary, error) {
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}

	index := make(map[string]int, len(words))
	for i, w := range words {
		if _, seen := index[w]; !seen {
			index[w] = i
		}
	}

	return &Vocabulary{words: words, index: index}, nil
}

// Index returns the stable index for a word.
func (v *Vocabulary) Index(word string) (int, bool) {
	i, ok := v.index[word]
	return i, ok
}

// Word returns the word at index i.
func (v *Vocabulary) Word(i int) (string, error) {
	if i < 0 || i >= len(v.words) {
		return "", fmt.Errorf("%w: index %d out of range [0,%d)", ErrNotInVocabulary, i, len(v.words))
	}
	return v.words[i], nil
}

// Contains reports whether the word has an index.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.index[word]
	return ok
}

// Len returns the number of vocabulary slots (including duplicate slots).
func (v *Vocabulary) Len() int {
	return len(v.words)
}

// Words returns the ordered word list. Callers must not mutate it.
func (v *Vocabulary) Words() []string {
	return v.words
}
