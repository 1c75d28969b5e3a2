// Package tokenize turns raw Japanese text into the word list a run plots.
// Morphological analysis is delegated to kagome; this package owns the
// structural token contract and the pure filter pipeline on top of it.
package tokenize

import "strings"

// Token is the fixed structural contract every analyzer must satisfy:
// a surface form, the coarse part-of-speech tag, and the dictionary base
// form (empty when the analyzer has none for the token).
type Token struct {
	Surface string
	POS     string
	Base    string
}

// Analyzer produces tokens from raw text. Implementations: Kagome (the
// real morphological analyzer) and lexicon.Scanner (dictionary fallback).
type Analyzer interface {
	Analyze(text string) []Token
}

// Options configure the filter pipeline.
type Options struct {
	// POSFilter keeps only nouns, verbs and adjectives when true.
	POSFilter bool `json:"posFilter"`

	// Unique deduplicates the output, preserving first-occurrence order.
	Unique bool `json:"unique"`
}

// Part-of-speech tags kept by the POS filter (IPA dictionary tag set).
const (
	posNoun      = "名詞"
	posVerb      = "動詞"
	posAdjective = "形容詞"
)

// unknownSentinel is what the IPA dictionary reports for features it has
// no entry for, base form included.
const unknownSentinel = "*"

// Words runs the full pipeline: analyze, POS-filter, resolve word forms,
// drop empties, optionally dedupe. Pure and order-preserving.
func Words(a Analyzer, text string, opts Options) []string {
	tokens := a.Analyze(text)

	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, tok := range tokens {
		if opts.POSFilter && !keepPOS(tok.POS) {
			continue
		}

		word := resolveForm(tok)
		if word == "" {
			continue
		}

		if opts.Unique {
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
		}
		out = append(out, word)
	}

	return out
}

func keepPOS(pos string) bool {
	return pos == posNoun || pos == posVerb || pos == posAdjective
}

// resolveForm prefers the dictionary base form, falling back to the
// surface when the base is missing or the unknown sentinel. Whitespace-only
// results resolve to "" and are dropped by the caller.
func resolveForm(tok Token) string {
	word := tok.Base
	if word == "" || word == unknownSentinel {
		word = tok.Surface
	}
	if strings.TrimSpace(word) == "" {
		return ""
	}
	return word
}
