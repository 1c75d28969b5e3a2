package tokenize

import (
	"context"
	"fmt"
	"time"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// DefaultBuildTimeout bounds analyzer construction. Loading the IPA
// dictionary is the single heavyweight step of tokenizer setup; past the
// deadline it is treated as a failure and retried from scratch.
const DefaultBuildTimeout = 30 * time.Second

// Kagome adapts the kagome morphological analyzer to the Analyzer contract.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome builds the analyzer with the IPA dictionary, bounded by ctx.
// Construction runs in a goroutine so a hung dictionary load cannot block
// the caller past its deadline; the orphaned load finishes in the
// background and is discarded.
func NewKagome(ctx context.Context) (*Kagome, error) {
	type built struct {
		t   *tokenizer.Tokenizer
		err error
	}

	ch := make(chan built, 1)
	go func() {
		t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		ch <- built{t: t, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("building tokenizer: %w", ctx.Err())
	case b := <-ch:
		if b.err != nil {
			return nil, fmt.Errorf("building tokenizer: %w", b.err)
		}
		return &Kagome{t: b.t}, nil
	}
}

// Analyze tokenizes text into the structural token contract.
func (k *Kagome) Analyze(text string) []Token {
	raw := k.t.Tokenize(text)

	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		pos := ""
		if features := tok.POS(); len(features) > 0 {
			pos = features[0]
		}

		base := ""
		if b, ok := tok.BaseForm(); ok {
			base = b
		}

		out = append(out, Token{
			Surface: tok.Surface,
			POS:     pos,
			Base:    base,
		})
	}
	return out
}
