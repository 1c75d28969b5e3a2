package tokenize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyzer feeds the pipeline canned tokens.
type stubAnalyzer struct {
	tokens []Token
}

func (s *stubAnalyzer) Analyze(string) []Token {
	return s.tokens
}

func TestWords_POSFilter(t *testing.T) {
	a := &stubAnalyzer{tokens: []Token{
		{Surface: "猫", POS: "名詞", Base: "猫"},
		{Surface: "が", POS: "助詞", Base: "が"},
		{Surface: "走っ", POS: "動詞", Base: "走る"},
		{Surface: "速い", POS: "形容詞", Base: "速い"},
		{Surface: "。", POS: "記号", Base: "。"},
	}}

	got := Words(a, "", Options{POSFilter: true})
	assert.Equal(t, []string{"猫", "走る", "速い"}, got)

	// No filter keeps everything, still in order.
	got = Words(a, "", Options{})
	assert.Equal(t, []string{"猫", "が", "走る", "速い", "。"}, got)
}

func TestWords_BaseFormFallback(t *testing.T) {
	a := &stubAnalyzer{tokens: []Token{
		{Surface: "走っ", POS: "動詞", Base: "走る"}, // base preferred
		{Surface: "グーグル", POS: "名詞", Base: "*"}, // unknown sentinel -> surface
		{Surface: "ネコ", POS: "名詞", Base: ""},    // no base -> surface
		{Surface: "  ", POS: "名詞", Base: " "},   // whitespace resolves to nothing
	}}

	got := Words(a, "", Options{})
	assert.Equal(t, []string{"走る", "グーグル", "ネコ"}, got)
}

func TestWords_Unique(t *testing.T) {
	a := &stubAnalyzer{tokens: []Token{
		{Surface: "猫", POS: "名詞", Base: "猫"},
		{Surface: "犬", POS: "名詞", Base: "犬"},
		{Surface: "猫", POS: "名詞", Base: "猫"},
		{Surface: "鳥", POS: "名詞", Base: "鳥"},
		{Surface: "犬", POS: "名詞", Base: "犬"},
	}}

	unique := Words(a, "", Options{Unique: true})
	assert.Equal(t, []string{"猫", "犬", "鳥"}, unique)

	// Unique output is a subsequence selection of the unfiltered output.
	all := Words(a, "", Options{})
	assert.Equal(t, []string{"猫", "犬", "猫", "鳥", "犬"}, all)
	assert.Subset(t, all, unique)
}

func TestWords_Empty(t *testing.T) {
	got := Words(&stubAnalyzer{}, "", Options{POSFilter: true, Unique: true})
	assert.Empty(t, got)
}

func TestKagome_Analyze(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dictionary load in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultBuildTimeout)
	defer cancel()

	k, err := NewKagome(ctx)
	require.NoError(t, err)

	words := Words(k, "猫が走った", Options{POSFilter: true})
	assert.Contains(t, words, "猫")
	assert.Contains(t, words, "走る") // base form of 走っ
	assert.NotContains(t, words, "が")
}

func TestNewKagome_DeadlineExceeded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := NewKagome(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
