package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/kotomap/pkg/tokenize"
)

func TestCompile(t *testing.T) {
	s, err := Compile([]string{"猫", "犬", "", "猫"})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("猫"))
	assert.False(t, s.Contains("鳥"))
}

func TestCompile_Empty(t *testing.T) {
	_, err := Compile(nil)
	assert.ErrorIs(t, err, ErrNoPatterns)

	_, err = Compile([]string{""})
	assert.ErrorIs(t, err, ErrNoPatterns)
}

func TestScan(t *testing.T) {
	s, err := Compile([]string{"猫", "犬", "子猫"})
	require.NoError(t, err)

	matches := s.Scan("子猫と犬が遊ぶ")
	require.Len(t, matches, 2)

	// Leftmost-longest: 子猫 wins over 猫.
	assert.Equal(t, "子猫", matches[0].Word)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, "犬", matches[1].Word)
}

func TestScan_NoHits(t *testing.T) {
	s, err := Compile([]string{"猫"})
	require.NoError(t, err)

	assert.Empty(t, s.Scan("知らない言葉だけ"))
}

func TestAnalyze_FeedsPipeline(t *testing.T) {
	s, err := Compile([]string{"猫", "犬"})
	require.NoError(t, err)

	// Fallback tokens survive the POS filter and dedupe like any others.
	words := tokenize.Words(s, "猫と犬と猫", tokenize.Options{POSFilter: true, Unique: true})
	assert.Equal(t, []string{"猫", "犬"}, words)
}
