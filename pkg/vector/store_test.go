package vector

import (
	"testing"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/kotomap/pkg/embed"
	"github.com/kittclouds/kotomap/pkg/vocab"
)

func TestIndex_RoundTrip(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)

	// 1. Build and persist
	{
		idx, err := NewIndex(fs, "neighbors.bin")
		require.NoError(t, err)

		require.NoError(t, idx.Add(0, []float32{0.1, 0.2, 0.3, 0.0}))
		require.NoError(t, idx.Add(1, []float32{0.9, 0.8, 0.9, 0.0}))
		require.NoError(t, idx.Add(2, []float32{0.1, 0.21, 0.31, 0.0}))

		require.NoError(t, idx.Save())
	}

	// 2. Reopen and query
	{
		idx, err := NewIndex(fs, "neighbors.bin")
		require.NoError(t, err)

		keys, err := idx.Search([]float32{0.1, 0.2, 0.3, 0.0}, 2)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(keys), 2)

		// Exact match first, near-duplicate second.
		assert.Equal(t, uint32(0), keys[0])
		assert.Equal(t, uint32(2), keys[1])

		// Membership survives the round trip too.
		assert.True(t, idx.Contains(1))
		assert.False(t, idx.Contains(9))
	}
}

func TestIndex_DimensionMismatch(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)

	idx, err := NewIndex(fs, "neighbors.bin")
	require.NoError(t, err)

	require.NoError(t, idx.Add(0, []float32{1, 0}))
	assert.Error(t, idx.Add(1, []float32{1, 0, 0}))

	_, err = idx.Search([]float32{1}, 1)
	assert.Error(t, err)
}

func TestIndex_BuildAndNeighborWords(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)

	v, err := vocab.New([]string{"猫", "虎", "机", "零"})
	require.NoError(t, err)

	table, err := embed.FromValues([]float32{
		1, 0, // 猫
		0.9, 0.1, // 虎
		0, 1, // 机
		0, 0, // 零: skipped by Build
	}, 4, 2)
	require.NoError(t, err)

	idx, err := NewIndex(fs, "neighbors.bin")
	require.NoError(t, err)
	require.NoError(t, idx.Build(table))

	assert.Equal(t, 3, idx.Graph.Size())

	words, err := idx.NeighborWords("猫", v, table, 2)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "虎", words[0])
	assert.Equal(t, "机", words[1])
	assert.NotContains(t, words, "猫")

	_, err = idx.NeighborWords("未知語", v, table, 2)
	assert.ErrorIs(t, err, vocab.ErrNotInVocabulary)

	// 零 is in the vocabulary but its zero vector was never indexed, so
	// a neighbor query for it fails instead of searching on garbage.
	assert.False(t, idx.Contains(3))
	_, err = idx.NeighborWords("零", v, table, 2)
	assert.Error(t, err)
}
