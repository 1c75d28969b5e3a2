package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/kotomap/pkg/vocab"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	// Zero magnitude is defined as similarity 0, never NaN.
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	z := []float32{0, 0}
	Normalize(z)
	assert.Equal(t, []float32{0, 0}, z)
}

func testEngine(t *testing.T, words []string, values []float32, dim int) *Engine {
	t.Helper()
	v, err := vocab.New(words)
	require.NoError(t, err)
	tbl, err := FromValues(values, len(words), dim)
	require.NoError(t, err)
	e, err := NewEngine(tbl, v)
	require.NoError(t, err)
	return e
}

func TestNewEngine_RowMismatch(t *testing.T) {
	v, err := vocab.New([]string{"猫", "犬"})
	require.NoError(t, err)
	tbl, err := FromValues([]float32{1, 0}, 1, 2)
	require.NoError(t, err)

	_, err = NewEngine(tbl, v)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestSimilarity(t *testing.T) {
	e := testEngine(t, []string{"猫", "犬", "零"}, []float32{
		1, 0, // 猫
		0, 1, // 犬
		0, 0, // 零: degenerate all-zero embedding
	}, 2)

	// Orthogonal unit vectors.
	s, err := e.Similarity(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s, 1e-9)

	// Self-similarity of a nonzero vector is 1.
	s, err = e.Similarity(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-9)

	// Symmetric.
	a, err := e.Similarity(0, 1)
	require.NoError(t, err)
	b, err := e.Similarity(1, 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Zero vector pins the score to exactly 0, even against itself.
	s, err = e.Similarity(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)
	s, err = e.Similarity(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)

	_, err = e.Similarity(0, 99)
	assert.ErrorIs(t, err, ErrIndexRange)
}

func TestTopSimilar(t *testing.T) {
	e := testEngine(t, []string{"猫", "虎", "犬", "机"}, []float32{
		1, 0, // 猫
		0.9, 0.1, // 虎: close to 猫
		0.5, 0.5, // 犬: middling
		0, 1, // 机: orthogonal
	}, 2)

	got, err := e.TopSimilar("猫", []string{"虎", "犬", "机", "未知語"}, 10)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "虎", got[0].Word)
	assert.Equal(t, "犬", got[1].Word)
	assert.Equal(t, "机", got[2].Word)
	assert.True(t, got[0].Score >= got[1].Score && got[1].Score >= got[2].Score)
}

func TestTopSimilar_ExcludesQueryAndTruncates(t *testing.T) {
	e := testEngine(t, []string{"猫", "虎", "犬", "机"}, []float32{
		1, 0,
		0.9, 0.1,
		0.5, 0.5,
		0, 1,
	}, 2)

	got, err := e.TopSimilar("猫", []string{"猫", "虎", "犬", "机"}, 2)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, n := range got {
		assert.NotEqual(t, "猫", n.Word)
	}
}

func TestTopSimilar_StableTies(t *testing.T) {
	// 虎 and 豹 share a vector; the tie keeps pool order.
	e := testEngine(t, []string{"猫", "虎", "豹"}, []float32{
		1, 0,
		0, 1,
		0, 1,
	}, 2)

	got, err := e.TopSimilar("猫", []string{"豹", "虎"}, 10)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "豹", got[0].Word)
	assert.Equal(t, "虎", got[1].Word)
}

func TestTopSimilar_UnknownQuery(t *testing.T) {
	e := testEngine(t, []string{"猫"}, []float32{1, 0}, 2)

	_, err := e.TopSimilar("未知語", []string{"猫"}, 10)
	assert.ErrorIs(t, err, vocab.ErrNotInVocabulary)
}
