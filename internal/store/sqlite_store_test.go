package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	runStorerTests(t, s)
}

func TestSQLiteStore_TwoDatasetsIsolated(t *testing.T) {
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.UpsertDataset(&Dataset{ID: "a", Name: "A", Dim: 2}))
	require.NoError(t, s.UpsertDataset(&Dataset{ID: "b", Name: "B", Dim: 3}))

	require.NoError(t, s.PutWords("a", []WordRow{{Index: 0, Word: "猫"}}))
	require.NoError(t, s.PutWords("b", []WordRow{{Index: 0, Word: "犬"}, {Index: 1, Word: "鳥"}}))

	require.NoError(t, s.PutEmbeddings("a", [][]float32{{1, 0}}))
	require.NoError(t, s.PutEmbeddings("b", [][]float32{{1, 0, 0}, {0, 1, 0}}))

	// Each dataset answers from its own vector table and word rows.
	near, err := s.NearestWords("a", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "猫", near[0].Word)

	near, err = s.NearestWords("b", []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "鳥", near[0].Word)

	// Deleting one dataset leaves the other intact.
	require.NoError(t, s.DeleteDataset("a"))
	count, err := s.CountWords("b")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteStore_PutWordsReplaces(t *testing.T) {
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.UpsertDataset(&Dataset{ID: "a", Name: "A", Dim: 2}))
	require.NoError(t, s.PutWords("a", []WordRow{{Index: 0, Word: "猫"}, {Index: 1, Word: "犬"}}))
	require.NoError(t, s.PutWords("a", []WordRow{{Index: 0, Word: "鳥"}}))

	count, err := s.CountWords("a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	w, err := s.GetWord("a", 0)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "鳥", w.Word)
}
