package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tbl, err := Parse([]byte("word,x,y\n猫,1.0,2.0\n犬,3.0,4.0\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 0, tbl.Dropped)

	pt, ok := tbl.Lookup("猫")
	require.True(t, ok)
	assert.Equal(t, Point{X: 1.0, Y: 2.0}, pt)

	pt, ok = tbl.Lookup("犬")
	require.True(t, ok)
	assert.Equal(t, Point{X: 3.0, Y: 4.0}, pt)
}

func TestParse_DropsBadRows(t *testing.T) {
	src := "word,x,y\n" +
		"猫,1.0,2.0\n" +
		"壊れた行\n" + // too few fields
		"犬,abc,4.0\n" + // unparseable x
		"鳥,1.0,NaN\n" + // non-finite y
		"魚,Inf,2.0\n" + // non-finite x
		",5.0,6.0\n" + // empty word
		"馬,7.5,-8.25\n"

	tbl, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 5, tbl.Dropped)
	assert.True(t, tbl.Contains("猫"))
	assert.True(t, tbl.Contains("馬"))
	assert.False(t, tbl.Contains("犬"))
	assert.False(t, tbl.Contains("鳥"))
}

func TestParse_SkipsBlankLines(t *testing.T) {
	tbl, err := Parse([]byte("word,x,y\n\n猫,1.0,2.0\n\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestParse_HeaderOnly(t *testing.T) {
	_, err := Parse([]byte("word,x,y\n"))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)
}
