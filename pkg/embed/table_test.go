package embed

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32le(values ...float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func TestFromBytes(t *testing.T) {
	tbl, err := FromBytes(f32le(1, 0, 0, 1), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Dim())
	assert.Equal(t, 2, tbl.Rows())

	v0, err := tbl.Vector(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v0)

	v1, err := tbl.Vector(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, v1)
}

func TestFromBytes_SizeMismatch(t *testing.T) {
	// 3 values for a 2x2 table: expected 4.
	_, err := FromBytes(f32le(1, 2, 3), 2, 2)
	assert.ErrorIs(t, err, ErrDataIntegrity)

	// Too many values fail the same way; never silently truncated.
	_, err = FromBytes(f32le(1, 2, 3, 4, 5), 2, 2)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestFromBytes_RaggedBuffer(t *testing.T) {
	raw := f32le(1, 2, 3, 4)
	_, err := FromBytes(raw[:len(raw)-1], 2, 2)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestFromBytes_BadShape(t *testing.T) {
	_, err := FromBytes(nil, 0, 2)
	assert.ErrorIs(t, err, ErrDataIntegrity)
	_, err = FromBytes(nil, 2, 0)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestFromValues(t *testing.T) {
	tbl, err := FromValues([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)

	v, err := tbl.Vector(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6}, v)

	_, err = FromValues([]float32{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestVector_OutOfRange(t *testing.T) {
	tbl, err := FromValues([]float32{1, 2}, 1, 2)
	require.NoError(t, err)

	_, err = tbl.Vector(1)
	assert.ErrorIs(t, err, ErrIndexRange)
	_, err = tbl.Vector(-1)
	assert.ErrorIs(t, err, ErrIndexRange)
}
