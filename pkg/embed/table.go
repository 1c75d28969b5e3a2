// Package embed implements the embedding table and the cosine similarity
// engine over it. The table is one contiguous float32 buffer, one
// fixed-width vector per vocabulary slot, addressed by index. The buffer
// length check at load time is the correctness gate for everything
// downstream: a misaligned table would make every similarity score garbage.
package embed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// DefaultDim is the embedding width shipped with the stock assets.
const DefaultDim = 100

// Errors returned by table construction and lookup.
var (
	ErrDataIntegrity = errors.New("embedding buffer size mismatch")
	ErrIndexRange    = errors.New("embedding index out of range")
)

// Table is a read-only flat embedding table. Vector i occupies
// data[i*dim : (i+1)*dim].
type Table struct {
	dim  int
	rows int
	data []float32
}

// FromBytes decodes a little-endian float32 buffer into a Table.
// The buffer must hold exactly rows*dim values; any mismatch fails with
// ErrDataIntegrity and retains nothing.
func FromBytes(raw []byte, rows, dim int) (*Table, error) {
	if dim <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: invalid shape %dx%d", ErrDataIntegrity, rows, dim)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a float32 buffer", ErrDataIntegrity, len(raw))
	}

	count := len(raw) / 4
	if count != rows*dim {
		return nil, fmt.Errorf("%w: got %d values, want %d (%d words x %d dims)",
			ErrDataIntegrity, count, rows*dim, rows, dim)
	}

	data := make([]float32, count)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	return &Table{dim: dim, rows: rows, data: data}, nil
}

// FromValues builds a Table from an already-decoded value slice.
// Same integrity gate as FromBytes.
func FromValues(values []float32, rows, dim int) (*Table, error) {
	if dim <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: invalid shape %dx%d", ErrDataIntegrity, rows, dim)
	}
	if len(values) != rows*dim {
		return nil, fmt.Errorf("%w: got %d values, want %d (%d words x %d dims)",
			ErrDataIntegrity, len(values), rows*dim, rows, dim)
	}
	data := make([]float32, len(values))
	copy(data, values)
	return &Table{dim: dim, rows: rows, data: data}, nil
}

// Dim returns the embedding width.
func (t *Table) Dim() int {
	return t.dim
}

// Rows returns the number of vectors.
func (t *Table) Rows() int {
	return t.rows
}

// Vector returns the embedding for index i. The returned slice aliases the
// table; callers must treat it as read-only.
func (t *Table) Vector(i int) ([]float32, error) {
	if i < 0 || i >= t.rows {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexRange, i, t.rows)
	}
	return t.data[i*t.dim : (i+1)*t.dim], nil
}
