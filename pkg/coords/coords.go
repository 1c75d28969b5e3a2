// Package coords loads the precomputed 2-D coordinate table used for
// scatter plotting. The source is line-oriented text: a header line
// (skipped), then "word,x,y" rows. Rows that fail to parse or carry
// non-finite values are dropped, not reported; plotting tolerates gaps.
package coords

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyTable means the source yielded no usable coordinate rows.
var ErrEmptyTable = errors.New("coordinate table is empty")

// Point is a 2-D plot position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Table maps words to plot positions. Independent of the vocabulary:
// a word may have a coordinate without an embedding and vice versa.
type Table struct {
	points map[string]Point

	// Dropped counts rows discarded during parsing. Diagnostic only;
	// default behavior ignores it.
	Dropped int
}

// Parse reads a coordinate table from CSV bytes.
func Parse(data []byte) (*Table, error) {
	return Read(bytes.NewReader(data))
}

// Read reads a coordinate table from r.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	// Header row carries column names, not data.
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyTable
		}
		return nil, fmt.Errorf("reading coordinate header: %w", err)
	}

	t := &Table{points: make(map[string]Point)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, e.g. bare quote. Dropped like any other bad row.
			t.Dropped++
			continue
		}

		word, pt, ok := parseRow(rec)
		if !ok {
			t.Dropped++
			continue
		}
		t.points[word] = pt
	}

	if len(t.points) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

func parseRow(rec []string) (string, Point, bool) {
	if len(rec) < 3 {
		return "", Point{}, false
	}

	word := strings.TrimSpace(rec[0])
	if word == "" {
		return "", Point{}, false
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil || !isFinite(x) {
		return "", Point{}, false
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil || !isFinite(y) {
		return "", Point{}, false
	}

	return word, Point{X: x, Y: y}, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Lookup returns the point for a word.
func (t *Table) Lookup(word string) (Point, bool) {
	pt, ok := t.points[word]
	return pt, ok
}

// Contains reports whether the word has a coordinate.
func (t *Table) Contains(word string) bool {
	_, ok := t.points[word]
	return ok
}

// Len returns the number of usable coordinate rows.
func (t *Table) Len() int {
	return len(t.points)
}

// Words returns all words that have a coordinate, in no particular order.
func (t *Table) Words() []string {
	out := make([]string, 0, len(t.points))
	for w := range t.points {
		out = append(out, w)
	}
	return out
}
