package embed

import (
	"fmt"
	"math"
	"sort"

	"github.com/kittclouds/kotomap/pkg/vocab"
)

// DefaultTopK is how many neighbors a ranking returns by default.
const DefaultTopK = 10

// Neighbor is one ranked similarity result.
type Neighbor struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns 0.0 if dimensions mismatch or either vector is zero-length or
// zero-magnitude; degenerate embeddings rank at the bottom instead of
// poisoning the sort with NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	dotProduct := 0.0
	normA := 0.0
	normB := 0.0

	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize modifies vector in-place to have unit length (L2 norm).
// Zero vectors are left untouched.
func Normalize(v []float32) {
	sumSq := 0.0
	for _, x := range v {
		sumSq += float64(x * x)
	}

	if sumSq == 0 {
		return
	}

	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
}

// Engine ranks words by cosine similarity over a table, resolving words
// through the vocabulary index.
type Engine struct {
	table *Table
	vocab *vocab.Vocabulary
}

// NewEngine binds a table to its vocabulary. The table must carry one
// vector per vocabulary slot; the pairing is rejected otherwise so queries
// can never read a misaligned vector.
func NewEngine(t *Table, v *vocab.Vocabulary) (*Engine, error) {
	if t.Rows() != v.Len() {
		return nil, fmt.Errorf("%w: table has %d vectors, vocabulary has %d words",
			ErrDataIntegrity, t.Rows(), v.Len())
	}
	return &Engine{table: t, vocab: v}, nil
}

// Table returns the underlying embedding table.
func (e *Engine) Table() *Table {
	return e.table
}

// Similarity computes cosine similarity between the vectors at indices i and j.
func (e *Engine) Similarity(i, j int) (float64, error) {
	vi, err := e.table.Vector(i)
	if err != nil {
		return 0, err
	}
	vj, err := e.table.Vector(j)
	if err != nil {
		return 0, err
	}
	return CosineSimilarity(vi, vj), nil
}

// TopSimilar ranks a candidate pool against a query word.
//
// The query word itself is excluded. Pool words absent from the vocabulary
// are skipped silently; they simply cannot be ranked. Results are sorted by
// descending score with ties keeping pool order, then truncated to k.
// O(len(pool)) per call; the pool is one plot's word set, never the full
// vocabulary.
func (e *Engine) TopSimilar(word string, pool []string, k int) ([]Neighbor, error) {
	qi, ok := e.vocab.Index(word)
	if !ok {
		return nil, fmt.Errorf("%w: %q", vocab.ErrNotInVocabulary, word)
	}
	qv, err := e.table.Vector(qi)
	if err != nil {
		return nil, err
	}

	if k <= 0 {
		k = DefaultTopK
	}

	results := make([]Neighbor, 0, len(pool))
	for _, cand := range pool {
		if cand == word {
			continue
		}
		ci, ok := e.vocab.Index(cand)
		if !ok {
			continue
		}
		cv, err := e.table.Vector(ci)
		if err != nil {
			return nil, err
		}
		results = append(results, Neighbor{Word: cand, Score: CosineSimilarity(qv, cv)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
