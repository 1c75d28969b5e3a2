// Package vector maintains an HNSW neighbor index over the full
// vocabulary. The session's similarity ranking scans only the plotted
// pool; this index answers the wider question "what is near this word
// across every embedding we have" without a linear pass, and persists
// between sessions so the build cost is paid once.
package vector

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/fogfish/hnsw"
	"github.com/fogfish/hnsw/vector"
	"github.com/hack-pad/hackpadfs"
	kvector "github.com/kshard/vector"

	"github.com/kittclouds/kotomap/pkg/embed"
	"github.com/kittclouds/kotomap/pkg/vocab"
)

// Index is a persistent nearest-neighbor index keyed by vocabulary index.
// members tracks which vocabulary indices actually hold a vector: words
// with zero-magnitude embeddings are never inserted, and a query for one
// must fail instead of running a meaningless cosine search.
type Index struct {
	Graph   *hnsw.HNSW[vector.VF32]
	FS      hackpadfs.FS
	Path    string
	members *roaring.Bitmap
	mu      sync.RWMutex
}

// snapshot is the persisted form: the graph nodes plus the serialized
// membership bitmap.
type snapshot struct {
	Nodes   hnsw.Nodes[vector.VF32]
	Members []byte
}

// NewIndex opens the index at path, loading a persisted graph when one
// exists and starting empty otherwise. Distance surface is cosine.
func NewIndex(fs hackpadfs.FS, path string) (*Index, error) {
	idx := &Index{
		FS:   fs,
		Path: path,
	}

	if err := idx.Load(); err != nil {
		// No usable graph on disk; start clean. A corrupt file surfaces
		// again at the next Save.
		idx.Graph = hnsw.New[vector.VF32](vector.SurfaceVF32(kvector.Cosine()))
		idx.members = roaring.New()
	}

	return idx, nil
}

// Add inserts the embedding for one vocabulary index.
// Returns an error if the vector width doesn't match the graph.
func (idx *Index) Add(wordIdx uint32, vec []float32) error {
	if idx.Graph == nil {
		return fmt.Errorf("index not initialized")
	}

	if idx.Graph.Size() > 0 {
		dim := len(idx.Graph.Head().Vec)
		if len(vec) != dim {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", dim, len(vec))
		}
	}

	idx.Graph.Insert(vector.VF32{
		Key: wordIdx,
		Vec: vec,
	})
	idx.members.Add(wordIdx)
	return nil
}

// Contains reports whether a vocabulary index holds an indexed vector.
func (idx *Index) Contains(wordIdx uint32) bool {
	return idx.members.Contains(wordIdx)
}

// Build bulk-loads every vector of an embedding table. Zero-magnitude
// vectors are skipped; cosine distance is undefined for them and they can
// never be anyone's meaningful neighbor.
func (idx *Index) Build(table *embed.Table) error {
	for i := 0; i < table.Rows(); i++ {
		vec, err := table.Vector(i)
		if err != nil {
			return err
		}
		if isZero(vec) {
			continue
		}
		if err := idx.Add(uint32(i), vec); err != nil {
			return fmt.Errorf("indexing vector %d: %w", i, err)
		}
	}
	return nil
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

// Search returns the nearest k vocabulary indices to a query vector.
func (idx *Index) Search(vec []float32, k int) ([]uint32, error) {
	if idx.Graph == nil {
		return nil, fmt.Errorf("index not initialized")
	}

	// efSearch: k*2, floored at 100.
	ef := k * 2
	if ef < 100 {
		ef = 100
	}

	if idx.Graph.Size() > 0 {
		dim := len(idx.Graph.Head().Vec)
		if len(vec) != dim {
			return nil, fmt.Errorf("vector dimension mismatch: expected %d, got %d", dim, len(vec))
		}
	}

	results := idx.Graph.Search(vector.VF32{Vec: vec}, k, ef)

	keys := make([]uint32, len(results))
	for i, r := range results {
		keys[i] = r.Key
	}
	return keys, nil
}

// NeighborWords returns up to k vocabulary words nearest to word, the
// query itself excluded. Unlike the session ranking this searches the
// whole vocabulary, not just the plotted set.
func (idx *Index) NeighborWords(word string, v *vocab.Vocabulary, table *embed.Table, k int) ([]string, error) {
	wi, ok := v.Index(word)
	if !ok {
		return nil, fmt.Errorf("%w: %q", vocab.ErrNotInVocabulary, word)
	}
	if !idx.Contains(uint32(wi)) {
		return nil, fmt.Errorf("no indexed vector for %q", word)
	}
	vec, err := table.Vector(wi)
	if err != nil {
		return nil, err
	}

	// Fetch one extra so dropping the query still yields k.
	keys, err := idx.Search(vec, k+1)
	if err != nil {
		return nil, err
	}

	words := make([]string, 0, k)
	for _, key := range keys {
		if key == uint32(wi) {
			continue
		}
		w, err := v.Word(int(key))
		if err != nil {
			continue
		}
		words = append(words, w)
		if len(words) == k {
			break
		}
	}
	return words, nil
}

// Save persists the graph to the filesystem.
func (idx *Index) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.Graph == nil {
		return nil
	}

	membersBytes, err := idx.members.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode index membership: %w", err)
	}
	snap := snapshot{
		Nodes:   idx.Graph.Nodes(),
		Members: membersBytes,
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	if err := hackpadfs.WriteFullFile(idx.FS, idx.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	return nil
}

// Load reads a persisted graph from the filesystem.
func (idx *Index) Load() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	content, err := hackpadfs.ReadFile(idx.FS, idx.Path)
	if err != nil {
		return err
	}

	var snap snapshot
	dec := gob.NewDecoder(bytes.NewReader(content))
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}

	members := roaring.New()
	if err := members.UnmarshalBinary(snap.Members); err != nil {
		return fmt.Errorf("failed to decode index membership: %w", err)
	}

	idx.Graph = hnsw.FromNodes[vector.VF32](
		vector.SurfaceVF32(kvector.Cosine()),
		snap.Nodes,
	)
	idx.members = members

	return nil
}
