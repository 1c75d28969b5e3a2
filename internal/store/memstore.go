package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kittclouds/kotomap/pkg/embed"
)

// MemStore is an in-memory implementation of Storer for tests and the
// WASM default, where nothing needs to outlive the page.
type MemStore struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	words    map[string][]WordRow
	vectors  map[string][][]float32
}

// NewMemStore creates a new in-memory catalog.
func NewMemStore() *MemStore {
	return &MemStore{
		datasets: make(map[string]*Dataset),
		words:    make(map[string][]WordRow),
		vectors:  make(map[string][][]float32),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

// UpsertDataset inserts or updates a dataset record.
func (s *MemStore) UpsertDataset(d *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	copied := *d
	s.datasets[d.ID] = &copied
	return nil
}

// GetDataset retrieves a dataset by ID. Nil when absent.
func (s *MemStore) GetDataset(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.datasets[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, nil
}

// ListDatasets returns all datasets ordered by name.
func (s *MemStore) ListDatasets() ([]*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		copied := *d
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteDataset removes a dataset and everything under it.
func (s *MemStore) DeleteDataset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.datasets, id)
	delete(s.words, id)
	delete(s.vectors, id)
	return nil
}

// PutWords replaces the word rows of a dataset.
func (s *MemStore) PutWords(datasetID string, rows []WordRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.datasets[datasetID]
	if !ok {
		return fmt.Errorf("dataset not found: %s", datasetID)
	}

	copied := make([]WordRow, len(rows))
	copy(copied, rows)
	s.words[datasetID] = copied
	d.WordCount = len(rows)
	d.UpdatedAt = time.Now().UnixMilli()
	return nil
}

// GetWord retrieves one word row by index. Nil when absent.
func (s *MemStore) GetWord(datasetID string, index int) (*WordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.words[datasetID] {
		if r.Index == index {
			copied := r
			return &copied, nil
		}
	}
	return nil, nil
}

// FindWord retrieves the first word row matching a word. Nil when absent.
func (s *MemStore) FindWord(datasetID string, word string) (*WordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *WordRow
	for _, r := range s.words[datasetID] {
		if r.Word != word {
			continue
		}
		if found == nil || r.Index < found.Index {
			copied := r
			found = &copied
		}
	}
	return found, nil
}

// CountWords returns the number of word rows in a dataset.
func (s *MemStore) CountWords(datasetID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words[datasetID]), nil
}

// PutEmbeddings stores one vector per word index.
func (s *MemStore) PutEmbeddings(datasetID string, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.datasets[datasetID]
	if !ok {
		return fmt.Errorf("dataset not found: %s", datasetID)
	}

	copied := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if len(vec) != d.Dim {
			return fmt.Errorf("vector %d has %d dims, dataset expects %d", i, len(vec), d.Dim)
		}
		v := make([]float32, len(vec))
		copy(v, vec)
		copied[i] = v
	}
	s.vectors[datasetID] = copied
	return nil
}

// GetEmbedding retrieves one stored vector by word index. Nil when absent.
func (s *MemStore) GetEmbedding(datasetID string, index int) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vectors := s.vectors[datasetID]
	if index < 0 || index >= len(vectors) {
		return nil, nil
	}
	out := make([]float32, len(vectors[index]))
	copy(out, vectors[index])
	return out, nil
}

// NearestWords brute-forces cosine over the stored vectors. Fine for the
// in-memory case; the SQLite store delegates this to sqlite-vec.
func (s *MemStore) NearestWords(datasetID string, query []float32, k int) ([]WordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.datasets[datasetID]
	if !ok {
		return nil, fmt.Errorf("dataset not found: %s", datasetID)
	}
	if len(query) != d.Dim {
		return nil, fmt.Errorf("query has %d dims, dataset expects %d", len(query), d.Dim)
	}

	byIndex := make(map[int]WordRow, len(s.words[datasetID]))
	for _, r := range s.words[datasetID] {
		byIndex[r.Index] = r
	}

	type scored struct {
		row   WordRow
		score float64
	}
	results := make([]scored, 0, len(s.vectors[datasetID]))
	for i, vec := range s.vectors[datasetID] {
		row, ok := byIndex[i]
		if !ok {
			continue
		}
		results = append(results, scored{row: row, score: embed.CosineSimilarity(query, vec)})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	if len(results) > k {
		results = results[:k]
	}

	out := make([]WordRow, len(results))
	for i, r := range results {
		out[i] = r.row
	}
	return out, nil
}

// Compile-time interface check
var _ Storer = (*MemStore)(nil)
