// Package store provides SQLite-backed persistence for imported asset
// bundles: vocabulary, coordinates and embeddings for one corpus, kept
// queryable between sessions. Uses ncruces/go-sqlite3/driver which
// provides a database/sql interface, with sqlite-vec for vector search.
package store

// Dataset describes one imported asset bundle.
type Dataset struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dim       int    `json:"dim"`
	WordCount int    `json:"wordCount"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`

	// seq is the internal integer handle the vector table name is
	// derived from. Assigned on insert.
	seq int64
}

// WordRow is one vocabulary entry within a dataset, with its optional
// plot coordinate.
type WordRow struct {
	Index    int     `json:"index"`
	Word     string  `json:"word"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	HasCoord bool    `json:"hasCoord"`
}

// Storer defines the persistence interface. MemStore backs tests and the
// WASM default; SQLiteStore backs the native CLI.
type Storer interface {
	// Datasets
	UpsertDataset(d *Dataset) error
	GetDataset(id string) (*Dataset, error)
	ListDatasets() ([]*Dataset, error)
	DeleteDataset(id string) error

	// Words
	PutWords(datasetID string, rows []WordRow) error
	GetWord(datasetID string, index int) (*WordRow, error)
	FindWord(datasetID string, word string) (*WordRow, error)
	CountWords(datasetID string) (int, error)

	// Embeddings
	PutEmbeddings(datasetID string, vectors [][]float32) error
	GetEmbedding(datasetID string, index int) ([]float32, error)
	NearestWords(datasetID string, query []float32, k int) ([]WordRow, error)

	// Lifecycle
	Close() error
}
