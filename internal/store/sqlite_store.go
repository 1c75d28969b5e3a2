package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
)

// SQLiteStore is the SQLite-backed dataset catalog.
// Thread-safe for concurrent callers.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema covers datasets and their word rows. Vector tables are created
// per dataset because vec0 fixes the embedding width at creation time.
const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    dim INTEGER NOT NULL,
    word_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS words (
    dataset_seq INTEGER NOT NULL,
    word_idx INTEGER NOT NULL,
    word TEXT NOT NULL,
    x REAL,
    y REAL,
    PRIMARY KEY (dataset_seq, word_idx)
);

CREATE INDEX IF NOT EXISTS idx_words_word ON words(dataset_seq, word);
`

// NewSQLiteStore creates a new in-memory catalog.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a catalog with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// vecTable derives the per-dataset vector table name from the trusted
// integer sequence, never from caller strings.
func vecTable(seq int64) string {
	return fmt.Sprintf("vec_items_%d", seq)
}

// =============================================================================
// Dataset CRUD
// =============================================================================

// UpsertDataset inserts or updates a dataset record.
func (s *SQLiteStore) UpsertDataset(d *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO datasets (id, name, dim, word_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			dim = excluded.dim,
			word_count = excluded.word_count,
			updated_at = excluded.updated_at
	`, d.ID, d.Name, d.Dim, d.WordCount, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return err
	}

	return s.db.QueryRow(`SELECT seq FROM datasets WHERE id = ?`, d.ID).Scan(&d.seq)
}

// GetDataset retrieves a dataset by ID. Nil when absent.
func (s *SQLiteStore) GetDataset(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getDataset(id)
}

func (s *SQLiteStore) getDataset(id string) (*Dataset, error) {
	var d Dataset
	err := s.db.QueryRow(`
		SELECT seq, id, name, dim, word_count, created_at, updated_at
		FROM datasets WHERE id = ?
	`, id).Scan(&d.seq, &d.ID, &d.Name, &d.Dim, &d.WordCount, &d.CreatedAt, &d.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDatasets returns all datasets ordered by name.
func (s *SQLiteStore) ListDatasets() ([]*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT seq, id, name, dim, word_count, created_at, updated_at
		FROM datasets ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.seq, &d.ID, &d.Name, &d.Dim, &d.WordCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// DeleteDataset removes a dataset, its words, and its vector table.
func (s *SQLiteStore) DeleteDataset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.getDataset(id)
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}

	if _, err := s.db.Exec(`DELETE FROM words WHERE dataset_seq = ?`, d.seq); err != nil {
		return err
	}
	if _, err := s.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, vecTable(d.seq))); err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM datasets WHERE seq = ?`, d.seq)
	return err
}

// =============================================================================
// Words
// =============================================================================

// PutWords replaces the word rows of a dataset.
func (s *SQLiteStore) PutWords(datasetID string, rows []WordRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.getDataset(datasetID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("dataset not found: %s", datasetID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM words WHERE dataset_seq = ?`, d.seq); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO words (dataset_seq, word_idx, word, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		var x, y interface{}
		if r.HasCoord {
			x, y = r.X, r.Y
		}
		if _, err := stmt.Exec(d.seq, r.Index, r.Word, x, y); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`UPDATE datasets SET word_count = ?, updated_at = ? WHERE seq = ?`,
		len(rows), time.Now().UnixMilli(), d.seq); err != nil {
		return err
	}

	return tx.Commit()
}

// GetWord retrieves one word row by index. Nil when absent.
func (s *SQLiteStore) GetWord(datasetID string, index int) (*WordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.getDataset(datasetID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	return s.scanWord(s.db.QueryRow(`
		SELECT word_idx, word, x, y FROM words
		WHERE dataset_seq = ? AND word_idx = ?
	`, d.seq, index))
}

// FindWord retrieves the first word row matching a word. Nil when absent.
// Duplicate vocabulary entries resolve to the lowest index, matching the
// in-memory vocabulary's first-occurrence rule.
func (s *SQLiteStore) FindWord(datasetID string, word string) (*WordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.getDataset(datasetID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	return s.scanWord(s.db.QueryRow(`
		SELECT word_idx, word, x, y FROM words
		WHERE dataset_seq = ? AND word = ?
		ORDER BY word_idx LIMIT 1
	`, d.seq, word))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStore) scanWord(row rowScanner) (*WordRow, error) {
	var r WordRow
	var x, y sql.NullFloat64
	err := row.Scan(&r.Index, &r.Word, &x, &y)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if x.Valid && y.Valid {
		r.X, r.Y, r.HasCoord = x.Float64, y.Float64, true
	}
	return &r, nil
}

// CountWords returns the number of word rows in a dataset.
func (s *SQLiteStore) CountWords(datasetID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.getDataset(datasetID)
	if err != nil {
		return 0, err
	}
	if d == nil {
		return 0, nil
	}

	var count int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM words WHERE dataset_seq = ?`, d.seq).Scan(&count)
	return count, err
}

// =============================================================================
// Embeddings
// =============================================================================

// PutEmbeddings stores one vector per word index in the dataset's vec0
// table, creating the table with the dataset's width. Vector widths are
// validated against the dataset record.
func (s *SQLiteStore) PutEmbeddings(datasetID string, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.getDataset(datasetID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("dataset not found: %s", datasetID)
	}

	table := vecTable(d.seq)
	if _, err := s.db.Exec(fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d] distance_metric=cosine)`, table, d.Dim)); err != nil {
		return fmt.Errorf("creating vector table: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s (rowid, embedding) VALUES (?, ?)`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, vec := range vectors {
		if len(vec) != d.Dim {
			return fmt.Errorf("vector %d has %d dims, dataset expects %d", i, len(vec), d.Dim)
		}
		blob, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(i, string(blob)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetEmbedding retrieves one stored vector by word index. Nil when absent.
func (s *SQLiteStore) GetEmbedding(datasetID string, index int) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.getDataset(datasetID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	var blob string
	err = s.db.QueryRow(fmt.Sprintf(
		`SELECT vec_to_json(embedding) FROM %s WHERE rowid = ?`, vecTable(d.seq)), index).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var vec []float32
	if err := json.Unmarshal([]byte(blob), &vec); err != nil {
		return nil, fmt.Errorf("decoding stored vector %d: %w", index, err)
	}
	return vec, nil
}

// NearestWords runs a vec0 KNN query and resolves hits to word rows.
func (s *SQLiteStore) NearestWords(datasetID string, query []float32, k int) ([]WordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.getDataset(datasetID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("dataset not found: %s", datasetID)
	}
	if len(query) != d.Dim {
		return nil, fmt.Errorf("query has %d dims, dataset expects %d", len(query), d.Dim)
	}

	blob, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT w.word_idx, w.word, w.x, w.y
		FROM %s v
		JOIN words w ON w.dataset_seq = ? AND w.word_idx = v.rowid
		WHERE v.embedding MATCH ? AND v.k = ?
		ORDER BY v.distance
	`, vecTable(d.seq)), d.seq, string(blob), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WordRow
	for rows.Next() {
		r, err := s.scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Compile-time interface check
var _ Storer = (*SQLiteStore)(nil)
