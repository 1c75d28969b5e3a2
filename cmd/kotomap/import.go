package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kittclouds/kotomap/internal/store"
	"github.com/kittclouds/kotomap/pkg/coords"
	"github.com/kittclouds/kotomap/pkg/embed"
	"github.com/kittclouds/kotomap/pkg/session"
	"github.com/kittclouds/kotomap/pkg/vocab"
)

var importName string

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importName, "name", "n", "", "Display name for the dataset (defaults to the ID)")
}

// ImportResponse is the response for the import command.
type ImportResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	WordCount int    `json:"wordCount"`
	Dim       int    `json:"dim"`
	DB        string `json:"db"`
}

var importCmd = &cobra.Command{
	Use:   "import <dataset-id>",
	Short: "Import the asset bundle into the dataset catalog",
	Long: `Import the asset directory's vocabulary, coordinates and embedding
table into the SQLite dataset catalog as one dataset.

The embedding buffer must hold exactly one vector per vocabulary entry
at the configured width; anything else aborts the import.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	id := args[0]
	name := importName
	if name == "" {
		name = id
	}

	cfg := mustLoadConfig()

	v, err := readVocab(cfg)
	if err != nil {
		exitWithError(ExitDataError, "vocabulary: %v", err)
	}
	ct, err := readCoords(cfg)
	if err != nil {
		exitWithError(ExitDataError, "coordinates: %v", err)
	}
	table, err := readEmbeddings(cfg, v.Len())
	if err != nil {
		exitWithError(ExitDataError, "embeddings: %v", err)
	}

	st, err := store.NewSQLiteStoreWithDSN(cfg.DB)
	if err != nil {
		exitWithError(ExitError, "opening catalog %s: %v", cfg.DB, err)
	}
	defer st.Close()

	ds := &store.Dataset{
		ID:        id,
		Name:      name,
		Dim:       cfg.Dim,
		WordCount: v.Len(),
	}
	if err := st.UpsertDataset(ds); err != nil {
		exitWithError(ExitError, "writing dataset: %v", err)
	}

	rows := make([]store.WordRow, v.Len())
	for i, w := range v.Words() {
		row := store.WordRow{Index: i, Word: w}
		if pt, ok := ct.Lookup(w); ok {
			row.X, row.Y, row.HasCoord = pt.X, pt.Y, true
		}
		rows[i] = row
	}
	if err := st.PutWords(id, rows); err != nil {
		exitWithError(ExitError, "writing words: %v", err)
	}

	vectors := make([][]float32, table.Rows())
	for i := range vectors {
		vec, err := table.Vector(i)
		if err != nil {
			exitWithError(ExitError, "reading vector %d: %v", i, err)
		}
		vectors[i] = vec
	}
	if err := st.PutEmbeddings(id, vectors); err != nil {
		exitWithError(ExitError, "writing embeddings: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %s: %d words, dim %d -> %s\n", id, v.Len(), cfg.Dim, cfg.DB)
		return nil
	}
	return outputJSON(ImportResponse{
		Status:    "imported",
		ID:        id,
		WordCount: v.Len(),
		Dim:       cfg.Dim,
		DB:        cfg.DB,
	})
}

func readVocab(cfg Config) (*vocab.Vocabulary, error) {
	data, err := os.ReadFile(filepath.Join(cfg.Assets, session.DefaultVocabAsset))
	if err != nil {
		return nil, err
	}
	return vocab.FromJSON(data)
}

func readCoords(cfg Config) (*coords.Table, error) {
	data, err := os.ReadFile(filepath.Join(cfg.Assets, session.DefaultCoordsAsset))
	if err != nil {
		return nil, err
	}
	return coords.Parse(data)
}

func readEmbeddings(cfg Config, rows int) (*embed.Table, error) {
	data, err := os.ReadFile(filepath.Join(cfg.Assets, session.DefaultEmbeddingAsset))
	if err != nil {
		return nil, err
	}
	return embed.FromBytes(data, rows, cfg.Dim)
}
