package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kittclouds/kotomap/internal/store"
)

var infoNearest string
var infoNearestK int

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVar(&infoNearest, "nearest", "", "Also list words nearest to this word within the dataset")
	infoCmd.Flags().IntVar(&infoNearestK, "k", 10, "Result count for --nearest")
}

// InfoResponse is the response for the info command with a dataset ID.
type InfoResponse struct {
	Dataset *store.Dataset  `json:"dataset"`
	Nearest []store.WordRow `json:"nearest,omitempty"`
}

// ListResponse is the response for the info command without arguments.
type ListResponse struct {
	Datasets []*store.Dataset `json:"datasets"`
	Total    int              `json:"total"`
}

var infoCmd = &cobra.Command{
	Use:   "info [dataset-id]",
	Short: "Inspect the dataset catalog",
	Long: `List imported datasets, or show one dataset in detail.

With --nearest, also runs a vector search inside the catalog for the
words closest to the given word.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	st, err := store.NewSQLiteStoreWithDSN(cfg.DB)
	if err != nil {
		exitWithError(ExitError, "opening catalog %s: %v", cfg.DB, err)
	}
	defer st.Close()

	if len(args) == 0 {
		datasets, err := st.ListDatasets()
		if err != nil {
			exitWithError(ExitError, "listing datasets: %v", err)
		}
		if humanOutput {
			for _, d := range datasets {
				fmt.Printf("%s\t%s\t%d words, dim %d\t%s\n",
					d.ID, d.Name, d.WordCount, d.Dim,
					time.UnixMilli(d.UpdatedAt).Format(time.RFC3339))
			}
			return nil
		}
		return outputJSON(ListResponse{Datasets: datasets, Total: len(datasets)})
	}

	id := args[0]
	ds, err := st.GetDataset(id)
	if err != nil {
		exitWithError(ExitError, "reading dataset: %v", err)
	}
	if ds == nil {
		exitWithError(ExitInputError, "dataset %q not found", id)
	}

	var nearest []store.WordRow
	if infoNearest != "" {
		nearest, err = nearestInDataset(st, ds, infoNearest, infoNearestK)
		if err != nil {
			exitWithError(ExitInputError, "%v", err)
		}
	}

	if humanOutput {
		fmt.Printf("%s (%s): %d words, dim %d\n", ds.ID, ds.Name, ds.WordCount, ds.Dim)
		for i, w := range nearest {
			fmt.Printf("%d. %s\n", i+1, w.Word)
		}
		return nil
	}
	return outputJSON(InfoResponse{Dataset: ds, Nearest: nearest})
}

// nearestInDataset resolves a word to its stored vector, then searches
// the dataset's vector table. The word itself leads the raw result and
// is dropped.
func nearestInDataset(st store.Storer, ds *store.Dataset, word string, k int) ([]store.WordRow, error) {
	row, err := st.FindWord(ds.ID, word)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("word %q not in dataset %s", word, ds.ID)
	}

	vec, err := st.GetEmbedding(ds.ID, row.Index)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		return nil, fmt.Errorf("no embedding stored for %q in dataset %s", word, ds.ID)
	}

	rows, err := st.NearestWords(ds.ID, vec, k+1)
	if err != nil {
		return nil, err
	}

	out := make([]store.WordRow, 0, k)
	for _, r := range rows {
		if r.Index == row.Index {
			continue
		}
		out = append(out, r)
		if len(out) == k {
			break
		}
	}
	return out, nil
}
