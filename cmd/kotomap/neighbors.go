package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kittclouds/kotomap/pkg/embed"
	"github.com/kittclouds/kotomap/pkg/vector"
)

var (
	neighborsLimit   int
	neighborsRebuild bool
)

func init() {
	rootCmd.AddCommand(neighborsCmd)

	neighborsCmd.Flags().IntVarP(&neighborsLimit, "limit", "l", embed.DefaultTopK, "Maximum number of results")
	neighborsCmd.Flags().BoolVar(&neighborsRebuild, "rebuild", false, "Rebuild the index even if one exists")
}

// NeighborsResponse is the response for the neighbors command.
type NeighborsResponse struct {
	Word      string   `json:"word"`
	Neighbors []string `json:"neighbors"`
	Total     int      `json:"total"`
	IndexSize int      `json:"indexSize"`
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <word>",
	Short: "Find a word's nearest neighbors via the persistent index",
	Long: `Find the words nearest to a word using the persistent
approximate-nearest-neighbor index.

The index file lives in the asset directory and is built from the
embedding table on first use. Subsequent invocations reuse it.`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbors,
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	word := args[0]

	cfg := mustLoadConfig()
	sess := mustNewSession(cfg)

	if err := sess.EnsureEmbeddings(context.Background()); err != nil {
		exitWithError(ExitDataError, "loading embeddings: %v", err)
	}

	fs, err := assetFS(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "opening asset directory: %v", err)
	}

	idx, err := vector.NewIndex(fs, cfg.Index)
	if err != nil {
		exitWithError(ExitError, "opening neighbor index: %v", err)
	}

	if neighborsRebuild || idx.Graph.Size() == 0 {
		if err := idx.Build(sess.Engine().Table()); err != nil {
			exitWithError(ExitDataError, "building neighbor index: %v", err)
		}
		if err := idx.Save(); err != nil {
			exitWithError(ExitError, "saving neighbor index: %v", err)
		}
	}
	if idx.Graph.Size() == 0 {
		// Every embedding was zero-magnitude; there is nothing to search.
		exitWithError(ExitIndexMissing, "neighbor index is empty; no nonzero vectors in the embedding table")
	}

	words, err := idx.NeighborWords(word, sess.Vocabulary(), sess.Engine().Table(), neighborsLimit)
	if err != nil {
		exitWithError(ExitInputError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Neighbors of: %s\n\n", word)
		for i, w := range words {
			fmt.Printf("%d. %s\n", i+1, w)
		}
		return nil
	}
	return outputJSON(NeighborsResponse{
		Word:      word,
		Neighbors: words,
		Total:     len(words),
		IndexSize: idx.Graph.Size(),
	})
}
