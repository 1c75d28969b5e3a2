package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kittclouds/kotomap/pkg/embed"
)

var similarLimit int

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", embed.DefaultTopK, "Maximum number of results")
}

// SimilarResponse is the response for the similar command.
type SimilarResponse struct {
	Word     string           `json:"word"`
	Similar  []embed.Neighbor `json:"similar"`
	Total    int              `json:"total"`
	PoolSize int              `json:"poolSize"`
}

var similarCmd = &cobra.Command{
	Use:   "similar <word>",
	Short: "Rank the vocabulary by similarity to a word",
	Long: `Rank the whole vocabulary by cosine similarity to a word's
embedding. The word itself is excluded from the results.

This scans every vocabulary entry. For repeated queries over a large
vocabulary, build the neighbor index and use 'kotomap neighbors'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	word := args[0]

	cfg := mustLoadConfig()
	sess := mustNewSession(cfg)

	if err := sess.EnsureEmbeddings(context.Background()); err != nil {
		exitWithError(ExitDataError, "loading embeddings: %v", err)
	}

	v := sess.Vocabulary()
	if !v.Contains(word) {
		exitWithError(ExitInputError, "word %q not in vocabulary", word)
	}

	results, err := sess.Engine().TopSimilar(word, v.Words(), similarLimit)
	if err != nil {
		exitWithError(ExitError, "ranking: %v", err)
	}

	if humanOutput {
		fmt.Printf("Words similar to: %s\n\n", word)
		for i, n := range results {
			fmt.Printf("%d. [%.4f] %s\n", i+1, n.Score, n.Word)
		}
		return nil
	}
	return outputJSON(SimilarResponse{
		Word:     word,
		Similar:  results,
		Total:    len(results),
		PoolSize: v.Len(),
	})
}
