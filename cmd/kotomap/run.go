package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kittclouds/kotomap/pkg/session"
	"github.com/kittclouds/kotomap/pkg/tokenize"
)

var (
	runPOSFilter bool
	runUnique    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runPOSFilter, "pos-filter", true, "Keep only nouns, verbs and adjectives")
	runCmd.Flags().BoolVar(&runUnique, "unique", true, "Deduplicate words, keeping first occurrence")
}

// RunResponse is the response for the run command.
type RunResponse struct {
	Points []session.PlotPoint `json:"points"`
	Total  int                 `json:"total"`
}

var runCmd = &cobra.Command{
	Use:   "run [text]",
	Short: "Tokenize text and return its scatter plot",
	Long: `Tokenize Japanese text and return the plottable words with their
precomputed 2-D coordinates.

Text is taken from the argument, or from stdin when absent. A word is
plotted when the vocabulary knows it and a coordinate exists for it;
fewer than two such words is an error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	text, err := inputText(args)
	if err != nil {
		exitWithError(ExitError, "reading input: %v", err)
	}

	cfg := mustLoadConfig()
	sess := mustNewSession(cfg)

	points, err := sess.Run(context.Background(), text, tokenize.Options{
		POSFilter: runPOSFilter,
		Unique:    runUnique,
	})
	if err != nil {
		if errors.Is(err, session.ErrInsufficientInput) {
			exitWithError(ExitInputError, "%v", err)
		}
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		for _, p := range points {
			fmt.Printf("%s\t(%.4f, %.4f)\n", p.Word, p.X, p.Y)
		}
		return nil
	}
	return outputJSON(RunResponse{Points: points, Total: len(points)})
}

// inputText returns the argument text, or stdin when no argument given.
func inputText(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
