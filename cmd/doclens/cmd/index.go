package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/ner"
	"github.com/doclens/doclens/pkg/engine"
)

// warningPreview caps the number of offending paths printed after an
// index run; the rest are summarized by count.
const warningPreview = 5

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the BM25 and metadata indexes from the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := engine.BuildIndex(ctx, cfg, ner.NewPatternRecognizer())
			if err != nil {
				return err
			}
			defer e.Close()

			stats := e.IndexStats()
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (%d terms, avg length %.0f)\n",
				stats.DocumentCount, stats.TermCount, stats.AvgDocLength)
			fmt.Fprintf(cmd.OutOrStdout(), "Metadata stored at %s\n", cfg.Paths.StorePath)

			warnings := e.Warnings()
			if len(warnings) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSkipped %d file(s):\n", len(warnings))
				for i, w := range warnings {
					if i == warningPreview {
						fmt.Fprintf(cmd.OutOrStdout(), "  ... and %d more\n", len(warnings)-warningPreview)
						break
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", w.Path, w.Err)
				}
			}
			return nil
		},
	}
}
