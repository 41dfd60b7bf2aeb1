package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	derrors "github.com/doclens/doclens/internal/errors"
	"github.com/doclens/doclens/internal/ner"
	"github.com/doclens/doclens/internal/search"
	"github.com/doclens/doclens/internal/store"
	"github.com/doclens/doclens/pkg/engine"
)

func newSearchCmd() *cobra.Command {
	var (
		topK      int
		strategy  string
		people    []string
		locations []string
		orgs      []string
		dateFrom  string
		dateTo    string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			s := search.Strategy(strategy)
			if !s.Valid() {
				return derrors.New(derrors.ErrCodeInvalidInput,
					fmt.Sprintf("unknown strategy %q (strict|loose|boost|adaptive|none)", strategy), nil)
			}

			e, err := engine.Open(ctx, cfg, ner.NewPatternRecognizer())
			if err != nil {
				return err
			}
			defer e.Close()

			opts := search.Options{TopK: topK, Strategy: s}
			if len(people) > 0 || len(locations) > 0 || len(orgs) > 0 {
				opts.Filters = &search.QueryEntities{
					People:        people,
					Locations:     locations,
					Organizations: orgs,
				}
			}
			if dateFrom != "" || dateTo != "" {
				opts.DateRange = &store.DateRange{Low: dateFrom, High: dateTo}
				if opts.DateRange.High == "" {
					opts.DateRange.High = "9999-12-31"
				}
			}

			rs, err := e.Search(ctx, query, opts)
			if err != nil {
				return err
			}

			printResults(cmd.OutOrStdout(), rs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Number of results to return")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(search.StrategyAdaptive),
		"Filter strategy: strict, loose, boost, adaptive, none")
	cmd.Flags().StringSliceVar(&people, "person", nil, "Filter by person (repeatable, OR)")
	cmd.Flags().StringSliceVar(&locations, "location", nil, "Filter by location (repeatable, OR)")
	cmd.Flags().StringSliceVar(&orgs, "org", nil, "Filter by organization (repeatable, OR)")
	cmd.Flags().StringVar(&dateFrom, "from", "", "Date range start (inclusive, lexicographic)")
	cmd.Flags().StringVar(&dateTo, "to", "", "Date range end (inclusive, lexicographic)")

	return cmd
}

func printResults(w io.Writer, rs *search.ResultSet) {
	if len(rs.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	decorated := isatty.IsTerminal(os.Stdout.Fd())

	if rs.Applied != rs.Strategy {
		fmt.Fprintf(w, "Strategy: %s (applied: %s)\n\n", rs.Strategy, rs.Applied)
	}

	for i, r := range rs.Results {
		fmt.Fprintf(w, "%d. %s\n", i+1, r.Filename)
		if r.MetadataBoost > 0 {
			fmt.Fprintf(w, "   Score: %.4f (bm25 %.4f + boost %.2f)\n", r.FinalScore, r.BM25Score, r.MetadataBoost)
		} else {
			fmt.Fprintf(w, "   Score: %.4f\n", r.FinalScore)
		}
		if decorated {
			fmt.Fprintf(w, "   Preview: %s\n", strings.ReplaceAll(r.Preview, "\n", " "))
		}
		if line := matchedLine(r.Matched); line != "" {
			fmt.Fprintf(w, "   Matched: %s\n", line)
		}
		fmt.Fprintln(w)
	}
}

func matchedLine(q search.QueryEntities) string {
	var parts []string
	if len(q.People) > 0 {
		parts = append(parts, "People: "+strings.Join(q.People, ", "))
	}
	if len(q.Locations) > 0 {
		parts = append(parts, "Locations: "+strings.Join(q.Locations, ", "))
	}
	if len(q.Organizations) > 0 {
		parts = append(parts, "Orgs: "+strings.Join(q.Organizations, ", "))
	}
	if len(q.Dates) > 0 {
		parts = append(parts, "Dates: "+strings.Join(q.Dates, ", "))
	}
	return strings.Join(parts, " | ")
}
