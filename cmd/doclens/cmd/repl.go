package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/entity"
	"github.com/doclens/doclens/internal/ner"
	"github.com/doclens/doclens/internal/search"
	"github.com/doclens/doclens/pkg/engine"
)

func newReplCmd() *cobra.Command {
	var (
		topK     int
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive search loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			s := search.Strategy(strategy)
			if !s.Valid() {
				s = search.StrategyAdaptive
			}

			e, err := engine.Open(ctx, cfg, ner.NewPatternRecognizer())
			if err != nil {
				return err
			}
			defer e.Close()

			stats := e.IndexStats()
			storeStats, err := e.Store().CorpusStats(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, strings.Repeat("=", 70))
			fmt.Fprintln(out, "doclens interactive search")
			fmt.Fprintf(out, "%d documents | %d people, %d locations, %d organizations\n",
				stats.DocumentCount,
				storeStats.UniqueCounts[entity.TypePerson],
				storeStats.UniqueCounts[entity.TypeLocation],
				storeStats.UniqueCounts[entity.TypeOrganization])
			fmt.Fprintln(out, "Commands: 'entities' lists filters, 'stats' shows metrics, 'quit' exits")
			fmt.Fprintln(out, strings.Repeat("=", 70))

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "\nSearch: ")
				if !scanner.Scan() {
					break
				}
				query := strings.TrimSpace(scanner.Text())

				switch strings.ToLower(query) {
				case "":
					continue
				case "quit", "exit", "q":
					fmt.Fprintln(out, "Goodbye!")
					return nil
				case "stats":
					fmt.Fprintln(out, e.Metrics().Report())
					continue
				case "entities":
					printEntityOverview(cmd, e)
					continue
				}

				rs, err := e.Search(ctx, query, search.Options{TopK: topK, Strategy: s})
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				printResults(out, rs)

				for _, r := range rs.Results {
					meta, err := e.GetMetadata(ctx, r.DocID)
					if err != nil || meta == nil {
						continue
					}
					if line := metadataLine(meta.People, meta.Locations, meta.Organizations); line != "" {
						fmt.Fprintf(out, "   [%s] %s\n", r.DocID, line)
					}
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Number of results per query")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(search.StrategyAdaptive),
		"Filter strategy: strict, loose, boost, adaptive, none")

	return cmd
}

func printEntityOverview(cmd *cobra.Command, e *engine.Engine) {
	out := cmd.OutOrStdout()
	all, err := e.AllEntities(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	for _, section := range []struct {
		label string
		typ   entity.Type
	}{
		{"People", entity.TypePerson},
		{"Locations", entity.TypeLocation},
		{"Organizations", entity.TypeOrganization},
	} {
		names := all[section.typ]
		fmt.Fprintf(out, "\n%s (%d):\n", section.label, len(names))
		preview := names
		if len(preview) > 20 {
			preview = preview[:20]
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(preview, ", "))
		if len(names) > 20 {
			fmt.Fprintf(out, "  ... and %d more\n", len(names)-20)
		}
	}
}

func metadataLine(people, locations, orgs []string) string {
	var parts []string
	if len(people) > 0 {
		parts = append(parts, "People: "+strings.Join(truncateList(people, 3), ", "))
	}
	if len(locations) > 0 {
		parts = append(parts, "Locations: "+strings.Join(truncateList(locations, 3), ", "))
	}
	if len(orgs) > 0 {
		parts = append(parts, "Orgs: "+strings.Join(truncateList(orgs, 2), ", "))
	}
	return strings.Join(parts, " | ")
}

func truncateList(names []string, n int) []string {
	if len(names) > n {
		return names[:n]
	}
	return names
}
