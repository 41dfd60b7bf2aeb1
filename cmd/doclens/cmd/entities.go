package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/entity"
	derrors "github.com/doclens/doclens/internal/errors"
	"github.com/doclens/doclens/internal/ner"
	"github.com/doclens/doclens/pkg/engine"
)

// entityTypeNames maps CLI names to entity types.
var entityTypeNames = map[string]entity.Type{
	"people":        entity.TypePerson,
	"organizations": entity.TypeOrganization,
	"locations":     entity.TypeLocation,
	"dates":         entity.TypeDate,
	"emails":        entity.TypeEmail,
}

func newEntitiesCmd() *cobra.Command {
	var (
		typeName string
		top      int
		match    string
		cooccur  string
	)

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List and analyze extracted entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			e, err := engine.Open(ctx, cfg, ner.NewPatternRecognizer())
			if err != nil {
				return err
			}
			defer e.Close()

			if cooccur != "" {
				typ, err := resolveType(typeName, entity.TypePerson)
				if err != nil {
					return err
				}
				co, err := e.Cooccurrences(ctx, cooccur, typ, top)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Entities co-occurring with %q:\n", cooccur)
				for i, c := range co {
					fmt.Fprintf(out, "%2d. %-40s (%d documents)\n", i+1, c.Name, c.Count)
				}
				return nil
			}

			if match != "" {
				found, err := e.Store().SearchEntities(ctx, match)
				if err != nil {
					return err
				}
				for _, name := range []string{"people", "organizations", "locations", "dates", "emails"} {
					if names, ok := found[entityTypeNames[name]]; ok {
						fmt.Fprintf(out, "%s: %s\n", strings.ToUpper(name), strings.Join(names, ", "))
					}
				}
				return nil
			}

			if top > 0 {
				typ, err := resolveType(typeName, entity.TypePerson)
				if err != nil {
					return err
				}
				counts, err := e.TopEntities(ctx, typ, top)
				if err != nil {
					return err
				}
				for i, ec := range counts {
					fmt.Fprintf(out, "%2d. %-40s (%d documents)\n", i+1, ec.Name, ec.Count)
				}
				return nil
			}

			all, err := e.AllEntities(ctx)
			if err != nil {
				return err
			}
			for _, name := range []string{"people", "organizations", "locations", "dates", "emails"} {
				names := all[entityTypeNames[name]]
				fmt.Fprintf(out, "%s (%d):\n", strings.ToUpper(name), len(names))
				if len(names) > 0 {
					preview := names
					if len(preview) > 20 {
						preview = preview[:20]
					}
					fmt.Fprintf(out, "  %s\n", strings.Join(preview, ", "))
					if len(names) > 20 {
						fmt.Fprintf(out, "  ... and %d more\n", len(names)-20)
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Entity type: people, organizations, locations, dates, emails")
	cmd.Flags().IntVar(&top, "top", 0, "Show the N most frequent entities")
	cmd.Flags().StringVar(&match, "search", "", "Find entities containing a substring")
	cmd.Flags().StringVar(&cooccur, "cooccur", "", "Show entities co-occurring with the given canonical name")

	return cmd
}

func resolveType(name string, fallback entity.Type) (entity.Type, error) {
	if name == "" {
		return fallback, nil
	}
	typ, ok := entityTypeNames[strings.ToLower(name)]
	if !ok {
		return "", derrors.New(derrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown entity type %q", name), nil)
	}
	return typ, nil
}
