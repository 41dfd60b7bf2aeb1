package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/entity"
	derrors "github.com/doclens/doclens/internal/errors"
	"github.com/doclens/doclens/internal/export"
	"github.com/doclens/doclens/internal/ner"
	"github.com/doclens/doclens/pkg/engine"
)

func newExportCmd() *cobra.Command {
	var (
		output   string
		layout   string
		typeName string
		minFreq  int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entities as CSV",
		Long: `Export entity analytics as CSV. Layouts:

  frequencies  Entity Type, Entity, Document Count
  documents    Entity, Document Count, Document IDs (semicolon-separated)
  matrix       square co-occurrence matrix, zero diagonal`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := engine.Open(ctx, cfg, ner.NewPatternRecognizer())
			if err != nil {
				return err
			}
			defer e.Close()

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch layout {
			case "frequencies":
				var types []entity.Type
				if typeName != "" {
					typ, err := resolveType(typeName, "")
					if err != nil {
						return err
					}
					types = []entity.Type{typ}
				}
				err = export.Frequencies(ctx, w, e.Store(), types, minFreq)
			case "documents":
				typ, rerr := resolveType(typeName, entity.TypePerson)
				if rerr != nil {
					return rerr
				}
				err = export.Documents(ctx, w, e.Store(), typ)
			case "matrix":
				typ, rerr := resolveType(typeName, entity.TypePerson)
				if rerr != nil {
					return rerr
				}
				err = export.CooccurrenceMatrix(ctx, w, e.Store(), typ, limit)
			default:
				return derrors.New(derrors.ErrCodeInvalidInput,
					fmt.Sprintf("unknown layout %q (frequencies|documents|matrix)", layout), nil)
			}
			if err != nil {
				return err
			}

			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&layout, "layout", "l", "frequencies", "CSV layout: frequencies, documents, matrix")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Entity type to export")
	cmd.Flags().IntVar(&minFreq, "min-frequency", 1, "Minimum document frequency to include")
	cmd.Flags().IntVar(&limit, "limit", 25, "Matrix size (top-N entities)")

	return cmd
}
