// Package cmd provides the CLI commands for doclens.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/config"
	derrors "github.com/doclens/doclens/internal/errors"
	"github.com/doclens/doclens/internal/logging"
	"github.com/doclens/doclens/pkg/version"
)

// Exit codes for scripted callers.
const (
	exitOK           = 0
	exitError        = 1
	exitIndexMissing = 2
	exitUsage        = 64
)

var (
	flagConfig   string
	flagDataDir  string
	flagStore    string
	flagLogLevel string

	cfg *config.Config
)

// NewRootCmd creates the root command for the doclens CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doclens",
		Short: "Hybrid keyword + entity search over document corpora",
		Long: `doclens builds a BM25 index and an entity metadata index over a
directory of plain-text documents, then answers free-form queries with
relevance ranking that blends keyword scores with entity matches.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if flagDataDir != "" {
				loaded.Paths.DataDir = flagDataDir
			}
			if flagStore != "" {
				loaded.Paths.StorePath = flagStore
			}
			if flagLogLevel != "" {
				loaded.Logging.Level = flagLogLevel
			}
			logging.Setup(loaded.Logging.Level, loaded.Logging.Format, os.Stderr)
			cfg = loaded
			return nil
		},
	}

	cmd.SetVersionTemplate("doclens version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory of .txt documents")
	cmd.PersistentFlags().StringVar(&flagStore, "store", "", "Path to the metadata database")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newEntitiesCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newReplCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI and maps errors to exit codes.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "doclens: %v\n", err)
		return exitCodeFor(err)
	}
	return exitOK
}

func exitCodeFor(err error) int {
	var de *derrors.Error
	if errors.As(err, &de) {
		switch de.Code {
		case derrors.ErrCodeIndexMissing:
			return exitIndexMissing
		case derrors.ErrCodeInvalidInput, derrors.ErrCodeInvalidTopK, derrors.ErrCodeConfigInvalid:
			return exitUsage
		}
	}
	return exitError
}
