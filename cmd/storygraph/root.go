package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/cli"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/spf13/cobra"
)

var cfg = cli.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "storygraph",
	Short: "Storygraph keeps a story graph in sync with its YAML unit documents",
	Long: `Storygraph projects a set of story units (YAML documents with events and an
exit condition) onto a graph of nodes and styled edges, and edits the
documents when the graph is edited: connect, disconnect, restyle, rename.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Validate()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	cli.BindFlags(rootCmd, &cfg)
}

// openEditor opens the configured store and builds the graph.
func openEditor(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*storygraph.Editor, *slog.Logger, func() error, error) {
	logger := cli.CreateLogger(cfg)
	ed, closeStore, err := cli.OpenEditor(cmd.Context(), cfg, logger, hooks...)
	if err != nil {
		return nil, nil, nil, err
	}
	return ed, logger, closeStore, nil
}

// withEditor runs fn against a freshly opened editor and closes the store.
func withEditor(cmd *cobra.Command, fn func(ed *storygraph.Editor) error) error {
	ed, _, closeStore, err := openEditor(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ed)
}
