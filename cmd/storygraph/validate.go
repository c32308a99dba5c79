package main

import (
	"fmt"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the graph for consistency",
	Long: `Reports documents that do not parse and edges pointing to missing units.
With --start, units unreachable from the start unit are reported too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		return withEditor(cmd, func(ed *storygraph.Editor) error {
			if err := validator.ValidateGraph(ed.Graph(), start); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Graph is valid! ✅")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("start", "", "Unit to crawl from when checking reachability")
}
