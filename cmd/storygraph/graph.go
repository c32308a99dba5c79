package main

import (
	"fmt"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/cli"
	"github.com/aretw0/storygraph/internal/presentation/graph"
	"github.com/aretw0/storygraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the story graph",
	Long: `Builds the graph from the store and prints it as a Mermaid diagram
(graph TD), as JSON (nodes and edges), or as tables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		selected, _ := cmd.Flags().GetStringSlice("select")

		return withEditor(cmd, func(ed *storygraph.Editor) error {
			out := cmd.OutOrStdout()
			switch format {
			case "mermaid":
				var overlay *graph.GraphOverlay
				if len(selected) > 0 {
					overlay = &graph.GraphOverlay{Selected: selected}
				}
				_, err := fmt.Fprint(out, graph.GenerateMermaid(ed.Graph(), overlay))
				return err
			case "json":
				return cli.PrintJSON(out, ed.Graph())
			case "table":
				return cli.PrintMarkdown(out, cfg.Theme, tui.GraphMarkdown(ed.Graph()))
			}
			return fmt.Errorf("unknown format %q (want mermaid, json or table)", format)
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, json or table")
	graphCmd.Flags().StringSlice("select", nil, "Units to highlight in the Mermaid output")
}
