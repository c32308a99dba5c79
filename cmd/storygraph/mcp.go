package main

import (
	"fmt"

	"github.com/aretw0/storygraph/internal/cli"
	"github.com/aretw0/storygraph/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the story graph to AI agents as MCP tools (read, create, save,
delete, connect, disconnect, restyle, rename) and resources (the graph as
JSON and as Mermaid).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		ed, logger, closeStore, err := openEditor(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := mcp.NewServer(ed, logger)

		switch transport {
		case "stdio":
			logger.Info("starting MCP server", "transport", "stdio")
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("mcp server failed: %w", err)
			}
			return nil
		case "sse":
			logger.Info("starting MCP server", "transport", "sse", "port", port)
			return srv.ServeSSE(sc, port)
		}
		return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport type (stdio, sse)")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port for SSE server")
}
