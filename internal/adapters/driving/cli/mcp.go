package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the style-guide search tool.

By default, the server communicates over stdio using JSON-RPC. This is also
how an external agent.tool_server is launched.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  styleaudit mcp serve

  # HTTP mode, refreshing the index when guides change
  styleaudit mcp serve --port 8081 --watch

Desktop assistant configuration:
  {
    "mcpServers": {
      "styleaudit": {
        "command": "/path/to/styleaudit",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("watch", false, "refresh the index when guide files change")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpServer == nil {
		return errors.New("mcp server not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	stop, err := startWatcher(cmd.Context(), cmd, watch)
	if err != nil {
		return fmt.Errorf("failed to watch guides: %w", err)
	}
	defer stop()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return mcpServer.RunHTTP(cmd.Context(), addr)
	}

	return mcpServer.Run(cmd.Context())
}
