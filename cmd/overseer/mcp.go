package main

import (
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the controller as an MCP server so AI agents can drive the game
through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sess, ctx, cleanup, err := startSession(cmd)
		if err != nil {
			log.Fatalf("Error initializing session: %v", err)
		}
		defer cleanup()

		srv := mcp.NewServer(sess)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			sess.Logger.Info("starting MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				sess.Logger.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			sess.Logger.Info("starting MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					sess.Logger.Error("MCP server execution failed", "err", err)
					os.Exit(1)
				}
			}
			sess.Logger.Info("MCP server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8991, "Port to listen on (only for SSE)")
}
