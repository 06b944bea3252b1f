package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/ergoweb/internal/adapters/mcp"
	"github.com/aretw0/ergoweb/internal/config"
	"github.com/aretw0/ergoweb/internal/logging"
	"github.com/aretw0/ergoweb/pkg/domain"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the ErgoWeb studio as an MCP Server.
This allows AI agents (like Claude Desktop) to edit the configuration,
trigger generation, and inspect artifacts as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}

		// Logs must stay off Stdout so they don't corrupt JSON-RPC.
		logger := logging.New(slog.LevelDebug)
		slog.SetDefault(logger)

		studio, err := buildStudio(cfg, logger, domain.LifecycleHooks{})
		if err != nil {
			log.Fatalf("Error initializing ergoweb: %v", err)
		}
		if err := studio.Bootstrap(cmd.Context()); err != nil {
			log.Fatalf("Error restoring persisted configuration: %v", err)
		}

		srv := mcp.NewServer(studio)

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			slog.Info("Starting ErgoWeb MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting ErgoWeb MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				// Ignore server closed error if it was caused by context cancellation
				if err != http.ErrServerClosed {
					slog.Error("MCP Server execution failed", "error", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
