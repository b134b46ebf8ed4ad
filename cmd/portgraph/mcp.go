package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/portgraph"
	"github.com/aretw0/portgraph/pkg/adapters/file"
	loamAdapter "github.com/aretw0/portgraph/pkg/adapters/loam"
	"github.com/aretw0/portgraph/pkg/adapters/mcp"
	"github.com/aretw0/portgraph/pkg/adapters/memory"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/aretw0/portgraph/pkg/workspace"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the graph workspace as an MCP Server.
This allows AI agents to list node types, read graphs and edit them as tools.

Graphs are kept in memory (seeded with the sample graphs) unless --dir names
a file store directory.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		source, _ := cmd.Flags().GetString("source")
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		log.SetOutput(os.Stderr)
		logger, err := newLogger(cmd, "info")
		if err != nil {
			return err
		}
		ed := portgraph.New(portgraph.WithLogger(logger))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var store ports.GraphStore = memory.NewStore()
		if dir != "" {
			store = file.New(dir)
		}
		ws := ed.Workspace(store)

		switch {
		case source != "":
			loader, err := loamAdapter.Open(source)
			if err != nil {
				return err
			}
			if _, err := ed.Import(ctx, loader, ws); err != nil {
				logger.Warn("Some source graphs were not imported", "err", err)
			}
		case dir == "":
			if err := seed(ctx, ed, ws); err != nil {
				return err
			}
		}

		srv := mcp.NewServer(ws, ed.Registry, portgraph.Version, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting portgraph MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting portgraph MCP Server (SSE)", "address", addr)
			if err := srv.ServeSSE(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("dir", "", "File store directory (default: in-memory)")
	mcpCmd.Flags().String("source", "", "Loam directory of graphs to import on start")
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "localhost:8081", "Address to listen on (only for SSE)")
}

// seed stores every sample graph under its template name.
func seed(ctx context.Context, ed *portgraph.Editor, ws *workspace.Manager) error {
	for _, name := range ed.Templates() {
		g, err := ed.Template(name)
		if err != nil {
			return err
		}
		if err := ws.Create(ctx, name, g); err != nil {
			return fmt.Errorf("failed to seed %s: %w", name, err)
		}
	}
	return nil
}
