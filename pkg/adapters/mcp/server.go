package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/portgraph/internal/dto"
	"github.com/aretw0/portgraph/internal/logging"
	presentation "github.com/aretw0/portgraph/internal/presentation/graph"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Catalog lists the node types the server advertises.
type Catalog interface {
	Types() []*schema.NodeType
}

// TypesResponse is the result of list_node_types.
type TypesResponse struct {
	Types []dto.NodeTypeInfo `json:"types" jsonschema_description:"Registered node types with their static ports"`
}

// GraphsResponse is the result of list_graphs.
type GraphsResponse struct {
	Graphs []dto.GraphSummary `json:"graphs" jsonschema_description:"Stored graphs"`
}

// EditResponse is the result of editing tools without a richer payload.
type EditResponse struct {
	Graph   string `json:"graph"`
	Message string `json:"message"`
}

// GraphArgs selects a graph.
type GraphArgs struct {
	GraphID string `json:"graph_id"`
	Format  string `json:"format,omitempty"`
}

// AddNodeArgs are the arguments of add_node.
type AddNodeArgs struct {
	GraphID string  `json:"graph_id"`
	Type    string  `json:"type"`
	NodeID  string  `json:"node_id,omitempty"`
	Name    string  `json:"name,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

// NodeArgs select a node of a graph.
type NodeArgs struct {
	GraphID string `json:"graph_id"`
	NodeID  string `json:"node_id"`
}

// LinkArgs name both ends of a connection.
type LinkArgs struct {
	GraphID  string `json:"graph_id"`
	FromNode string `json:"from_node"`
	FromPort string `json:"from_port"`
	ToNode   string `json:"to_node"`
	ToPort   string `json:"to_port"`
}

func (a LinkArgs) link() workspace.Link {
	return workspace.Link{
		From: graph.PortRef{Node: graph.NodeID(a.FromNode), Port: a.FromPort},
		To:   graph.PortRef{Node: graph.NodeID(a.ToNode), Port: a.ToPort},
	}
}

// Server exposes a workspace as an MCP Server.
type Server struct {
	workspace *workspace.Manager
	catalog   Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(ws *workspace.Manager, catalog Catalog, version string, opts ...Option) *Server {
	s := &Server{
		workspace: ws,
		catalog:   catalog,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("portgraph-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE and stops it when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	graphID := mcp.WithString("graph_id", mcp.Required(), mcp.Description("ID of the stored graph"))

	// TOOL: list_node_types
	s.mcpServer.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the registered node types and their ports."),
		mcp.WithOutputSchema[TypesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListTypes))

	// TOOL: list_graphs
	s.mcpServer.AddTool(mcp.NewTool("list_graphs",
		mcp.WithDescription("List the stored graphs with their size."),
		mcp.WithOutputSchema[GraphsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListGraphs))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full document of a graph."),
		graphID,
		mcp.WithString("format", mcp.Description("json (default) or yaml"), mcp.Enum("json", "yaml")),
	), s.textTool(s.getGraph))

	// TOOL: render_mermaid
	s.mcpServer.AddTool(mcp.NewTool("render_mermaid",
		mcp.WithDescription("Render a graph as a Mermaid flowchart."),
		graphID,
	), s.textTool(s.renderMermaid))

	// TOOL: add_node
	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node of a registered type to a graph."),
		graphID,
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type name, see list_node_types")),
		mcp.WithString("node_id", mcp.Description("ID for the new node (generated if omitted)")),
		mcp.WithString("name", mcp.Description("Display name (derived from the type if omitted)")),
		mcp.WithNumber("x", mcp.Description("Canvas position X")),
		mcp.WithNumber("y", mcp.Description("Canvas position Y")),
		mcp.WithOutputSchema[codec.NodeDocument](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	// TOOL: remove_node
	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and all of its connections."),
		graphID,
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to remove")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveNode))

	linkParams := []mcp.ToolOption{
		graphID,
		mcp.WithString("from_node", mcp.Required(), mcp.Description("Node of the first port")),
		mcp.WithString("from_port", mcp.Required(), mcp.Description("Name of the first port")),
		mcp.WithString("to_node", mcp.Required(), mcp.Description("Node of the second port")),
		mcp.WithString("to_port", mcp.Required(), mcp.Description("Name of the second port")),
		mcp.WithOutputSchema[EditResponse](),
	}

	// TOOL: connect_ports
	s.mcpServer.AddTool(mcp.NewTool("connect_ports",
		append([]mcp.ToolOption{mcp.WithDescription("Connect an output port to an input port, in either order.")}, linkParams...)...,
	), mcp.NewStructuredToolHandler(s.handleConnect))

	// TOOL: disconnect_ports
	s.mcpServer.AddTool(mcp.NewTool("disconnect_ports",
		append([]mcp.ToolOption{mcp.WithDescription("Remove the connection between two ports.")}, linkParams...)...,
	), mcp.NewStructuredToolHandler(s.handleDisconnect))
}

// textTool adapts a handler returning plain text. Failures become tool errors.
func (s *Server) textTool(fn func(ctx context.Context, args GraphArgs) (string, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GraphArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		text, err := fn(ctx, args)
		if err != nil {
			s.logger.Warn("MCP tool failed", "tool", request.Params.Name, "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// Handler methods for structured tools

func (s *Server) handleListTypes(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TypesResponse, error) {
	return TypesResponse{Types: dto.DescribeTypes(s.catalog.Types())}, nil
}

func (s *Server) handleListGraphs(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (GraphsResponse, error) {
	ids, err := s.workspace.List(ctx)
	if err != nil {
		return GraphsResponse{}, fmt.Errorf("list failed: %w", err)
	}
	resp := GraphsResponse{Graphs: make([]dto.GraphSummary, 0, len(ids))}
	for _, id := range ids {
		doc, err := s.workspace.Document(ctx, id)
		if errors.Is(err, domain.ErrGraphNotFound) {
			// Expired or deleted since List.
			continue
		}
		if err != nil {
			return GraphsResponse{}, fmt.Errorf("failed to load graph %s: %w", id, err)
		}
		resp.Graphs = append(resp.Graphs, dto.GraphSummary{
			ID:          id,
			Name:        doc.Name,
			Nodes:       len(doc.Nodes),
			Connections: doc.Connections(),
		})
	}
	return resp, nil
}

func (s *Server) getGraph(ctx context.Context, args GraphArgs) (string, error) {
	doc, err := s.workspace.Document(ctx, args.GraphID)
	if err != nil {
		return "", err
	}
	format := codec.FormatJSON
	if args.Format != "" {
		if format, err = codec.ParseFormat(args.Format); err != nil {
			return "", err
		}
	}
	data, err := codec.Marshal(doc, format)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) renderMermaid(ctx context.Context, args GraphArgs) (string, error) {
	g, err := s.workspace.Open(ctx, args.GraphID)
	if err != nil {
		return "", err
	}
	return presentation.GenerateMermaid(g, nil), nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args AddNodeArgs) (codec.NodeDocument, error) {
	nd, err := s.workspace.AddNode(ctx, args.GraphID, workspace.NodeSpec{
		ID:       args.NodeID,
		Type:     args.Type,
		Name:     args.Name,
		Position: domain.Vec2{X: args.X, Y: args.Y},
	})
	if err != nil {
		return codec.NodeDocument{}, fmt.Errorf("add node failed: %w", err)
	}
	return *nd, nil
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (EditResponse, error) {
	if err := s.workspace.RemoveNode(ctx, args.GraphID, args.NodeID); err != nil {
		return EditResponse{}, fmt.Errorf("remove node failed: %w", err)
	}
	return EditResponse{Graph: args.GraphID, Message: "removed " + args.NodeID}, nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args LinkArgs) (EditResponse, error) {
	link := args.link()
	if err := s.workspace.Connect(ctx, args.GraphID, link); err != nil {
		return EditResponse{}, fmt.Errorf("connect failed: %w", err)
	}
	return EditResponse{Graph: args.GraphID, Message: fmt.Sprintf("connected %s to %s", link.From, link.To)}, nil
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest, args LinkArgs) (EditResponse, error) {
	link := args.link()
	if err := s.workspace.Disconnect(ctx, args.GraphID, link); err != nil {
		return EditResponse{}, fmt.Errorf("disconnect failed: %w", err)
	}
	return EditResponse{Graph: args.GraphID, Message: fmt.Sprintf("disconnected %s from %s", link.From, link.To)}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: portgraph://types
	s.mcpServer.AddResource(mcp.NewResource("portgraph://types", "Registered Node Types",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp, _ := s.handleListTypes(ctx, mcp.CallToolRequest{}, nil)
		data, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to encode types: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "portgraph://types",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
