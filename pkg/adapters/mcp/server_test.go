package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/portgraph/pkg/adapters/memory"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/library"
	"github.com/aretw0/portgraph/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, context.Context) {
	t.Helper()
	reg := library.NewRegistry()
	ws := workspace.NewManager(memory.NewStore(), reg)
	ctx := context.Background()

	g, err := library.MathTemplate()
	require.NoError(t, err)
	require.NoError(t, ws.Create(ctx, "calc", g))

	return NewServer(ws, reg, "test"), ctx
}

func TestListTools(t *testing.T) {
	s, ctx := newTestServer(t)

	types, err := s.handleListTypes(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, types.Types)

	graphs, err := s.handleListGraphs(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, graphs.Graphs, 1)
	assert.Equal(t, "calc", graphs.Graphs[0].ID)
	assert.Equal(t, 4, graphs.Graphs[0].Nodes)
	assert.Equal(t, 3, graphs.Graphs[0].Connections)
}

func TestGetGraph(t *testing.T) {
	s, ctx := newTestServer(t)

	text, err := s.getGraph(ctx, GraphArgs{GraphID: "calc"})
	require.NoError(t, err)
	assert.Contains(t, text, `"name": "math"`)

	text, err = s.getGraph(ctx, GraphArgs{GraphID: "calc", Format: "yaml"})
	require.NoError(t, err)
	assert.Contains(t, text, "name: math")

	_, err = s.getGraph(ctx, GraphArgs{GraphID: "nope"})
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)

	mermaid, err := s.renderMermaid(ctx, GraphArgs{GraphID: "calc"})
	require.NoError(t, err)
	assert.Contains(t, mermaid, "flowchart LR")
}

func TestEditTools(t *testing.T) {
	s, ctx := newTestServer(t)

	nd, err := s.handleAddNode(ctx, mcp.CallToolRequest{}, AddNodeArgs{GraphID: "calc", Type: "DisplayValue", NodeID: "out2", X: 3})
	require.NoError(t, err)
	assert.Equal(t, "out2", nd.ID)
	assert.Equal(t, 3.0, nd.Position.X)

	link := LinkArgs{GraphID: "calc", FromNode: "add", FromPort: "result", ToNode: "out2", ToPort: "value"}
	resp, err := s.handleConnect(ctx, mcp.CallToolRequest{}, link)
	require.NoError(t, err)
	assert.Equal(t, "connected add.result to out2.value", resp.Message)

	_, err = s.handleDisconnect(ctx, mcp.CallToolRequest{}, link)
	require.NoError(t, err)

	_, err = s.handleConnect(ctx, mcp.CallToolRequest{}, LinkArgs{GraphID: "calc", FromNode: "add", FromPort: "a", ToNode: "out2", ToPort: "value"})
	assert.ErrorIs(t, err, domain.ErrConnectionRejected)

	_, err = s.handleRemoveNode(ctx, mcp.CallToolRequest{}, NodeArgs{GraphID: "calc", NodeID: "out2"})
	require.NoError(t, err)

	_, err = s.handleAddNode(ctx, mcp.CallToolRequest{}, AddNodeArgs{GraphID: "calc", Type: "Missing"})
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
}

func TestTextToolReportsErrors(t *testing.T) {
	s, ctx := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_graph"
	req.Params.Arguments = map[string]any{"graph_id": "nope"}

	result, err := s.textTool(s.getGraph)(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
