package graph_test

import (
	"strings"
	"testing"

	presentation "github.com/aretw0/portgraph/internal/presentation/graph"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	g, err := library.MathTemplate()
	require.NoError(t, err)

	out := presentation.GenerateMermaid(g, nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name:     "Header",
			contains: []string{"flowchart LR\n"},
		},
		{
			name: "Node Shapes",
			contains: []string{
				`add["Math <br/> <small>MathNode</small>"]`,
				`show[/"Display Value <br/> <small>DisplayValue</small>"/]`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				`add -- "result → a" --> mul`,
				`mul -- "result → value" --> show`,
				`mul -- "result → x" --> vec`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, expected := range tt.contains {
				assert.Contains(t, out, expected)
			}
		})
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_SourcesAndReroutes(t *testing.T) {
	g := graph.New("reroute")
	src, err := g.AddNodeWithID("src-1", library.PulseType, domain.Vec2{})
	require.NoError(t, err)
	src.Name = `say "hi"`
	_, err = g.AddNodeWithID("lamp", library.NotType, domain.Vec2{})
	require.NoError(t, err)

	out, err := src.OutputPort("output")
	require.NoError(t, err)
	lamp, err := g.Port(graph.PortRef{Node: "lamp", Port: "input"})
	require.NoError(t, err)
	require.NoError(t, out.Connect(lamp))
	require.NoError(t, out.InsertReroutePoint(0, 0, domain.Vec2{X: 10, Y: 10}))

	mermaid := presentation.GenerateMermaid(g, nil)
	assert.Contains(t, mermaid, `src_1(["say 'hi' <br/> <small>PulseNode</small>"])`)
	assert.Contains(t, mermaid, `src_1 -- "output → input" .-> lamp`)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g, err := library.LogicTemplate()
	require.NoError(t, err)

	out := presentation.GenerateMermaid(g, &presentation.GraphOverlay{
		HighlightedNodes: []string{"not", "and", "not"},
		SelectedNode:     "toggle",
	})

	assert.Contains(t, out, "classDef highlighted")
	assert.Equal(t, 1, strings.Count(out, "class not highlighted;"))
	assert.Contains(t, out, "class and highlighted;")
	assert.Contains(t, out, "class toggle selected;")
}
