package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/library"
	"github.com/aretw0/portgraph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	g, err := library.MathTemplate(graph.WithHooks(m.Hooks()))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Nodes.WithLabelValues("added", "MathNode")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Connections.WithLabelValues("connected")))

	// Input to input is refused.
	err = g.Connect(
		graph.PortRef{Node: "show", Port: "value"},
		graph.PortRef{Node: "mul", Port: "a"},
	)
	require.ErrorIs(t, err, domain.ErrConnectionRejected)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues(string(domain.RejectSameDirection))))

	show, err := g.Node("show")
	require.NoError(t, err)
	g.RemoveNode(show)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Nodes.WithLabelValues("removed", "DisplayValue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("disconnected")))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g := graph.New("logged", graph.WithHooks(observability.LogHooks(logger)))
	_, err := g.AddNodeWithID("a", library.MathType, domain.Vec2{})
	require.NoError(t, err)
	_, err = g.AddNodeWithID("b", library.DisplayType, domain.Vec2{})
	require.NoError(t, err)
	require.NoError(t, g.Connect(
		graph.PortRef{Node: "a", Port: "result"},
		graph.PortRef{Node: "b", Port: "value"},
	))

	out := buf.String()
	assert.Contains(t, out, `"msg":"node_added"`)
	assert.Contains(t, out, `"node_id":"b"`)
	assert.Contains(t, out, `"msg":"connected"`)
	assert.Contains(t, out, `"output_port":"result"`)
}
