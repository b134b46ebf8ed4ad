package graph

import (
	"fmt"
	"testing"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
	"github.com/stretchr/testify/require"
)

type adderImpl struct {
	A, B float64
}

func (a *adderImpl) Value(p *Port) any {
	n := p.Node()
	return GetInputValue(n, "a", a.A) + GetInputValue(n, "b", a.B)
}

type displayImpl struct {
	created []string
	removed []string
	inits   int
}

func (d *displayImpl) Init(*Node) { d.inits++ }

func (d *displayImpl) OnCreateConnection(output, input *Port) {
	d.created = append(d.created, output.Name()+"->"+input.Name())
}

func (d *displayImpl) OnRemoveConnection(p *Port) {
	d.removed = append(d.removed, p.Name())
}

type constImpl struct {
	V any
}

func (c *constImpl) Value(*Port) any { return c.V }

func newAdderType() *schema.NodeType {
	return &schema.NodeType{
		Name: "AdderNode",
		Fields: []schema.Field{
			{Name: "a", Type: types.Float(), Input: &schema.PortAttr{}},
			{Name: "b", Type: types.Float(), Input: &schema.PortAttr{}},
			{Name: "result", Type: types.Float(), Output: &schema.PortAttr{}},
		},
		New: func() any { return &adderImpl{} },
	}
}

func newDisplayType() *schema.NodeType {
	return &schema.NodeType{
		Name: "Display",
		Fields: []schema.Field{
			{Name: "value", Type: types.Float(), Input: &schema.PortAttr{Connection: domain.Single}},
		},
		New: func() any { return &displayImpl{} },
	}
}

func newConstType(t types.Type, constraint domain.TypeConstraint) *schema.NodeType {
	return &schema.NodeType{
		Name: "Const" + t.Name(),
		Fields: []schema.Field{
			{Name: "out", Type: t, Output: &schema.PortAttr{Constraint: constraint}},
		},
		New: func() any { return &constImpl{} },
	}
}

func newSinkType(t types.Type, policy domain.ConnectionPolicy, constraint domain.TypeConstraint) *schema.NodeType {
	return &schema.NodeType{
		Name: "Sink" + t.Name(),
		Fields: []schema.Field{
			{Name: "in", Type: t, Input: &schema.PortAttr{Connection: policy, Constraint: constraint}},
		},
	}
}

func newCollectorType() *schema.NodeType {
	return &schema.NodeType{
		Name: "Collector",
		Fields: []schema.Field{
			{Name: "items", Type: types.Slice(types.Float()), Input: &schema.PortAttr{DynamicList: true}},
			{Name: "total", Type: types.Float(), Output: &schema.PortAttr{}},
		},
	}
}

// sequentialIDs makes node IDs readable in failures.
func sequentialIDs() Option {
	i := 0
	return WithIDGenerator(func() NodeID {
		i++
		return NodeID(fmt.Sprintf("n%d", i))
	})
}

func newTestGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	t.Cleanup(schema.Reset)
	return New("test", append([]Option{sequentialIDs()}, opts...)...)
}

func mustAdd(t *testing.T, g *Graph, typ *schema.NodeType) *Node {
	t.Helper()
	n, err := g.AddNode(typ, domain.Vec2{})
	require.NoError(t, err)
	return n
}

func mustPort(t *testing.T, n *Node, name string) *Port {
	t.Helper()
	p, err := n.Port(name)
	require.NoError(t, err)
	return p
}

func portNames(ports []*Port) []string {
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		out = append(out, p.Name())
	}
	return out
}
