package dsl

import (
	"fmt"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/schema"
)

// Builder manages the graph construction.
type Builder struct {
	name  string
	opts  []graph.Option
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new graph builder.
func New(name string, opts ...graph.Option) *Builder {
	return &Builder{
		name:  name,
		opts:  opts,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add declares a node with the given ID.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string, t *schema.NodeType) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{id: id, nodeType: t, builder: b}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build creates the graph, adding nodes in declaration order before
// connecting the declared links.
func (b *Builder) Build() (*graph.Graph, error) {
	g := graph.New(b.name, b.opts...)
	for _, id := range b.order {
		nb := b.nodes[id]
		n, err := g.AddNodeWithID(graph.NodeID(id), nb.nodeType, nb.position)
		if err != nil {
			return nil, fmt.Errorf("failed to build node %s: %w", id, err)
		}
		if nb.name != "" {
			n.Name = nb.name
		}
		for _, fn := range nb.configure {
			fn(n)
		}
	}

	for _, id := range b.order {
		for _, l := range b.nodes[id].links {
			from := graph.PortRef{Node: graph.NodeID(id), Port: l.port}
			to := graph.PortRef{Node: graph.NodeID(l.target), Port: l.targetPort}
			if err := g.Connect(from, to); err != nil {
				return nil, fmt.Errorf("failed to link %s to %s: %w", from, to, err)
			}
		}
	}
	return g, nil
}

type linkDecl struct {
	port       string
	target     string
	targetPort string
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	id        string
	nodeType  *schema.NodeType
	name      string
	position  domain.Vec2
	links     []linkDecl
	configure []func(*graph.Node)
	builder   *Builder
}

// Name overrides the default node name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.name = name
	return n
}

// At sets the node position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.position = domain.Vec2{X: x, Y: y}
	return n
}

// Link connects one of this node's ports to a port of another node.
func (n *NodeBuilder) Link(port, target, targetPort string) *NodeBuilder {
	n.links = append(n.links, linkDecl{port: port, target: target, targetPort: targetPort})
	return n
}

// Configure runs fn on the created node, e.g. to add dynamic ports or set
// implementation state.
func (n *NodeBuilder) Configure(fn func(*graph.Node)) *NodeBuilder {
	n.configure = append(n.configure, fn)
	return n
}

// ListPorts appends count elements to the dynamic list backed by port.
func (n *NodeBuilder) ListPorts(port string, count int) *NodeBuilder {
	return n.Configure(func(node *graph.Node) {
		for i := 0; i < count; i++ {
			_, _ = node.AddListPort(port)
		}
	})
}

// Add declares another node on the same builder.
func (n *NodeBuilder) Add(id string, t *schema.NodeType) *NodeBuilder {
	return n.builder.Add(id, t)
}
