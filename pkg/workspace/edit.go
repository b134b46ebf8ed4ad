package workspace

import (
	"context"
	"fmt"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
)

// NodeSpec describes a node to add. An empty ID is generated.
type NodeSpec struct {
	ID       string      `json:"id,omitempty"`
	Type     string      `json:"type" validate:"required"`
	Name     string      `json:"name,omitempty"`
	Position domain.Vec2 `json:"position"`
}

// PortSpec describes a dynamic port to add. When List is set the port is
// appended to the list backed by that static port and the other fields are
// ignored.
type PortSpec struct {
	Name       string `json:"name,omitempty"`
	Type       string `json:"type,omitempty" validate:"required_without=List"`
	Direction  string `json:"direction,omitempty" validate:"omitempty,oneof=input output"`
	Connection string `json:"connection,omitempty" validate:"omitempty,oneof=multiple single"`
	Constraint string `json:"constraint,omitempty" validate:"omitempty,oneof=none strict inherited inherited_inverse"`
	List       string `json:"list,omitempty"`
}

// Link identifies a connection. Reroute is only used when connecting.
type Link struct {
	From    graph.PortRef `json:"from"`
	To      graph.PortRef `json:"to"`
	Reroute []domain.Vec2 `json:"reroute,omitempty"`
}

// edit runs fn under Update and returns the stored form of the result node.
func (m *Manager) edit(ctx context.Context, graphID string, fn func(*graph.Graph) (graph.NodeID, error)) (*codec.NodeDocument, error) {
	var doc *codec.GraphDocument
	var id graph.NodeID
	err := m.Update(ctx, graphID, func(g *graph.Graph) error {
		var err error
		if id, err = fn(g); err != nil {
			return err
		}
		doc, err = codec.Encode(g)
		return err
	})
	if err != nil {
		return nil, err
	}
	nd, ok := doc.Node(string(id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return nd, nil
}

// AddNode adds a node of a registered type.
func (m *Manager) AddNode(ctx context.Context, graphID string, spec NodeSpec) (*codec.NodeDocument, error) {
	t, err := m.resolver.NodeType(spec.Type)
	if err != nil {
		return nil, err
	}
	return m.edit(ctx, graphID, func(g *graph.Graph) (graph.NodeID, error) {
		var n *graph.Node
		var err error
		if spec.ID == "" {
			n, err = g.AddNode(t, spec.Position)
		} else {
			n, err = g.AddNodeWithID(graph.NodeID(spec.ID), t, spec.Position)
		}
		if err != nil {
			return "", err
		}
		if spec.Name != "" {
			n.Name = spec.Name
		}
		return n.ID(), nil
	})
}

// CopyNode duplicates a node without its connections.
func (m *Manager) CopyNode(ctx context.Context, graphID, nodeID string) (*codec.NodeDocument, error) {
	return m.edit(ctx, graphID, func(g *graph.Graph) (graph.NodeID, error) {
		original, err := g.Node(graph.NodeID(nodeID))
		if err != nil {
			return "", err
		}
		n, err := g.CopyNode(original)
		if err != nil {
			return "", err
		}
		return n.ID(), nil
	})
}

// RemoveNode removes a node and every connection touching it.
func (m *Manager) RemoveNode(ctx context.Context, graphID, nodeID string) error {
	return m.Update(ctx, graphID, func(g *graph.Graph) error {
		n, err := g.Node(graph.NodeID(nodeID))
		if err != nil {
			return err
		}
		g.RemoveNode(n)
		return nil
	})
}

// AddPort adds a dynamic port or a list element and returns the node.
func (m *Manager) AddPort(ctx context.Context, graphID, nodeID string, spec PortSpec) (*codec.NodeDocument, error) {
	return m.edit(ctx, graphID, func(g *graph.Graph) (graph.NodeID, error) {
		n, err := g.Node(graph.NodeID(nodeID))
		if err != nil {
			return "", err
		}
		if spec.List != "" {
			_, err := n.AddListPort(spec.List)
			return n.ID(), err
		}

		t, err := m.resolver.ValueType(spec.Type)
		if err != nil {
			return "", err
		}
		dir, err := domain.ParseDirection(spec.Direction)
		if err != nil {
			return "", err
		}
		policy, err := domain.ParseConnectionPolicy(spec.Connection)
		if err != nil {
			return "", err
		}
		constraint, err := domain.ParseTypeConstraint(spec.Constraint)
		if err != nil {
			return "", err
		}
		if dir == domain.Input {
			n.AddDynamicInput(t, policy, constraint, spec.Name)
		} else {
			n.AddDynamicOutput(t, policy, constraint, spec.Name)
		}
		return n.ID(), nil
	})
}

// RemovePort removes a dynamic port. List elements are removed through
// their list so the remaining names stay contiguous.
func (m *Manager) RemovePort(ctx context.Context, graphID, nodeID, port string) error {
	return m.Update(ctx, graphID, func(g *graph.Graph) error {
		n, err := g.Node(graph.NodeID(nodeID))
		if err != nil {
			return err
		}
		p, err := n.Port(port)
		if err != nil {
			return err
		}
		if backing, index, ok := p.ListElement(); ok {
			for pos, el := range n.ListPorts(backing) {
				if _, i, _ := el.ListElement(); i == index {
					return n.RemoveListPort(backing, pos)
				}
			}
		}
		return n.RemoveDynamicPortRef(p)
	})
}

// Connect connects two ports and sets the waypoints of the new connection.
func (m *Manager) Connect(ctx context.Context, graphID string, link Link) error {
	return m.Update(ctx, graphID, func(g *graph.Graph) error {
		if err := g.Connect(link.From, link.To); err != nil {
			return err
		}
		if len(link.Reroute) == 0 {
			return nil
		}
		from, _ := g.Port(link.From)
		to, _ := g.Port(link.To)
		if from.IsInput() {
			from, to = to, from
		}
		return from.SetReroutePoints(from.ConnectionIndex(to), link.Reroute)
	})
}

// Disconnect removes the connection between two ports.
func (m *Manager) Disconnect(ctx context.Context, graphID string, link Link) error {
	return m.Update(ctx, graphID, func(g *graph.Graph) error {
		return g.Disconnect(link.From, link.To)
	})
}
