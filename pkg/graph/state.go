package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
)

// ConnectionState is one recorded connection entry of a port.
type ConnectionState struct {
	Target  PortRef
	Reroute []domain.Vec2
}

// PortState is the durable form of a port.
type PortState struct {
	Name        string
	ValueType   types.Type
	Direction   domain.Direction
	Connection  domain.ConnectionPolicy
	Constraint  domain.TypeConstraint
	Kind        PortKind
	Backing     string
	Index       int
	Connections []ConnectionState
}

// NodeState is the durable form of a node. Impl is shared, not copied.
type NodeState struct {
	ID       NodeID
	Type     *schema.NodeType
	Name     string
	Position domain.Vec2
	Impl     any
	Ports    []PortState
}

// State snapshots the node. Each port lists its own connection entries.
func (n *Node) State() NodeState {
	st := NodeState{
		ID:       n.id,
		Type:     n.nodeType,
		Name:     n.Name,
		Position: n.Position,
		Impl:     n.impl,
	}
	for _, p := range n.Ports() {
		ps := PortState{
			Name:       p.name,
			ValueType:  p.valueType,
			Direction:  p.direction,
			Connection: p.connection,
			Constraint: p.constraint,
			Kind:       p.kind,
			Backing:    p.backing,
			Index:      p.index,
		}
		for _, c := range p.connections {
			ps.Connections = append(ps.Connections, ConnectionState{Target: c.target, Reroute: slices.Clone(c.reroute)})
		}
		st.Ports = append(st.Ports, ps)
	}
	return st
}

// State snapshots every node in order.
func (g *Graph) State() []NodeState {
	out := make([]NodeState, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.State())
	}
	return out
}

// Restore adds previously snapshotted nodes to the graph. Entries are taken
// as recorded, then VerifyConnections repairs asymmetric ones, each node is
// reconciled with its type's current schema and finally initialized. Nothing
// is mutated if a state is invalid.
func (g *Graph) Restore(states []NodeState) ([]*Node, error) {
	schemas := make([]*schema.Schema, len(states))
	seen := make(map[NodeID]bool, len(states))
	for i, st := range states {
		if st.ID == "" {
			return nil, fmt.Errorf("failed to restore node %d: empty id", i)
		}
		if seen[st.ID] || g.index[st.ID] != nil {
			return nil, fmt.Errorf("failed to restore node %s: duplicate id", st.ID)
		}
		seen[st.ID] = true

		s, err := schema.Lookup(st.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to restore node %s: %w", st.ID, err)
		}
		schemas[i] = s

		names := make(map[string]bool, len(st.Ports))
		for _, ps := range st.Ports {
			if ps.Name == "" || names[ps.Name] {
				return nil, fmt.Errorf("failed to restore node %s: invalid or duplicate port name %q", st.ID, ps.Name)
			}
			names[ps.Name] = true
		}
	}

	nodes := make([]*Node, 0, len(states))
	for _, st := range states {
		impl := st.Impl
		if impl == nil && st.Type.New != nil {
			impl = st.Type.New()
		}
		n := newNode(st.ID, st.Type, impl)
		n.Name = st.Name
		n.Position = st.Position
		for _, ps := range st.Ports {
			p := newPort(ps.Name, ps.ValueType, ps.Direction, ps.Connection, ps.Constraint, ps.Kind)
			p.backing = ps.Backing
			p.index = ps.Index
			for _, cs := range ps.Connections {
				p.connections = append(p.connections, &connection{target: cs.Target, reroute: slices.Clone(cs.Reroute)})
			}
			n.attach(p)
		}
		g.insert(n)
		nodes = append(nodes, n)
	}

	for _, n := range nodes {
		n.VerifyConnections()
	}
	for i, n := range nodes {
		n.emitReconciled(n.reconcile(schemas[i]))
	}
	for _, n := range nodes {
		n.init()
		if n.Name == "" {
			n.Name = DefaultName(n.nodeType.Name)
		}
	}
	return nodes, nil
}
