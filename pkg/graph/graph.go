package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
)

// Option configures a Graph.
type Option func(*Graph)

// WithHooks attaches observers. Multiple calls merge.
func WithHooks(h domain.GraphHooks) Option {
	return func(g *Graph) {
		g.hooks = g.hooks.Merge(h)
	}
}

// WithIDGenerator replaces the default UUID node IDs.
func WithIDGenerator(next func() NodeID) Option {
	return func(g *Graph) {
		g.newID = next
	}
}

// Cloner lets implementations with unexported state control duplication.
// Implementations without it are deep-copied field by field.
type Cloner interface {
	Clone() any
}

// Graph owns an ordered sequence of nodes.
type Graph struct {
	Name string

	nodes []*Node
	index map[NodeID]*Node
	hooks domain.GraphHooks
	newID func() NodeID
}

// New creates an empty graph.
func New(name string, opts ...Option) *Graph {
	g := &Graph{
		Name:  name,
		index: make(map[NodeID]*Node),
		newID: func() NodeID { return NodeID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Hooks returns the attached observers.
func (g *Graph) Hooks() domain.GraphHooks { return g.hooks }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (*Node, error) {
	n, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// Contains reports whether n is part of this graph.
func (g *Graph) Contains(n *Node) bool {
	return n != nil && n.graph == g && g.index[n.id] == n
}

// Port resolves a handle, returning an error naming what is missing.
func (g *Graph) Port(ref PortRef) (*Port, error) {
	n, err := g.Node(ref.Node)
	if err != nil {
		return nil, err
	}
	return n.Port(ref.Port)
}

func (g *Graph) resolve(ref PortRef) *Port {
	n, ok := g.index[ref.Node]
	if !ok {
		return nil
	}
	return n.ports[ref.Port]
}

func (g *Graph) nextID() NodeID {
	for {
		id := g.newID()
		if _, taken := g.index[id]; !taken {
			return id
		}
	}
}

func (g *Graph) insert(n *Node) {
	n.graph = g
	g.nodes = append(g.nodes, n)
	g.index[n.id] = n
}

// AddNode creates a node of type t at pos. The node's ports are reconciled
// with the type's schema before its implementation is initialized; a node
// left unnamed gets DefaultName of its type.
func (g *Graph) AddNode(t *schema.NodeType, pos domain.Vec2) (*Node, error) {
	return g.addNode(g.nextID(), t, pos)
}

// AddNodeWithID is AddNode with a caller-chosen ID, which must be unused.
func (g *Graph) AddNodeWithID(id NodeID, t *schema.NodeType, pos domain.Vec2) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("failed to add node: empty id")
	}
	if _, taken := g.index[id]; taken {
		return nil, fmt.Errorf("failed to add node: id %s already in use", id)
	}
	return g.addNode(id, t, pos)
}

func (g *Graph) addNode(id NodeID, t *schema.NodeType, pos domain.Vec2) (*Node, error) {
	s, err := schema.Lookup(t)
	if err != nil {
		return nil, fmt.Errorf("failed to add node: %w", err)
	}

	var impl any
	if t.New != nil {
		impl = t.New()
	}
	n := newNode(id, t, impl)
	n.Position = pos
	n.graph = g
	n.reconcile(s)
	g.insert(n)
	n.init()
	if n.Name == "" {
		n.Name = DefaultName(t.Name)
	}

	g.emitNode(g.hooks.OnNodeAdded, n)
	return n, nil
}

// CopyNode duplicates original into this graph: name, position, a deep copy of
// the implementation and every port, but no connections.
func (g *Graph) CopyNode(original *Node) (*Node, error) {
	if original == nil {
		return nil, &domain.InvalidPortOperationError{Op: "copy node", Reason: "nil node"}
	}
	s, err := schema.Lookup(original.nodeType)
	if err != nil {
		return nil, fmt.Errorf("failed to copy node: %w", err)
	}

	n := newNode(g.nextID(), original.nodeType, cloneImpl(original.impl))
	n.Name = original.Name
	n.Position = original.Position
	n.graph = g
	for _, p := range original.Ports() {
		n.attach(p.clone())
	}
	n.reconcile(s)
	g.insert(n)
	n.init()

	g.emitNode(g.hooks.OnNodeAdded, n)
	return n, nil
}

func cloneImpl(impl any) any {
	if impl == nil {
		return nil
	}
	if c, ok := impl.(Cloner); ok {
		return c.Clone()
	}
	return deepcopy.Copy(impl)
}

// RemoveNode severs every connection of n and removes it from the graph.
// Removing a node that is not part of the graph is a no-op.
func (g *Graph) RemoveNode(n *Node) {
	if !g.Contains(n) {
		return
	}
	n.ClearConnections()

	i := slices.Index(g.nodes, n)
	g.nodes = slices.Delete(g.nodes, i, i+1)
	delete(g.index, n.id)
	n.graph = nil

	g.emitNode(g.hooks.OnNodeRemoved, n)
}

// Clear removes every node.
func (g *Graph) Clear() {
	for _, n := range g.Nodes() {
		g.RemoveNode(n)
	}
}

// Connect connects two ports by handle.
func (g *Graph) Connect(a, b PortRef) error {
	pa, err := g.Port(a)
	if err != nil {
		return err
	}
	pb, err := g.Port(b)
	if err != nil {
		return err
	}
	return pa.Connect(pb)
}

// Disconnect disconnects two ports by handle.
func (g *Graph) Disconnect(a, b PortRef) error {
	pa, err := g.Port(a)
	if err != nil {
		return err
	}
	pb, err := g.Port(b)
	if err != nil {
		return err
	}
	pa.Disconnect(pb)
	return nil
}

// VerifyConnections prunes invalid connection entries on every node.
func (g *Graph) VerifyConnections() int {
	pruned := 0
	for _, n := range g.nodes {
		pruned += n.VerifyConnections()
	}
	return pruned
}

// UpdatePorts reconciles every node and returns the reports that changed something.
func (g *Graph) UpdatePorts() (map[NodeID]ReconcileReport, error) {
	reports := make(map[NodeID]ReconcileReport)
	for _, n := range g.Nodes() {
		r, err := n.UpdatePorts()
		if err != nil {
			return reports, err
		}
		if !r.Empty() {
			reports[n.id] = r
		}
	}
	return reports, nil
}

// Rebind re-resolves every node's type by name and reconciles the node
// against it. Used after node type definitions were reloaded.
func (g *Graph) Rebind(resolve func(name string) (*schema.NodeType, error)) (map[NodeID]ReconcileReport, error) {
	reports := make(map[NodeID]ReconcileReport)
	for _, n := range g.Nodes() {
		t, err := resolve(n.nodeType.Name)
		if err != nil {
			return reports, fmt.Errorf("failed to rebind %s: %w", n.label(), err)
		}
		r, err := n.Retype(t)
		if err != nil {
			return reports, err
		}
		if !r.Empty() {
			reports[n.id] = r
		}
	}
	return reports, nil
}

// Edge is one connection seen from its output side.
type Edge struct {
	From    PortRef
	To      PortRef
	Reroute []domain.Vec2
}

// Edges lists every connection once, in node and port order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, n := range g.nodes {
		for _, p := range n.Outputs() {
			for i, c := range p.connections {
				edges = append(edges, Edge{
					From:    p.Ref(),
					To:      c.target,
					Reroute: slices.Clone(p.connections[i].reroute),
				})
			}
		}
	}
	return edges
}

// Copy duplicates the whole graph. Node IDs are kept, so every connection
// handle stays valid inside the copy.
func (g *Graph) Copy() *Graph {
	c := &Graph{
		Name:  g.Name,
		index: make(map[NodeID]*Node, len(g.nodes)),
		hooks: g.hooks,
		newID: g.newID,
	}
	for _, n := range g.nodes {
		cn := newNode(n.id, n.nodeType, cloneImpl(n.impl))
		cn.Name = n.Name
		cn.Position = n.Position
		for _, p := range n.Ports() {
			cp := p.clone()
			for _, e := range p.connections {
				cp.connections = append(cp.connections, &connection{target: e.target, reroute: slices.Clone(e.reroute)})
			}
			cn.attach(cp)
		}
		c.insert(cn)
	}
	return c
}

// --- Hooks ---

func (g *Graph) emitNode(fn func(*domain.NodeEvent), n *Node) {
	if fn == nil {
		return
	}
	fn(&domain.NodeEvent{Graph: g.Name, NodeID: string(n.id), NodeType: n.nodeType.Name, NodeName: n.Name})
}

func connectionEvent(g *Graph, out, in *Port) *domain.ConnectionEvent {
	e := &domain.ConnectionEvent{Graph: g.Name}
	if out != nil {
		e.OutputNode, e.OutputPort = string(out.Ref().Node), out.name
	}
	if in != nil {
		e.InputNode, e.InputPort = string(in.Ref().Node), in.name
	}
	return e
}

func (g *Graph) emitConnected(out, in *Port) {
	if g.hooks.OnConnected != nil {
		g.hooks.OnConnected(connectionEvent(g, out, in))
	}
}

func (g *Graph) emitDisconnected(out, in *Port) {
	if g.hooks.OnDisconnected != nil {
		g.hooks.OnDisconnected(connectionEvent(g, out, in))
	}
}

func (g *Graph) emitRejected(p, other *Port, err error) {
	if g.hooks.OnConnectionReject == nil {
		return
	}
	out, in := p, other
	if other != nil {
		out, in = orient(p, other)
	}
	e := connectionEvent(g, out, in)
	e.Err = err
	g.hooks.OnConnectionReject(e)
}

func (g *Graph) emitReconciled(n *Node, r ReconcileReport) {
	if g.hooks.OnReconciled == nil {
		return
	}
	g.hooks.OnReconciled(&domain.ReconcileEvent{
		Graph:       g.Name,
		NodeID:      string(n.id),
		NodeType:    n.nodeType.Name,
		Added:       r.Added,
		Removed:     r.Removed,
		Retyped:     r.Retyped,
		Reconnected: r.Reconnected,
		Dropped:     r.Dropped,
	})
}
