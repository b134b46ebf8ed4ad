package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
)

// Valuer answers value queries for the node's output ports.
type Valuer interface {
	Value(port *Port) any
}

// Initializer runs once a node is attached to a graph and its ports are reconciled.
type Initializer interface {
	Init(node *Node)
}

// ConnectionCreator observes new connections touching the node.
type ConnectionCreator interface {
	OnCreateConnection(output, input *Port)
}

// ConnectionRemover observes connections removed from one of the node's ports.
type ConnectionRemover interface {
	OnRemoveConnection(port *Port)
}

// Node is a typed vertex owning its ports.
type Node struct {
	Name     string
	Position domain.Vec2

	id       NodeID
	nodeType *schema.NodeType
	impl     any
	graph    *Graph
	ports    map[string]*Port
	order    []string
}

func newNode(id NodeID, t *schema.NodeType, impl any) *Node {
	return &Node{
		id:       id,
		nodeType: t,
		impl:     impl,
		ports:    make(map[string]*Port),
	}
}

func (n *Node) ID() NodeID { return n.id }

// Type returns the node type the ports are reconciled against.
func (n *Node) Type() *schema.NodeType { return n.nodeType }

// Impl returns the implementation value, or nil.
func (n *Node) Impl() any { return n.impl }

// Graph returns the owning graph, or nil once the node was removed.
func (n *Node) Graph() *Graph { return n.graph }

func (n *Node) label() string {
	if n.Name != "" {
		return n.Name
	}
	return string(n.id)
}

func (n *Node) String() string { return n.label() }

// --- Enumeration ---

func (n *Node) filter(keep func(*Port) bool) []*Port {
	out := make([]*Port, 0, len(n.order))
	for _, name := range n.order {
		if p := n.ports[name]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Ports returns every port: static ports in schema order, then dynamic ones.
func (n *Node) Ports() []*Port { return n.filter(func(*Port) bool { return true }) }

func (n *Node) Inputs() []*Port { return n.filter((*Port).IsInput) }
func (n *Node) Outputs() []*Port { return n.filter((*Port).IsOutput) }

// DynamicPorts returns the runtime ports, list elements included.
func (n *Node) DynamicPorts() []*Port { return n.filter((*Port).IsDynamic) }

func (n *Node) DynamicInputs() []*Port {
	return n.filter(func(p *Port) bool { return p.IsDynamic() && p.IsInput() })
}

func (n *Node) DynamicOutputs() []*Port {
	return n.filter(func(p *Port) bool { return p.IsDynamic() && p.IsOutput() })
}

// HasPort reports whether the node has a port with the given name.
func (n *Node) HasPort(name string) bool {
	_, ok := n.ports[name]
	return ok
}

// Port returns the port with the given name.
func (n *Node) Port(name string) (*Port, error) {
	p, ok := n.ports[name]
	if !ok {
		return nil, &domain.PortNotFoundError{Node: n.label(), Port: name}
	}
	return p, nil
}

// InputPort returns the named port if it is an input.
func (n *Node) InputPort(name string) (*Port, error) {
	return n.directed(name, domain.Input)
}

// OutputPort returns the named port if it is an output.
func (n *Node) OutputPort(name string) (*Port, error) {
	return n.directed(name, domain.Output)
}

func (n *Node) directed(name string, dir domain.Direction) (*Port, error) {
	p, ok := n.ports[name]
	if !ok || p.direction != dir {
		return nil, &domain.PortNotFoundError{Node: n.label(), Port: name}
	}
	return p, nil
}

// --- Port mapping ---

func (n *Node) attach(p *Port) {
	p.node = n
	n.ports[p.name] = p
	n.order = append(n.order, p.name)
}

// detach removes p from the mapping. Its connections must be cleared first.
func (n *Node) detach(p *Port) {
	delete(n.ports, p.name)
	if i := slices.Index(n.order, p.name); i >= 0 {
		n.order = slices.Delete(n.order, i, i+1)
	}
	p.node = nil
}

// --- Dynamic ports ---

// AddDynamicInput adds a runtime input port. An empty name is replaced by the
// first free "dynamicInput_<n>"; a taken name returns the existing port.
func (n *Node) AddDynamicInput(t types.Type, policy domain.ConnectionPolicy, constraint domain.TypeConstraint, name string) *Port {
	return n.addDynamic(t, domain.Input, policy, constraint, name)
}

// AddDynamicOutput adds a runtime output port, named like AddDynamicInput.
func (n *Node) AddDynamicOutput(t types.Type, policy domain.ConnectionPolicy, constraint domain.TypeConstraint, name string) *Port {
	return n.addDynamic(t, domain.Output, policy, constraint, name)
}

func (n *Node) addDynamic(t types.Type, dir domain.Direction, policy domain.ConnectionPolicy, constraint domain.TypeConstraint, name string) *Port {
	if name == "" {
		name = n.freeName("dynamicInput_")
	} else if existing, ok := n.ports[name]; ok {
		return existing
	}
	p := newPort(name, t, dir, policy, constraint, KindDynamic)
	n.attach(p)
	return p
}

func (n *Node) freeName(prefix string) string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if !n.HasPort(name) {
			return name
		}
	}
}

// RemoveDynamicPort removes a runtime port by name after clearing its connections.
func (n *Node) RemoveDynamicPort(name string) error {
	p, err := n.Port(name)
	if err != nil {
		return err
	}
	return n.RemoveDynamicPortRef(p)
}

// RemoveDynamicPortRef removes a runtime port by reference. Static ports,
// nil and ports of other nodes are refused without any mutation.
func (n *Node) RemoveDynamicPortRef(p *Port) error {
	const op = "remove dynamic port"
	switch {
	case p == nil:
		return &domain.InvalidPortOperationError{Op: op, Reason: "nil port"}
	case p.node != n:
		return &domain.InvalidPortOperationError{Op: op, Port: p.name, Reason: "port does not belong to this node"}
	case p.IsStatic():
		return &domain.InvalidPortOperationError{Op: op, Port: p.name, Reason: "port is static"}
	}
	p.ClearConnections()
	n.detach(p)
	return nil
}

// ClearDynamicPorts removes every runtime port.
func (n *Node) ClearDynamicPorts() {
	for _, p := range n.DynamicPorts() {
		_ = n.RemoveDynamicPortRef(p)
	}
}

// --- Connections ---

// ClearConnections disconnects every port of the node.
func (n *Node) ClearConnections() {
	for _, p := range n.Ports() {
		p.ClearConnections()
	}
}

// VerifyConnections prunes invalid connection entries on every port.
func (n *Node) VerifyConnections() int {
	pruned := 0
	for _, p := range n.Ports() {
		pruned += p.VerifyConnections()
	}
	return pruned
}

// SwapConnections exchanges the connections of two ports of this node.
func (n *Node) SwapConnections(a, b string) error {
	pa, err := n.Port(a)
	if err != nil {
		return err
	}
	pb, err := n.Port(b)
	if err != nil {
		return err
	}
	return pa.SwapConnections(pb)
}

// --- Implementation capabilities ---

// Value asks the implementation for the value of one of its output ports.
// Nodes without a Valuer implementation yield nil.
func (n *Node) Value(port *Port) any {
	if v, ok := n.impl.(Valuer); ok {
		return v.Value(port)
	}
	return nil
}

func (n *Node) init() {
	if i, ok := n.impl.(Initializer); ok {
		i.Init(n)
	}
}

func (n *Node) notifyCreated(output, input *Port) {
	if h, ok := n.impl.(ConnectionCreator); ok {
		h.OnCreateConnection(output, input)
	}
}

func (n *Node) notifyRemoved(p *Port) {
	if h, ok := n.impl.(ConnectionRemover); ok {
		h.OnRemoveConnection(p)
	}
}

// --- Schema ---

// UpdatePorts reconciles the node's ports with its type's schema.
func (n *Node) UpdatePorts() (ReconcileReport, error) {
	s, err := schema.Lookup(n.nodeType)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("failed to update ports of %s: %w", n.label(), err)
	}
	report := n.reconcile(s)
	n.emitReconciled(report)
	return report, nil
}

// Retype switches the node to another type and reconciles its ports. A new
// version of the same type name keeps the implementation; any other type gets
// a fresh one from its constructor, initialized once the ports are in place.
func (n *Node) Retype(t *schema.NodeType) (ReconcileReport, error) {
	s, err := schema.Lookup(t)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("failed to retype %s: %w", n.label(), err)
	}
	fresh := n.impl == nil || n.nodeType.Name != t.Name
	n.nodeType = t
	if fresh {
		n.impl = nil
		if t.New != nil {
			n.impl = t.New()
		}
	}
	report := n.reconcile(s)
	if fresh {
		n.init()
	}
	n.emitReconciled(report)
	return report, nil
}

func (n *Node) emitReconciled(r ReconcileReport) {
	if n.graph == nil || r.Empty() {
		return
	}
	n.graph.emitReconciled(n, r)
}
