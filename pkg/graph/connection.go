package graph

import (
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/types"
)

// NodeID identifies a node within its graph.
type NodeID string

// PortRef is a non-owning handle to a port: the owning node's ID and the port name.
type PortRef struct {
	Node NodeID `json:"node" yaml:"node"`
	Port string `json:"port" yaml:"port"`
}

func (r PortRef) String() string { return string(r.Node) + "." + r.Port }

// connection is one side of a symmetric connection.
// Reroute waypoints are kept on the output side's entry only.
type connection struct {
	target  PortRef
	reroute []domain.Vec2
}

// link is a resolved partner plus the reroute waypoints of the connection.
type link struct {
	port    *Port
	reroute []domain.Vec2
}

// ConnectionCount returns the number of recorded connections.
func (p *Port) ConnectionCount() int { return len(p.connections) }

// IsConnected reports whether the port has any connection.
func (p *Port) IsConnected() bool { return len(p.connections) > 0 }

// Connection returns the first connected port that still resolves, or nil.
func (p *Port) Connection() *Port {
	for _, c := range p.connections {
		if target := p.resolve(c.target); target != nil {
			return target
		}
	}
	return nil
}

// ConnectionAt returns the port at connection index i.
func (p *Port) ConnectionAt(i int) (*Port, error) {
	if i < 0 || i >= len(p.connections) {
		return nil, domain.ErrIndexOutOfRange
	}
	ref := p.connections[i].target
	target := p.resolve(ref)
	if target == nil {
		return nil, &domain.PortNotFoundError{Node: string(ref.Node), Port: ref.Port}
	}
	return target, nil
}

// Connections returns every connected port that still resolves, in order.
func (p *Port) Connections() []*Port {
	out := make([]*Port, 0, len(p.connections))
	for _, c := range p.connections {
		if target := p.resolve(c.target); target != nil {
			out = append(out, target)
		}
	}
	return out
}

// ConnectionIndex returns the index of the connection to other, or -1.
func (p *Port) ConnectionIndex(other *Port) int {
	if other == nil || other.node == nil {
		return -1
	}
	return p.entryIndex(other.Ref())
}

// IsConnectedTo reports whether p records a connection to other.
func (p *Port) IsConnectedTo(other *Port) bool { return p.ConnectionIndex(other) >= 0 }

func (p *Port) entryIndex(ref PortRef) int {
	return slices.IndexFunc(p.connections, func(c *connection) bool { return c.target == ref })
}

// CanConnectTo returns nil if p and other may be connected, or the reason they may not.
func (p *Port) CanConnectTo(other *Port) error {
	reason := p.rejectReason(other)
	if reason == "" {
		return nil
	}
	return &domain.ConnectionRejectedError{From: p.String(), To: other.String(), Reason: reason}
}

func (p *Port) rejectReason(other *Port) domain.RejectReason {
	switch {
	case other == nil:
		return domain.RejectNilPort
	case other == p:
		return domain.RejectSamePort
	case p.graph() == nil || other.graph() == nil:
		return domain.RejectDetached
	case p.graph() != other.graph():
		return domain.RejectForeignGraph
	case p.direction == other.direction:
		return domain.RejectSameDirection
	}

	out, in := orient(p, other)
	if !constraintAllows(in.constraint, in.valueType, out.valueType) ||
		!constraintAllows(out.constraint, in.valueType, out.valueType) {
		return domain.RejectTypeConstraint
	}
	return ""
}

func constraintAllows(c domain.TypeConstraint, input, output types.Type) bool {
	switch c {
	case domain.ConstraintStrict:
		return types.Identical(input, output)
	case domain.ConstraintInherited:
		return types.AssignableFrom(input, output)
	case domain.ConstraintInheritedInverse:
		return types.AssignableFrom(output, input)
	default:
		return true
	}
}

// Connect records a connection between p and other on both ports.
// Connecting an already connected pair is a no-op. A Single port drops its
// existing connection first. Refused attempts return a ConnectionRejectedError
// and leave both ports untouched.
func (p *Port) Connect(other *Port) error {
	if other != nil && p.IsConnectedTo(other) {
		return nil
	}
	if err := p.CanConnectTo(other); err != nil {
		if g := p.graph(); g != nil {
			g.emitRejected(p, other, err)
		}
		return err
	}
	p.link(other, nil)
	return nil
}

// link connects without validation. Callers check CanConnectTo first.
func (p *Port) link(other *Port, reroute []domain.Vec2) {
	if p.connection == domain.Single && p.IsConnected() {
		p.ClearConnections()
	}
	if other.connection == domain.Single && other.IsConnected() {
		other.ClearConnections()
	}

	mine := &connection{target: other.Ref()}
	theirs := &connection{target: p.Ref()}
	if p.direction == domain.Output {
		mine.reroute = slices.Clone(reroute)
	} else {
		theirs.reroute = slices.Clone(reroute)
	}
	p.connections = append(p.connections, mine)
	other.connections = append(other.connections, theirs)

	out, in := orient(p, other)
	out.node.notifyCreated(out, in)
	if in.node != out.node {
		in.node.notifyCreated(out, in)
	}
	p.graph().emitConnected(out, in)
}

// Disconnect removes every connection between p and other, on both sides.
// Disconnecting ports that are not connected is a no-op.
func (p *Port) Disconnect(other *Port) {
	if other == nil || p.node == nil || other.node == nil {
		return
	}
	removed := p.dropEntries(other.Ref())
	removed += other.dropEntries(p.Ref())
	if removed == 0 {
		return
	}

	p.node.notifyRemoved(p)
	other.node.notifyRemoved(other)
	if g := p.graph(); g != nil {
		out, in := orient(p, other)
		g.emitDisconnected(out, in)
	}
}

// DisconnectAt removes the connection at index i.
func (p *Port) DisconnectAt(i int) error {
	if i < 0 || i >= len(p.connections) {
		return domain.ErrIndexOutOfRange
	}
	target := p.resolve(p.connections[i].target)
	if target == nil {
		p.connections = slices.Delete(p.connections, i, i+1)
		return nil
	}
	p.Disconnect(target)
	return nil
}

func (p *Port) dropEntries(ref PortRef) int {
	before := len(p.connections)
	p.connections = slices.DeleteFunc(p.connections, func(c *connection) bool { return c.target == ref })
	return before - len(p.connections)
}

// ClearConnections disconnects p from every partner.
func (p *Port) ClearConnections() {
	for len(p.connections) > 0 {
		c := p.connections[0]
		target := p.resolve(c.target)
		if target == nil {
			p.connections = p.connections[1:]
			continue
		}
		p.Disconnect(target)
	}
	p.connections = nil
}

// VerifyConnections prunes connections whose target node or port no longer
// exists or whose mirror entry is missing. It returns the number pruned.
func (p *Port) VerifyConnections() int {
	if p.node == nil {
		return 0
	}
	self := p.Ref()
	before := len(p.connections)
	p.connections = slices.DeleteFunc(p.connections, func(c *connection) bool {
		target := p.resolve(c.target)
		return target == nil || target == p || target.entryIndex(self) < 0
	})
	return before - len(p.connections)
}

// links snapshots the resolvable partners together with their waypoints.
func (p *Port) links() []link {
	out := make([]link, 0, len(p.connections))
	for i, c := range p.connections {
		target := p.resolve(c.target)
		if target == nil {
			continue
		}
		pts, _ := p.ReroutePoints(i)
		out = append(out, link{port: target, reroute: pts})
	}
	return out
}

// linkIfValid re-creates a snapshotted connection when it is still allowed.
func (p *Port) linkIfValid(l link) bool {
	if l.port == nil || p.IsConnectedTo(l.port) || p.CanConnectTo(l.port) != nil {
		return false
	}
	p.link(l.port, l.reroute)
	return true
}

// SwapConnections exchanges the connections of p and other, waypoints included.
func (p *Port) SwapConnections(other *Port) error {
	if other == nil {
		return &domain.InvalidPortOperationError{Op: "swap connections", Port: p.name, Reason: "nil port"}
	}
	if other == p {
		return nil
	}

	mine, theirs := p.links(), other.links()
	p.ClearConnections()
	other.ClearConnections()

	for _, l := range mine {
		other.linkIfValid(l)
	}
	for _, l := range theirs {
		p.linkIfValid(l)
	}
	return nil
}

// AddConnections connects p to every partner of source that p accepts.
func (p *Port) AddConnections(source *Port) {
	if source == nil {
		return
	}
	for _, l := range source.links() {
		p.linkIfValid(l)
	}
}

// MoveConnections hands every connection of p over to target and clears p.
func (p *Port) MoveConnections(target *Port) {
	if target == nil || target == p {
		return
	}
	moved := p.links()
	p.ClearConnections()
	for _, l := range moved {
		target.linkIfValid(l)
	}
}
