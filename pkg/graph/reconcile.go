package graph

import (
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
)

// ReconcileReport lists what a reconciliation changed.
type ReconcileReport struct {
	Added       []string
	Removed     []string
	Retyped     []string
	ListUpdated []string
	// Reconnected counts connections re-attached to rebuilt ports.
	Reconnected int
	// Dropped counts reconnection candidates the rebuilt port refused.
	Dropped int
}

// Empty reports whether nothing changed.
func (r ReconcileReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Retyped) == 0 &&
		len(r.ListUpdated) == 0 && r.Reconnected == 0 && r.Dropped == 0
}

func (r *ReconcileReport) merge(o ReconcileReport) {
	r.Added = append(r.Added, o.Added...)
	r.Removed = append(r.Removed, o.Removed...)
	r.Retyped = append(r.Retyped, o.Retyped...)
	r.ListUpdated = append(r.ListUpdated, o.ListUpdated...)
	r.Reconnected += o.Reconnected
	r.Dropped += o.Dropped
}

// candidate is a connection of a rebuilt static port, kept by handle so it
// survives the rebuild of its partner.
type candidate struct {
	target  PortRef
	reroute []domain.Vec2
}

// reconcile makes the live ports match s. Order matters: the connections of
// every rebuilt port are snapshotted before any port is cleared, rebuilt and
// obsolete ports are removed, missing static ports are created, and only then
// are the snapshots offered back, so two rebuilt ports may reconnect to each
// other. List elements follow their backing ports last.
func (n *Node) reconcile(s *schema.Schema) ReconcileReport {
	var report ReconcileReport
	candidates := make(map[string][]candidate)
	var stale, deferred []*Port

	for _, name := range slices.Clone(n.order) {
		p := n.ports[name]
		desc, declared := s.Port(name)
		switch {
		case declared:
			if p.IsDynamic() || p.direction != desc.Direction || p.connection != desc.Connection || p.constraint != desc.Constraint {
				// Connections only carry over when the direction is unchanged.
				if p.IsStatic() && p.direction == desc.Direction {
					candidates[name] = p.candidates()
				}
				stale = append(stale, p)
				continue
			}
			if !types.Identical(p.valueType, desc.ValueType) {
				report.Retyped = append(report.Retyped, name)
			}
			p.valueType = desc.ValueType

		case p.IsStatic():
			stale = append(stale, p)

		case p.kind == KindListElement && s.IsListBacking(p.backing):
			deferred = append(deferred, p)
		}
	}

	for _, p := range stale {
		p.ClearConnections()
		n.detach(p)
		report.Removed = append(report.Removed, p.name)
	}

	var added []*Port
	for _, desc := range s.Ports() {
		if n.HasPort(desc.Name) {
			continue
		}
		p := newPort(desc.Name, desc.ValueType, desc.Direction, desc.Connection, desc.Constraint, KindStatic)
		n.attach(p)
		added = append(added, p)
		report.Added = append(report.Added, desc.Name)
	}

	// A connection between two rebuilt ports shows up in both snapshots.
	seen := make(map[[2]PortRef]bool)
	for _, p := range added {
		for _, c := range candidates[p.name] {
			key := pairKey(p.Ref(), c.target)
			if seen[key] {
				continue
			}
			seen[key] = true

			target := p.resolve(c.target)
			if target == nil || (p.connection == domain.Single && p.IsConnected()) {
				report.Dropped++
				continue
			}
			if !p.linkIfValid(link{port: target, reroute: c.reroute}) {
				report.Dropped++
				continue
			}
			report.Reconnected++
		}
	}

	for _, p := range deferred {
		backing, _ := s.Port(p.backing)
		elem := backing.ElemType()
		if p.matches(elem, backing.Direction, backing.Connection, backing.Constraint) {
			continue
		}
		if p.direction != backing.Direction {
			p.ClearConnections()
		}
		p.valueType = elem
		p.direction = backing.Direction
		p.connection = backing.Connection
		p.constraint = backing.Constraint
		report.ListUpdated = append(report.ListUpdated, p.name)
	}

	n.sortPorts(s)
	return report
}

func pairKey(a, b PortRef) [2]PortRef {
	if b.String() < a.String() {
		a, b = b, a
	}
	return [2]PortRef{a, b}
}

func (p *Port) candidates() []candidate {
	out := make([]candidate, 0, len(p.connections))
	for i, c := range p.connections {
		pts, _ := p.ReroutePoints(i)
		out = append(out, candidate{target: c.target, reroute: pts})
	}
	return out
}

// sortPorts orders static ports by schema declaration, followed by the
// remaining ports in their existing relative order.
func (n *Node) sortPorts(s *schema.Schema) {
	order := make([]string, 0, len(n.order))
	for _, desc := range s.Ports() {
		if n.HasPort(desc.Name) {
			order = append(order, desc.Name)
		}
	}
	for _, name := range n.order {
		if _, declared := s.Port(name); !declared {
			order = append(order, name)
		}
	}
	n.order = order
}
