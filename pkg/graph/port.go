package graph

import (
	"fmt"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/types"
)

// PortKind distinguishes schema ports from runtime ports.
type PortKind int

const (
	// KindStatic ports are declared by the node type's schema.
	KindStatic PortKind = iota
	// KindDynamic ports were added at runtime.
	KindDynamic
	// KindListElement ports are indexed elements of a dynamic port list.
	KindListElement
)

func (k PortKind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	case KindListElement:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParsePortKind is the inverse of PortKind.String. An empty string is static.
func ParsePortKind(s string) (PortKind, error) {
	switch s {
	case "", "static":
		return KindStatic, nil
	case "dynamic":
		return KindDynamic, nil
	case "list":
		return KindListElement, nil
	default:
		return KindStatic, fmt.Errorf("unknown port kind %q", s)
	}
}

// Port is a named, typed, directional connection endpoint on a node.
type Port struct {
	name        string
	valueType   types.Type
	direction   domain.Direction
	connection  domain.ConnectionPolicy
	constraint  domain.TypeConstraint
	kind        PortKind
	backing     string
	index       int
	node        *Node
	connections []*connection
}

func newPort(name string, t types.Type, dir domain.Direction, policy domain.ConnectionPolicy, constraint domain.TypeConstraint, kind PortKind) *Port {
	if t == nil {
		t = types.Any()
	}
	return &Port{
		name:       name,
		valueType:  t,
		direction:  dir,
		connection: policy,
		constraint: constraint,
		kind:       kind,
	}
}

func (p *Port) Name() string { return p.name }
func (p *Port) ValueType() types.Type { return p.valueType }
func (p *Port) Direction() domain.Direction { return p.direction }
func (p *Port) IsInput() bool { return p.direction == domain.Input }
func (p *Port) IsOutput() bool { return p.direction == domain.Output }
func (p *Port) ConnectionPolicy() domain.ConnectionPolicy { return p.connection }
func (p *Port) TypeConstraint() domain.TypeConstraint { return p.constraint }
func (p *Port) Kind() PortKind { return p.kind }

// Node returns the owning node, or nil once the port was removed.
func (p *Port) Node() *Node { return p.node }

// IsStatic reports whether the port is declared by the node type.
func (p *Port) IsStatic() bool { return p.kind == KindStatic }

// IsDynamic reports whether the port was added at runtime, list elements included.
func (p *Port) IsDynamic() bool { return p.kind != KindStatic }

// ListElement returns the backing port name and index of a dynamic list element.
func (p *Port) ListElement() (backing string, index int, ok bool) {
	if p.kind != KindListElement {
		return "", 0, false
	}
	return p.backing, p.index, true
}

// Ref returns the handle other ports use to reference this one.
func (p *Port) Ref() PortRef {
	if p.node == nil {
		return PortRef{Port: p.name}
	}
	return PortRef{Node: p.node.id, Port: p.name}
}

func (p *Port) String() string {
	if p == nil {
		return "<nil>"
	}
	if p.node == nil {
		return "<detached>." + p.name
	}
	return p.node.label() + "." + p.name
}

func (p *Port) graph() *Graph {
	if p.node == nil {
		return nil
	}
	return p.node.graph
}

func (p *Port) resolve(ref PortRef) *Port {
	g := p.graph()
	if g == nil {
		return nil
	}
	return g.resolve(ref)
}

// clone copies the port's settings without its connections.
func (p *Port) clone() *Port {
	cp := *p
	cp.node = nil
	cp.connections = nil
	return &cp
}

// matches reports whether p has exactly the given settings.
func (p *Port) matches(t types.Type, dir domain.Direction, policy domain.ConnectionPolicy, constraint domain.TypeConstraint) bool {
	return types.Identical(p.valueType, t) && p.direction == dir && p.connection == policy && p.constraint == constraint
}

// orient returns the pair ordered as (output, input).
func orient(a, b *Port) (out, in *Port) {
	if a.direction == domain.Output {
		return a, b
	}
	return b, a
}
