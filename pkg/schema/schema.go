package schema

import (
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/types"
)

// PortAttr turns a field into a port.
type PortAttr struct {
	Connection domain.ConnectionPolicy
	Constraint domain.TypeConstraint
	// DynamicList marks the field as the backing port of an ordered list of
	// dynamic ports named "<field> <index>".
	DynamicList bool
}

// Field is one declared field of a node type. A field with neither Input nor
// Output set is plain state and does not produce a port, but it still shadows
// inherited fields of the same name.
type Field struct {
	Name   string
	Type   types.Type
	Input  *PortAttr
	Output *PortAttr
}

// IsPort reports whether the field carries a port annotation.
func (f Field) IsPort() bool { return f.Input != nil || f.Output != nil }

// NodeType declares a kind of node.
type NodeType struct {
	Name     string
	Base     *NodeType
	Abstract bool
	Fields   []Field
	// New constructs the implementation attached to each node of this type.
	// It may be nil, in which case nodes carry no implementation.
	New func() any
}

func (t *NodeType) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Extends reports whether t is other or derives from it.
func (t *NodeType) Extends(other *NodeType) bool {
	for cur, depth := t, 0; cur != nil && depth <= maxDepth; cur, depth = cur.Base, depth+1 {
		if cur == other {
			return true
		}
	}
	return false
}

// Port describes one static port.
type Port struct {
	Name        string
	ValueType   types.Type
	Direction   domain.Direction
	Connection  domain.ConnectionPolicy
	Constraint  domain.TypeConstraint
	DynamicList bool
}

// ElemType is the value type of list elements backed by this port.
func (p Port) ElemType() types.Type { return types.Elem(p.ValueType) }

// Schema is the immutable, ordered list of static ports of a node type.
type Schema struct {
	nodeType *NodeType
	ports    []Port
	index    map[string]int
}

// Type returns the described node type.
func (s *Schema) Type() *NodeType { return s.nodeType }

// Ports returns the static ports in declaration order.
func (s *Schema) Ports() []Port { return slices.Clone(s.ports) }

// Len returns the number of static ports.
func (s *Schema) Len() int { return len(s.ports) }

// Port returns the static port with the given name.
func (s *Schema) Port(name string) (Port, bool) {
	i, ok := s.index[name]
	if !ok {
		return Port{}, false
	}
	return s.ports[i], true
}

// IsListBacking reports whether name is a static port backing a dynamic list.
func (s *Schema) IsListBacking(name string) bool {
	p, ok := s.Port(name)
	return ok && p.DynamicList
}
