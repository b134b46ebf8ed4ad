package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
)

// ListPortName returns the name of element index of the list backed by backing.
func ListPortName(backing string, index int) string {
	return fmt.Sprintf("%s %d", backing, index)
}

// AddListPort appends an element to the dynamic port list backed by the
// static port backing. The element takes the first free index and the
// backing port's settings, with slice types reduced to their element type.
func (n *Node) AddListPort(backing string) (*Port, error) {
	s, err := schema.Lookup(n.nodeType)
	if err != nil {
		return nil, fmt.Errorf("failed to add list port: %w", err)
	}
	desc, ok := s.Port(backing)
	if !ok {
		return nil, &domain.PortNotFoundError{Node: n.label(), Port: backing}
	}
	if !desc.DynamicList {
		return nil, &domain.InvalidPortOperationError{Op: "add list port", Port: backing, Reason: "not a dynamic list"}
	}

	index := 0
	for n.HasPort(ListPortName(backing, index)) {
		index++
	}
	p := newPort(ListPortName(backing, index), desc.ElemType(), desc.Direction, desc.Connection, desc.Constraint, KindListElement)
	p.backing = backing
	p.index = index
	n.attach(p)
	return p, nil
}

// ListPorts returns the elements of the list backed by backing, by index.
func (n *Node) ListPorts(backing string) []*Port {
	ports := n.filter(func(p *Port) bool { return p.kind == KindListElement && p.backing == backing })
	slices.SortFunc(ports, func(a, b *Port) int { return a.index - b.index })
	return ports
}

// RemoveListPort removes the element at position pos of the list. Later
// elements hand their connections down one position and the last port goes,
// so names stay contiguous.
func (n *Node) RemoveListPort(backing string, pos int) error {
	ports := n.ListPorts(backing)
	if pos < 0 || pos >= len(ports) {
		return fmt.Errorf("failed to remove list port %s: %w", ListPortName(backing, pos), domain.ErrIndexOutOfRange)
	}

	ports[pos].ClearConnections()
	for k := pos + 1; k < len(ports); k++ {
		ports[k].MoveConnections(ports[k-1])
	}
	last := ports[len(ports)-1]
	last.ClearConnections()
	n.detach(last)
	return nil
}

// MoveListPort moves the connections at position from to position to,
// shifting the elements in between.
func (n *Node) MoveListPort(backing string, from, to int) error {
	ports := n.ListPorts(backing)
	if from < 0 || from >= len(ports) || to < 0 || to >= len(ports) {
		return fmt.Errorf("failed to move list port: %w", domain.ErrIndexOutOfRange)
	}
	for from < to {
		if err := ports[from].SwapConnections(ports[from+1]); err != nil {
			return err
		}
		from++
	}
	for from > to {
		if err := ports[from].SwapConnections(ports[from-1]); err != nil {
			return err
		}
		from--
	}
	return nil
}
