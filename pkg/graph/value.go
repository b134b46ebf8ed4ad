package graph

import (
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/types"
)

// OutputValue asks the owning node for the value of this output port.
func (p *Port) OutputValue() any {
	if p.direction != domain.Output || p.node == nil {
		return nil
	}
	return p.node.Value(p)
}

// InputValue returns the value of the first connected output, or nil.
func (p *Port) InputValue() any {
	if p.direction != domain.Input {
		return nil
	}
	if src := p.Connection(); src != nil {
		return src.OutputValue()
	}
	return nil
}

// InputValues returns the values of every connected output.
func (p *Port) InputValues() []any {
	if p.direction != domain.Input {
		return nil
	}
	sources := p.Connections()
	out := make([]any, 0, len(sources))
	for _, src := range sources {
		out = append(out, src.OutputValue())
	}
	return out
}

// TryGetInputValue converts the first connected value to T.
func TryGetInputValue[T any](p *Port) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return types.Convert[T](p.InputValue())
}

// GetInputValue returns the value connected to the named input, converted to
// T, or fallback when the port is missing, unconnected or not convertible.
func GetInputValue[T any](n *Node, name string, fallback T) T {
	p, err := n.InputPort(name)
	if err != nil {
		return fallback
	}
	if v, ok := TryGetInputValue[T](p); ok {
		return v
	}
	return fallback
}

// GetInputValues returns every value connected to the named input converted
// to T. It returns fallback when the port is missing or unconnected, or when
// any value fails to convert.
func GetInputValues[T any](n *Node, name string, fallback ...T) []T {
	p, err := n.InputPort(name)
	if err != nil || !p.IsConnected() {
		return fallback
	}
	raw := p.InputValues()
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		converted, ok := types.Convert[T](v)
		if !ok {
			return fallback
		}
		out = append(out, converted)
	}
	return out
}

// InputSum adds up every connected numeric value, or returns fallback when
// nothing numeric is connected.
func InputSum(p *Port, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	sum, found := 0.0, false
	for _, v := range p.InputValues() {
		if f, ok := types.Convert[float64](v); ok {
			sum += f
			found = true
		}
	}
	if !found {
		return fallback
	}
	return sum
}
