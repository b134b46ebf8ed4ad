package library

import (
	"fmt"

	"github.com/aretw0/portgraph/pkg/dsl"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/types"
)

// MathOp selects the operation a Math node performs.
type MathOp string

const (
	OpAdd      MathOp = "add"
	OpSubtract MathOp = "subtract"
	OpMultiply MathOp = "multiply"
	OpDivide   MathOp = "divide"
)

// Math combines its a and b inputs, falling back to its own fields for
// unconnected inputs.
type Math struct {
	A  float64 `mapstructure:"a"`
	B  float64 `mapstructure:"b"`
	Op MathOp  `mapstructure:"op"`
}

func (m *Math) Value(p *graph.Port) any {
	if p.Name() != "result" {
		return 0.0
	}
	n := p.Node()
	a := graph.GetInputValue(n, "a", m.A)
	b := graph.GetInputValue(n, "b", m.B)
	switch m.Op {
	case OpSubtract:
		return a - b
	case OpMultiply:
		return a * b
	case OpDivide:
		return a / b
	default:
		return a + b
	}
}

// Adder sums everything connected to its values list.
type Adder struct{}

func (Adder) Value(p *graph.Port) any {
	n := p.Node()
	total := 0.0
	if backing, err := n.InputPort("values"); err == nil {
		total += graph.InputSum(backing, 0)
	}
	for _, el := range n.ListPorts("values") {
		total += graph.InputSum(el, 0)
	}
	return total
}

// Vector3 is the value produced by Vector nodes.
type Vector3 struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
	Z float64 `json:"z" mapstructure:"z"`
}

// VectorType is the value type of Vector3 ports.
var VectorType = types.Custom("vector3", func(v any) error {
	switch v.(type) {
	case Vector3, *Vector3:
		return nil
	}
	return fmt.Errorf("expected vector3, got %T", v)
})

// Vector assembles x, y and z into a Vector3.
type Vector struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

func (v *Vector) Value(p *graph.Port) any {
	n := p.Node()
	return Vector3{
		X: graph.GetInputValue(n, "x", v.X),
		Y: graph.GetInputValue(n, "y", v.Y),
		Z: graph.GetInputValue(n, "z", v.Z),
	}
}

// DisplayValue returns whatever is plugged into a Display node.
func DisplayValue(n *graph.Node) any {
	p, err := n.InputPort("value")
	if err != nil {
		return nil
	}
	return p.InputValue()
}

var MathType = dsl.Type("MathNode").
	Input("a", types.Float()).
	Input("b", types.Float()).
	Field("op", types.String()).
	Output("result", types.Float()).
	New(func() any { return &Math{Op: OpAdd} }).
	MustBuild()

var AdderType = dsl.Type("AdderNode").
	Input("values", types.Slice(types.Float()), dsl.List()).
	Output("sum", types.Float()).
	New(func() any { return Adder{} }).
	MustBuild()

var VectorNodeType = dsl.Type("Vector").
	Input("x", types.Float()).
	Input("y", types.Float()).
	Input("z", types.Float()).
	Output("vector", VectorType).
	New(func() any { return &Vector{} }).
	MustBuild()

var DisplayType = dsl.Type("DisplayValue").
	Input("value", types.Any(), dsl.Single()).
	MustBuild()
