package library

import (
	"fmt"

	"github.com/aretw0/portgraph/pkg/dsl"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/registry"
	"github.com/aretw0/portgraph/pkg/schema"
)

// Types returns every node type in the library, abstract bases included.
func Types() []*schema.NodeType {
	return []*schema.NodeType{
		MathType, AdderType, VectorNodeType, DisplayType,
		LogicType, AndType, NotType, ToggleType, PulseType,
		StateType,
	}
}

// Register adds the library's node and value types to r.
func Register(r *registry.Registry) error {
	if err := r.RegisterValueType(VectorType); err != nil {
		return fmt.Errorf("failed to register value types: %w", err)
	}
	for _, t := range Types() {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("failed to register %s: %w", t.Name, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the whole library.
func NewRegistry() *registry.Registry {
	r := registry.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}

// column is the horizontal spacing of template layouts.
const column = 220.0

// Templates lists the sample graphs by name.
var Templates = map[string]func(opts ...graph.Option) (*graph.Graph, error){
	"math":  MathTemplate,
	"logic": LogicTemplate,
	"state": StateTemplate,
}

// MathTemplate builds (a + b) * c feeding a display and a vector.
func MathTemplate(opts ...graph.Option) (*graph.Graph, error) {
	b := dsl.New("math", opts...)
	b.Add("add", MathType).At(0, 0).
		Configure(func(n *graph.Node) { *n.Impl().(*Math) = Math{A: 1, B: 2, Op: OpAdd} }).
		Link("result", "mul", "a")
	b.Add("mul", MathType).At(column, 0).
		Configure(func(n *graph.Node) { *n.Impl().(*Math) = Math{B: 3, Op: OpMultiply} }).
		Link("result", "show", "value").
		Link("result", "vec", "x")
	b.Add("show", DisplayType).At(2*column, 0)
	b.Add("vec", VectorNodeType).At(2*column, 120)
	return b.Build()
}

// LogicTemplate builds a pulse driving a toggle and an inverted lamp.
func LogicTemplate(opts ...graph.Option) (*graph.Graph, error) {
	b := dsl.New("logic", opts...)
	b.Add("pulse", PulseType).At(0, 0).Link("output", "toggle", "input")
	b.Add("toggle", ToggleType).At(column, 0).
		Link("output", "not", "input").
		Link("output", "and", "input")
	b.Add("not", NotType).At(2*column, -80)
	b.Add("and", AndType).At(2*column, 80)
	return b.Build()
}

// StateTemplate builds a three-state loop: idle, running, done, back to idle.
func StateTemplate(opts ...graph.Option) (*graph.Graph, error) {
	b := dsl.New("state", opts...)
	b.Add("idle", StateType).At(0, 0).Link("exit", "running", "enter")
	b.Add("running", StateType).At(column, 0).Link("exit", "done", "enter")
	b.Add("done", StateType).At(2*column, 0).Link("exit", "idle", "enter")
	return b.Build()
}
