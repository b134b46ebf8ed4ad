package library

import (
	"github.com/aretw0/portgraph/pkg/dsl"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/types"
)

// Logic is implemented by every logic gate.
type Logic interface {
	// LED reports whether the gate is lit.
	LED() bool
	// InputChanged re-evaluates the gate owned by n.
	InputChanged(n *graph.Node)
}

// SendSignal notifies every logic node connected to output. A gate reached
// again while it is still evaluating is skipped, so feedback loops settle.
func SendSignal(output *graph.Port) {
	for _, target := range output.Connections() {
		if l, ok := target.Node().Impl().(Logic); ok {
			l.InputChanged(target.Node())
		}
	}
}

// owner returns whichever end of a connection belongs to impl.
func owner(impl any, output, input *graph.Port) *graph.Node {
	if input != nil && input.Node() != nil && input.Node().Impl() == impl {
		return input.Node()
	}
	if output != nil {
		return output.Node()
	}
	return nil
}

func boolInputs(n *graph.Node) []bool {
	return graph.GetInputValues[bool](n, "input")
}

func signal(n *graph.Node) {
	if p, err := n.OutputPort("output"); err == nil {
		SendSignal(p)
	}
}

// gate holds the state shared by the signal-driven gates.
type gate struct {
	Input  bool `mapstructure:"input"`
	Output bool `mapstructure:"output"`

	evaluating bool
}

// enter marks the gate busy. It returns false if it already was.
func (g *gate) enter() bool {
	if g.evaluating {
		return false
	}
	g.evaluating = true
	return true
}

func (g *gate) leave() { g.evaluating = false }

func (g *gate) LED() bool { return g.Output }

func (g *gate) Value(*graph.Port) any { return g.Output }

// And is lit when every connected input is on.
type And struct {
	gate `mapstructure:",squash"`
}

func (a *And) InputChanged(n *graph.Node) {
	if !a.enter() {
		return
	}
	defer a.leave()
	in := boolInputs(n)
	next := true
	for _, v := range in {
		next = next && v
	}
	if a.Input != next {
		a.Input, a.Output = next, next
		signal(n)
	}
}

func (a *And) OnCreateConnection(output, input *graph.Port) { a.InputChanged(owner(a, output, input)) }
func (a *And) OnRemoveConnection(p *graph.Port) { a.InputChanged(p.Node()) }

// Not inverts its inputs; it starts lit.
type Not struct {
	gate `mapstructure:",squash"`
}

func (g *Not) InputChanged(n *graph.Node) {
	if !g.enter() {
		return
	}
	defer g.leave()
	next := anyOn(boolInputs(n))
	if g.Input != next {
		g.Input, g.Output = next, !next
		signal(n)
	}
}

func (g *Not) OnCreateConnection(output, input *graph.Port) { g.InputChanged(owner(g, output, input)) }
func (g *Not) OnRemoveConnection(p *graph.Port) { g.InputChanged(p.Node()) }

// Toggle flips its output on every rising edge.
type Toggle struct {
	gate `mapstructure:",squash"`
}

func (g *Toggle) InputChanged(n *graph.Node) {
	if !g.enter() {
		return
	}
	defer g.leave()
	next := anyOn(boolInputs(n))
	switch {
	case !g.Input && next:
		g.Input = true
		g.Output = !g.Output
		signal(n)
	case g.Input && !next:
		g.Input = false
	}
}

func (g *Toggle) OnCreateConnection(output, input *graph.Port) {
	g.InputChanged(owner(g, output, input))
}
func (g *Toggle) OnRemoveConnection(p *graph.Port) { g.InputChanged(p.Node()) }

// Pulse emits a one-tick pulse every Interval seconds of ticked time.
type Pulse struct {
	Interval float64 `mapstructure:"interval"`
	Output   bool    `mapstructure:"output"`
	Timer    float64 `mapstructure:"timer"`
}

func (p *Pulse) LED() bool { return p.Output }
func (p *Pulse) Value(*graph.Port) any { return p.Output }
func (p *Pulse) InputChanged(*graph.Node) {}

// Tick advances the pulse timer of n by dt.
func (p *Pulse) Tick(n *graph.Node, dt float64) {
	p.Timer += dt
	switch {
	case !p.Output && p.Timer > p.Interval:
		p.Timer -= p.Interval
		p.Output = true
		signal(n)
	case p.Output:
		p.Output = false
		signal(n)
	}
}

func anyOn(in []bool) bool {
	for _, v := range in {
		if v {
			return true
		}
	}
	return false
}

// Tick advances every Pulse node in g.
func Tick(g *graph.Graph, dt float64) {
	for _, n := range g.Nodes() {
		if p, ok := n.Impl().(*Pulse); ok {
			p.Tick(n, dt)
		}
	}
}

// LogicType is the abstract base of the gates.
var LogicType = dsl.Type("LogicNode").Abstract().
	Output("output", types.Bool()).
	MustBuild()

var AndType = dsl.Type("AndNode").Extends(LogicType).
	Input("input", types.Bool()).
	New(func() any { return &And{} }).
	MustBuild()

var NotType = dsl.Type("NotNode").Extends(LogicType).
	Input("input", types.Bool()).
	New(func() any { return &Not{gate{Output: true}} }).
	MustBuild()

var ToggleType = dsl.Type("ToggleNode").Extends(LogicType).
	Input("input", types.Bool()).
	New(func() any { return &Toggle{} }).
	MustBuild()

var PulseType = dsl.Type("PulseNode").Extends(LogicType).
	Field("interval", types.Float()).
	New(func() any { return &Pulse{Interval: 1} }).
	MustBuild()
