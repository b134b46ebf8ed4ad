package library

import (
	"testing"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, g *graph.Graph, id graph.NodeID) *graph.Node {
	t.Helper()
	n, err := g.Node(id)
	require.NoError(t, err)
	return n
}

func output(t *testing.T, n *graph.Node, name string) *graph.Port {
	t.Helper()
	p, err := n.OutputPort(name)
	require.NoError(t, err)
	return p
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	assert.Len(t, r.Types(), len(Types()))

	nt, err := r.NodeType("MathNode")
	require.NoError(t, err)
	assert.Same(t, MathType, nt)

	vt, err := r.ValueType("[vector3]")
	require.NoError(t, err)
	assert.Equal(t, "[vector3]", vt.Name())
}

func TestMathTemplate(t *testing.T) {
	g, err := MathTemplate()
	require.NoError(t, err)

	assert.Equal(t, 9.0, DisplayValue(node(t, g, "show")))
	assert.Equal(t, Vector3{X: 9}, output(t, node(t, g, "vec"), "vector").OutputValue())
	assert.Equal(t, "Math", node(t, g, "add").Name)
}

func TestMathOperations(t *testing.T) {
	cases := map[MathOp]float64{
		OpAdd:      8,
		OpSubtract: 4,
		OpMultiply: 12,
		OpDivide:   3,
	}
	for op, want := range cases {
		t.Run(string(op), func(t *testing.T) {
			g := graph.New("ops")
			n, err := g.AddNode(MathType, domain.Vec2{})
			require.NoError(t, err)
			*n.Impl().(*Math) = Math{A: 6, B: 2, Op: op}
			assert.Equal(t, want, output(t, n, "result").OutputValue())
		})
	}
}

func TestAdderSumsList(t *testing.T) {
	g := graph.New("sum")
	add, err := g.AddNode(AdderType, domain.Vec2{})
	require.NoError(t, err)
	first, err := add.AddListPort("values")
	require.NoError(t, err)
	second, err := add.AddListPort("values")
	require.NoError(t, err)

	for i, el := range []*graph.Port{first, second} {
		m, err := g.AddNode(MathType, domain.Vec2{})
		require.NoError(t, err)
		*m.Impl().(*Math) = Math{A: float64(i + 1)}
		require.NoError(t, output(t, m, "result").Connect(el))
	}

	assert.Equal(t, 3.0, output(t, add, "sum").OutputValue())
}

func TestLogicSignals(t *testing.T) {
	g, err := LogicTemplate()
	require.NoError(t, err)

	toggle := node(t, g, "toggle").Impl().(*Toggle)
	not := node(t, g, "not").Impl().(*Not)
	and := node(t, g, "and").Impl().(*And)
	pulse := node(t, g, "pulse").Impl().(*Pulse)

	assert.False(t, toggle.LED())
	assert.True(t, not.LED())

	// First tick crosses the interval: rising edge flips the toggle.
	Tick(g, 1.5)
	assert.True(t, pulse.LED())
	assert.True(t, toggle.LED())
	assert.False(t, not.LED())
	assert.True(t, and.LED())

	// Pulse falls, toggle holds.
	Tick(g, 0.1)
	assert.False(t, pulse.LED())
	assert.True(t, toggle.LED())

	// Next rising edge flips it back.
	Tick(g, 1)
	assert.True(t, pulse.LED())
	assert.False(t, toggle.LED())
	assert.True(t, not.LED())
}

func TestLogicReactsToDisconnect(t *testing.T) {
	g, err := LogicTemplate()
	require.NoError(t, err)
	Tick(g, 1.5)

	not := node(t, g, "not")
	in, err := not.InputPort("input")
	require.NoError(t, err)
	in.ClearConnections()

	assert.True(t, not.Impl().(*Not).LED())
}

func TestStateMachine(t *testing.T) {
	g, err := StateTemplate()
	require.NoError(t, err)
	m := NewStateMachine(g)

	assert.ErrorIs(t, m.Continue(), ErrNoActiveState)
	require.NoError(t, m.Enter("idle"))

	for _, want := range []graph.NodeID{"running", "done", "idle"} {
		require.NoError(t, m.Continue())
		assert.Equal(t, want, m.Current().ID())
	}
	assert.Equal(t, 2, node(t, g, "idle").Impl().(*State).Entered)

	done := node(t, g, "done")
	output(t, done, "exit").ClearConnections()
	require.NoError(t, m.Enter("done"))
	assert.ErrorIs(t, m.Continue(), ErrDeadEnd)

	m2 := NewStateMachine(g)
	show, err := g.AddNode(DisplayType, domain.Vec2{})
	require.NoError(t, err)
	assert.ErrorIs(t, m2.Enter(show.ID()), ErrNotAState)
}

func TestTemplatesBuild(t *testing.T) {
	for name, build := range Templates {
		t.Run(name, func(t *testing.T) {
			g, err := build()
			require.NoError(t, err)
			assert.Equal(t, name, g.Name)
			assert.NotZero(t, g.Len())
		})
	}
}

func TestLogicFeedbackLoopsSettle(t *testing.T) {
	connect := func(t *testing.T, from, to *graph.Node) {
		t.Helper()
		out, err := from.OutputPort("output")
		require.NoError(t, err)
		in, err := to.InputPort("input")
		require.NoError(t, err)
		require.NoError(t, out.Connect(in))
	}

	t.Run("self loop", func(t *testing.T) {
		g := graph.New("loop")
		not, err := g.AddNode(NotType, domain.Vec2{})
		require.NoError(t, err)

		assert.NotPanics(t, func() { connect(t, not, not) })
		assert.False(t, not.Impl().(*Not).LED())

		in, err := not.InputPort("input")
		require.NoError(t, err)
		in.ClearConnections()
		assert.True(t, not.Impl().(*Not).LED())
	})

	t.Run("toggle into itself", func(t *testing.T) {
		g := graph.New("loop")
		toggle, err := g.AddNode(ToggleType, domain.Vec2{})
		require.NoError(t, err)
		assert.NotPanics(t, func() { connect(t, toggle, toggle) })
	})

	t.Run("two gates", func(t *testing.T) {
		g := graph.New("loop")
		a, err := g.AddNode(NotType, domain.Vec2{})
		require.NoError(t, err)
		b, err := g.AddNode(NotType, domain.Vec2{})
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			connect(t, a, b)
			connect(t, b, a)
		})
		assert.Len(t, g.Edges(), 2)
	})
}
