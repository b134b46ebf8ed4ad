package library

import (
	"errors"
	"fmt"

	"github.com/aretw0/portgraph/pkg/dsl"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/types"
)

var (
	ErrNoActiveState = errors.New("state machine has no active state")
	ErrNotAState     = errors.New("node is not a state")
	ErrDeadEnd       = errors.New("state exit is not connected")
)

// State marks a node that can be the active state of a StateMachine.
type State struct {
	Entered int `mapstructure:"entered"`
}

var StateType = dsl.Type("StateNode").
	Input("enter", types.Any()).
	Output("exit", types.Any()).
	New(func() any { return &State{} }).
	MustBuild()

// StateMachine walks a graph of State nodes along their exit connections.
type StateMachine struct {
	g       *graph.Graph
	current graph.NodeID
}

// NewStateMachine creates a state machine over g with no active state.
func NewStateMachine(g *graph.Graph) *StateMachine {
	return &StateMachine{g: g}
}

// Current returns the active state node, or nil.
func (m *StateMachine) Current() *graph.Node {
	if m.current == "" {
		return nil
	}
	n, err := m.g.Node(m.current)
	if err != nil {
		return nil
	}
	return n
}

// Enter makes id the active state.
func (m *StateMachine) Enter(id graph.NodeID) error {
	n, err := m.g.Node(id)
	if err != nil {
		return err
	}
	s, ok := n.Impl().(*State)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAState, id)
	}
	s.Entered++
	m.current = id
	return nil
}

// Continue follows the first exit connection of the active state.
func (m *StateMachine) Continue() error {
	n := m.Current()
	if n == nil {
		return ErrNoActiveState
	}
	exit, err := n.OutputPort("exit")
	if err != nil {
		return err
	}
	next := exit.Connection()
	if next == nil {
		return fmt.Errorf("%w: %s", ErrDeadEnd, n)
	}
	return m.Enter(next.Node().ID())
}
