package codec

import (
	"fmt"
	"reflect"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// Encode converts g into its document form.
func Encode(g *graph.Graph) (*GraphDocument, error) {
	doc := &GraphDocument{Version: CurrentVersion, Name: g.Name}
	for _, st := range g.State() {
		nd := NodeDocument{
			ID:       string(st.ID),
			Type:     st.Type.Name,
			Name:     st.Name,
			Position: st.Position,
		}
		state, err := encodeState(st.Impl)
		if err != nil {
			return nil, fmt.Errorf("failed to encode node %s: %w", st.ID, err)
		}
		nd.State = state

		for _, ps := range st.Ports {
			pd := PortDocument{
				Name:       ps.Name,
				Type:       ps.ValueType.Name(),
				Direction:  ps.Direction.String(),
				Connection: ps.Connection.String(),
				Constraint: ps.Constraint.String(),
				Kind:       ps.Kind.String(),
				Backing:    ps.Backing,
				Index:      ps.Index,
			}
			for _, cs := range ps.Connections {
				cd := ConnectionDocument{Node: string(cs.Target.Node), Port: cs.Target.Port}
				if ps.Direction == domain.Output && len(cs.Reroute) > 0 {
					cd.Reroute = cs.Reroute
				}
				pd.Connections = append(pd.Connections, cd)
			}
			nd.Ports = append(nd.Ports, pd)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc, nil
}

// Decode validates doc and restores it into a new graph. Node and value
// types are resolved by name through r.
func Decode(doc *GraphDocument, r registry.Resolver, opts ...graph.Option) (*graph.Graph, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	states := make([]graph.NodeState, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		st, err := decodeNode(nd, r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode node %s: %w", nd.ID, err)
		}
		states = append(states, st)
	}

	g := graph.New(doc.Name, opts...)
	if _, err := g.Restore(states); err != nil {
		return nil, fmt.Errorf("failed to restore graph %s: %w", doc.Name, err)
	}
	return g, nil
}

func decodeNode(nd NodeDocument, r registry.Resolver) (graph.NodeState, error) {
	t, err := r.NodeType(nd.Type)
	if err != nil {
		return graph.NodeState{}, err
	}
	st := graph.NodeState{
		ID:       graph.NodeID(nd.ID),
		Type:     t,
		Name:     nd.Name,
		Position: nd.Position,
	}
	if t.New != nil {
		st.Impl = t.New()
		if err := decodeState(nd.State, st.Impl); err != nil {
			return graph.NodeState{}, err
		}
	}

	for _, pd := range nd.Ports {
		ps, err := decodePort(pd, r)
		if err != nil {
			return graph.NodeState{}, fmt.Errorf("port %s: %w", pd.Name, err)
		}
		st.Ports = append(st.Ports, ps)
	}
	return st, nil
}

func decodePort(pd PortDocument, r registry.Resolver) (graph.PortState, error) {
	vt, err := r.ValueType(pd.Type)
	if err != nil {
		return graph.PortState{}, err
	}
	dir, err := domain.ParseDirection(pd.Direction)
	if err != nil {
		return graph.PortState{}, err
	}
	policy, err := domain.ParseConnectionPolicy(pd.Connection)
	if err != nil {
		return graph.PortState{}, err
	}
	constraint, err := domain.ParseTypeConstraint(pd.Constraint)
	if err != nil {
		return graph.PortState{}, err
	}
	kind, err := graph.ParsePortKind(pd.Kind)
	if err != nil {
		return graph.PortState{}, err
	}

	ps := graph.PortState{
		Name:       pd.Name,
		ValueType:  vt,
		Direction:  dir,
		Connection: policy,
		Constraint: constraint,
		Kind:       kind,
		Backing:    pd.Backing,
		Index:      pd.Index,
	}
	for _, cd := range pd.Connections {
		ps.Connections = append(ps.Connections, graph.ConnectionState{
			Target:  graph.PortRef{Node: graph.NodeID(cd.Node), Port: cd.Port},
			Reroute: cd.Reroute,
		})
	}
	return ps, nil
}

// encodeState flattens a struct implementation into a map. Implementations
// without exported state encode to nil.
func encodeState(impl any) (map[string]any, error) {
	if impl == nil {
		return nil, nil
	}
	v := reflect.Indirect(reflect.ValueOf(impl))
	if v.Kind() != reflect.Struct || v.NumField() == 0 {
		return nil, nil
	}
	out := make(map[string]any)
	if err := mapstructure.Decode(impl, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// decodeState loads a state map into a pointer implementation. Numbers read
// from JSON or YAML are converted weakly.
func decodeState(state map[string]any, impl any) error {
	if len(state) == 0 || reflect.ValueOf(impl).Kind() != reflect.Pointer {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           impl,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(state); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}
	return nil
}
