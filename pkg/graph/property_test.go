package graph

import (
	"slices"
	"testing"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// propertyGraph builds a few nodes whose ports all accept each other.
func propertyGraph(policy domain.ConnectionPolicy) (*Graph, []*Port, []*Port) {
	g := New("property")
	src := newConstType(types.Float(), domain.ConstraintNone)
	dst := newSinkType(types.Float(), policy, domain.ConstraintNone)

	var outs, ins []*Port
	for i := 0; i < 4; i++ {
		s, _ := g.AddNode(src, domain.Vec2{})
		d, _ := g.AddNode(dst, domain.Vec2{})
		outs = append(outs, s.ports["out"])
		ins = append(ins, d.ports["in"])
	}
	return g, outs, ins
}

func symmetric(g *Graph) bool {
	for _, n := range g.Nodes() {
		for _, p := range n.Ports() {
			for _, c := range p.connections {
				target := g.resolve(c.target)
				if target == nil || target.entryIndex(p.Ref()) < 0 {
					return false
				}
			}
		}
	}
	return true
}

func snapshot(ports []*Port) [][]PortRef {
	out := make([][]PortRef, len(ports))
	for i, p := range ports {
		for _, c := range p.connections {
			out[i] = append(out[i], c.target)
		}
	}
	return out
}

func equalSnapshots(a, b [][]PortRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestGraphProperties(t *testing.T) {
	t.Cleanup(schema.Reset)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("connections stay symmetric under random edits", prop.ForAll(
		func(ops []int, single bool) bool {
			policy := domain.Multiple
			if single {
				policy = domain.Single
			}
			g, outs, ins := propertyGraph(policy)
			for _, op := range ops {
				out, in := outs[op%4], ins[(op/4)%4]
				switch (op / 16) % 3 {
				case 0:
					_ = in.Connect(out)
				case 1:
					out.Disconnect(in)
				case 2:
					in.ClearConnections()
				}
				if !symmetric(g) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 47)),
		gen.Bool(),
	))

	properties.Property("connect then disconnect restores both ports", prop.ForAll(
		func(seed []int, o, i int) bool {
			_, outs, ins := propertyGraph(domain.Multiple)
			for _, s := range seed {
				_ = ins[s%4].Connect(outs[(s/4)%4])
			}
			out, in := outs[o], ins[i]
			if in.IsConnectedTo(out) {
				return true
			}
			all := append(append([]*Port{}, outs...), ins...)
			before := snapshot(all)
			if err := out.Connect(in); err != nil {
				return false
			}
			if !in.IsConnectedTo(out) || !out.IsConnectedTo(in) {
				return false
			}
			out.Disconnect(in)
			return equalSnapshots(before, snapshot(all))
		},
		gen.SliceOf(gen.IntRange(0, 15)),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
	))

	properties.Property("single input ends with the last partner only", prop.ForAll(
		func(order []int) bool {
			_, outs, ins := propertyGraph(domain.Single)
			if len(order) == 0 {
				return true
			}
			for _, o := range order {
				if err := ins[0].Connect(outs[o]); err != nil {
					return false
				}
			}
			last := outs[order[len(order)-1]]
			return ins[0].ConnectionCount() == 1 && ins[0].IsConnectedTo(last)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.Property("second reconciliation changes nothing", prop.ForAll(
		func(items int, dynamic int) bool {
			g := New("reconcile")
			n, err := g.AddNode(newCollectorType(), domain.Vec2{})
			if err != nil {
				return false
			}
			for k := 0; k < items; k++ {
				if _, err := n.AddListPort("items"); err != nil {
					return false
				}
			}
			for k := 0; k < dynamic; k++ {
				n.AddDynamicOutput(types.Int(), domain.Single, domain.ConstraintStrict, "")
			}
			if _, err := n.UpdatePorts(); err != nil {
				return false
			}
			before := portNames(n.Ports())
			report, err := n.UpdatePorts()
			return err == nil && report.Empty() && slices.Equal(before, portNames(n.Ports()))
		},
		gen.IntRange(0, 5),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}
