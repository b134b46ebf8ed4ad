package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/portgraph/pkg/graph"
)

// Markdown describes g as one section per node with a table of its ports.
func Markdown(g *graph.Graph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", g.Name)
	fmt.Fprintf(&sb, "%d nodes, %d connections\n\n", g.Len(), len(g.Edges()))

	for _, n := range g.Nodes() {
		fmt.Fprintf(&sb, "## %s\n\n", n.Name)
		fmt.Fprintf(&sb, "`%s` · %s · (%g, %g)\n\n", n.ID(), n.Type().Name, n.Position.X, n.Position.Y)
		if len(n.Ports()) == 0 {
			sb.WriteString("_no ports_\n\n")
			continue
		}

		sb.WriteString("| Port | Direction | Type | Policy | Constraint | Kind | Connections |\n")
		sb.WriteString("|---|---|---|---|---|---|---|\n")
		for _, p := range n.Ports() {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n",
				p.Name(),
				p.Direction(),
				p.ValueType().Name(),
				p.ConnectionPolicy(),
				p.TypeConstraint(),
				p.Kind(),
				targets(p),
			)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func targets(p *graph.Port) string {
	conns := p.Connections()
	if len(conns) == 0 {
		return "-"
	}
	names := make([]string, len(conns))
	for i, c := range conns {
		names[i] = c.Ref().String()
	}
	return strings.Join(names, ", ")
}
