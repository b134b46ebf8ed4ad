package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/portgraph/pkg/graph"
)

// GraphOverlay contains editor state to visualize on the graph.
type GraphOverlay struct {
	HighlightedNodes []string
	SelectedNode     string
}

// GenerateMermaid produces a Mermaid flowchart from a graph.
// It applies semantic styling:
// - Source (no inputs): ([Stadium])
// - Sink (no outputs): [/Parallelogram/]
// - Default: [Rectangle]
// Edges are labeled with the output and input port names. Connections
// routed through waypoints are dotted.
// It also applies overlay styles (Highlighted/Selected) if provided.
func GenerateMermaid(g *graph.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(string(node.ID()))

		opener, closer := "[", "]"
		switch {
		case len(node.Inputs()) == 0 && len(node.Outputs()) > 0:
			opener, closer = "([", "])"
		case len(node.Outputs()) == 0 && len(node.Inputs()) > 0:
			opener, closer = "[/", "/]"
		}

		label := escapeLabel(node.Name)
		if node.Name != node.Type().Name {
			label = fmt.Sprintf("%s <br/> <small>%s</small>", label, escapeLabel(node.Type().Name))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)
	}

	for _, e := range g.Edges() {
		arrow := "-->"
		if len(e.Reroute) > 0 {
			arrow = ".->"
		}
		fmt.Fprintf(&sb, "    %s -- \"%s → %s\" %s %s\n",
			sanitizeMermaidID(string(e.From.Node)),
			escapeLabel(e.From.Port),
			escapeLabel(e.To.Port),
			arrow,
			sanitizeMermaidID(string(e.To.Node)),
		)
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef highlighted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.HighlightedNodes {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s highlighted;\n", safeID)
			}
		}

		if overlay.SelectedNode != "" {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.SelectedNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// escapeLabel replaces double quotes, which end a Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
