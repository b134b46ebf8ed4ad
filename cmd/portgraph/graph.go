package main

import (
	"fmt"

	"github.com/aretw0/portgraph/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Visualize a graph file as a Mermaid diagram",
	Long:  `Generates a Mermaid flowchart of the graph's nodes and connections.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := newEditor(cmd)
		if err != nil {
			return err
		}
		g, _, err := ed.LoadFile(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		selected, _ := cmd.Flags().GetString("select")
		highlight, _ := cmd.Flags().GetStringSlice("highlight")
		if selected != "" || len(highlight) > 0 {
			overlay = &graph.GraphOverlay{SelectedNode: selected, HighlightedNodes: highlight}
		}
		fmt.Fprintln(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("select", "", "Node ID to mark as selected")
	graphCmd.Flags().StringSlice("highlight", nil, "Node IDs to highlight")
}
