package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/portgraph"
	"github.com/aretw0/portgraph/internal/presentation/tui"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a graph file against the registered node types",
	Long: `Decodes the graph file and reconciles every node with its current type.
Ports that were added, removed or retyped and connections that could not be
restored are reported. With --fix the reconciled graph is written back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		fix, _ := cmd.Flags().GetBool("fix")

		var events []*domain.ReconcileEvent
		ed, err := newEditor(cmd, portgraph.WithHooks(domain.GraphHooks{
			OnReconciled: func(e *domain.ReconcileEvent) { events = append(events, e) },
		}))
		if err != nil {
			return err
		}

		g, doc, err := ed.LoadFile(path)
		out := cmd.OutOrStdout()
		if err != nil {
			for _, e := range codec.ValidationErrors(err) {
				fmt.Fprintf(out, "  - %v\n", e)
			}
			return fmt.Errorf("validation failed: %w", err)
		}

		sort.Slice(events, func(i, j int) bool { return events[i].NodeID < events[j].NodeID })
		for _, e := range events {
			fmt.Fprintf(out, "%s (%s): %s\n", e.NodeID, e.NodeType, describeReconcile(e))
		}

		if len(events) == 0 {
			fmt.Fprintln(out, tui.Status(out, true, fmt.Sprintf("%s is valid (%d nodes)", path, g.Len())))
			return nil
		}
		if !fix {
			fmt.Fprintln(out, tui.Status(out, false, fmt.Sprintf("%d nodes out of date (use --fix to rewrite)", len(events))))
			return nil
		}
		if err := ed.SaveFile(path, g, doc.Description); err != nil {
			return err
		}
		fmt.Fprintln(out, tui.Status(out, true, "rewrote "+path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("fix", false, "Write the reconciled graph back to the file")
}

func describeReconcile(e *domain.ReconcileEvent) string {
	var parts []string
	add := func(label string, names []string) {
		if len(names) > 0 {
			parts = append(parts, label+" "+strings.Join(names, ", "))
		}
	}
	add("added", e.Added)
	add("removed", e.Removed)
	add("retyped", e.Retyped)
	if e.Reconnected > 0 {
		parts = append(parts, fmt.Sprintf("reconnected %d", e.Reconnected))
	}
	if e.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("dropped %d", e.Dropped))
	}
	return strings.Join(parts, "; ")
}
