package main

import (
	"fmt"

	"github.com/aretw0/portgraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the nodes and ports of a graph file",
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

		md := tui.Markdown(g)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		width, _ := cmd.Flags().GetInt("width")
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return fmt.Errorf("failed to render: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print plain Markdown")
	inspectCmd.Flags().Int("width", 100, "Word wrap width")
}
