package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Write a sample graph to a file",
	Long: `Builds one of the sample graphs and writes it to <file>.
The format follows the file extension (.json, .yaml or .yml).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		template, _ := cmd.Flags().GetString("template")
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		ed, err := newEditor(cmd)
		if err != nil {
			return err
		}
		g, err := ed.Template(template)
		if err != nil {
			return err
		}
		if err := ed.SaveFile(path, g, "Sample "+template+" graph."); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s graph to %s\n", template, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringP("template", "t", "math", "Sample graph: math, logic or state")
	newCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
}
