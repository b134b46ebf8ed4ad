package main

import (
	"fmt"

	"github.com/aretw0/portgraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of portgraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "portgraph version %s\n", portgraph.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
