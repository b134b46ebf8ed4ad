package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/portgraph"
	"github.com/aretw0/portgraph/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portgraph",
	Short: "Portgraph edits typed node graphs",
	Long: `Portgraph builds, validates and serves graphs of typed nodes whose ports
connect under type constraints. Graph files are JSON or YAML documents.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// newLogger builds the stderr logger from the persistent flags. fallback is
// used when --log-level was not given.
func newLogger(cmd *cobra.Command, fallback string) (*slog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = fallback
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	format, _ := cmd.Flags().GetString("log-format")
	return logging.NewWithFormat(cmd.ErrOrStderr(), lvl, format)
}

// newEditor returns an Editor over the sample library logging through the
// persistent flags.
func newEditor(cmd *cobra.Command, opts ...portgraph.Option) (*portgraph.Editor, error) {
	logger, err := newLogger(cmd, "warn")
	if err != nil {
		return nil, err
	}
	return portgraph.New(append([]portgraph.Option{portgraph.WithLogger(logger)}, opts...)...), nil
}
