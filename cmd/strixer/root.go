package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "strixer",
	Short: "Multi-agent task & workflow coordination engine",
	Long: `Strixer coordinates work among cooperating agents: it tracks tasks,
enforces dependency ordering, assigns work under per-agent capacity
limits, expands multi-step workflows into tasks, and records broadcasts
and sync points.

The engine itself is a library (internal/coord); this CLI is a thin
wrapper for running workflow plans and inspecting archived results.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(versionCmd)
}
