package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "iqrah",
		Short: "Adaptive scheduler for spaced-repetition learning over a knowledge graph",
		Long: `iqrah schedules daily reviews and introductions for a memorization
curriculum. A per-node energy signal propagates across the knowledge
graph, a hysteresis gate decides when the working set may grow, and a
staged clamp pipeline keeps the daily introduction budget from either
exploding the backlog or stalling progress.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (YAML)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newServeCmd(),
		newCheckConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("iqrah version %s\n", version)
		},
	}
}
