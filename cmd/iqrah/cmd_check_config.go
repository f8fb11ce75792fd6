package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/config"
)

func newCheckConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate a configuration file and print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
			fmt.Fprintf(cmd.OutOrStdout(), "  addr:               %s\n", cfg.Server.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "  graph:              %s\n", cfg.Server.GraphPath)
			fmt.Fprintf(cmd.OutOrStdout(), "  db:                 %s\n", cfg.Server.DBPath)
			fmt.Fprintf(cmd.OutOrStdout(), "  gate threshold:     %.2f +/- %.2f\n", cfg.Student.ClusterStabilityThreshold, cfg.Student.ClusterGateHysteresis)
			fmt.Fprintf(cmd.OutOrStdout(), "  intro batch:        %d (floor %d)\n", cfg.Student.ClusterExpansionBatchSize, cfg.Student.IntroMinPerDay)
			fmt.Fprintf(cmd.OutOrStdout(), "  max working set:    %d\n", cfg.Student.MaxWorkingSet)
			fmt.Fprintf(cmd.OutOrStdout(), "  session size:       %d-%d\n", cfg.Student.SessionMin, cfg.Student.SessionMax)
			return nil
		},
	}
}
