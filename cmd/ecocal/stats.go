package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildPipeline()
		if err != nil {
			return err
		}

		stats, err := deps.EventService.Statistics(cmd.Context())
		if err != nil {
			return err
		}
		printStatistics(stats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
