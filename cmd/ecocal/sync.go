package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push unsynced high-importance events to Google Calendar",
	Long: `Looks up stored events that qualify for calendar sync and have not been
pushed yet, creates them on the configured Google Calendar and records
the calendar event id. No scraping happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildPipeline()
		if err != nil {
			return err
		}

		result, err := deps.Reconciler.Run(cmd.Context())
		if err != nil {
			return err
		}
		printSyncResult(result)
		if !result.Success() {
			return fmt.Errorf("%d of %d events failed to sync", result.Failed, result.Attempted)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
