package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, store and sync in one pass",
	Long: `Runs the full pipeline: scrape the calendar page, store new events, push
unsynced high-importance events to Google Calendar and print database
statistics. Calendar problems are reported but do not fail the run as
long as the database part completed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildPipeline()
		if err != nil {
			return err
		}

		ingested, err := deps.EventService.Ingest(cmd.Context())
		if err != nil {
			return err
		}
		printIngestResult(ingested)

		syncResult, err := deps.Reconciler.Run(cmd.Context())
		if err != nil {
			log.Warnf("Calendar sync had issues, but database sync completed: %v", err)
		} else {
			printSyncResult(syncResult)
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
	rootCmd.AddCommand(runCmd)
}
