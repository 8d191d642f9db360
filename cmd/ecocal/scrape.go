package main

import (
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the economic calendar and store new events",
	Long: `Fetches the Trading Economics calendar page, normalizes the rows and
stores new events in the database. Events already stored are left
untouched. No calendar syncing happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildPipeline()
		if err != nil {
			return err
		}

		result, err := deps.EventService.Ingest(cmd.Context())
		if err != nil {
			return err
		}
		printIngestResult(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
