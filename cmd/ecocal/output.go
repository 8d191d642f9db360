package main

import (
	"fmt"
	"time"

	"github.com/ecocal/ecocal/pkg/calsync"
	"github.com/ecocal/ecocal/pkg/event"
)

func printIngestResult(result event.IngestResult) {
	fmt.Printf("Scraped %d rows: %d inserted, %d duplicates, %d rejected\n",
		result.Scraped, result.Inserted, result.Duplicates, result.Rejected)
}

func printSyncResult(result calsync.Result) {
	fmt.Printf("Synced %d of %d events\n", result.Succeeded, result.Attempted)
	for _, failure := range result.Failures {
		fmt.Printf("  failed: %s (%s): %s\n",
			failure.Summary, failure.OccursAt.Format(time.RFC3339), failure.Reason)
	}
}

func printStatistics(stats event.Statistics) {
	fmt.Println("=== DATABASE SUMMARY ===")
	fmt.Printf("Total events: %d\n", stats.TotalEvents)
	fmt.Printf("Synced events: %d\n", stats.SyncedEvents)
	fmt.Printf("Unsynced events: %d\n", stats.UnsyncedEvents)
	fmt.Printf("High importance events: %d\n", stats.HighImpactEvents)
	if stats.EarliestEvent != nil && stats.LatestEvent != nil {
		fmt.Printf("Date range: %s to %s\n",
			stats.EarliestEvent.Format(time.RFC3339), stats.LatestEvent.Format(time.RFC3339))
	}
	fmt.Println("========================")
}
