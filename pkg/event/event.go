package event

import (
	"context"
	"strings"
	"time"
)

// Importance levels as assigned by the calendar page. 0 is informational
// noise, 3 moves markets.
const (
	LevelInformational = 0
	LevelHighImpact    = 3
)

// highValueIndicators are always eligible for calendar sync no matter which
// level the page assigned them. Matching is a case-insensitive substring
// test on the event summary.
var highValueIndicators = []string{
	"initial jobless claims",
	"gdp growth rate",
	"core pce price index mom",
}

// Event is one economic calendar entry. OccursAt and Summary form the
// natural key: the store never holds two rows for the same pair, so
// re-ingesting a scrape cannot create duplicates.
type Event struct {
	ID         int64
	OccursAt   time.Time
	Summary    string
	Country    string
	Level      int
	ExternalID string
	DateAdded  time.Time
}

// Synced reports whether the event has been propagated to the external
// calendar. ExternalID is set exactly once, after a confirmed creation.
func (e Event) Synced() bool {
	return e.ExternalID != ""
}

// Important reports whether the event qualifies for calendar sync: its
// level reaches minLevel, or its summary names a high-value indicator.
// The OR is a standing business rule, not a cutoff on level alone.
func (e Event) Important(minLevel int) bool {
	if e.Level >= minLevel {
		return true
	}
	return MatchesHighValueIndicator(e.Summary)
}

// MatchesHighValueIndicator reports whether the summary names one of the
// always-synced indicators.
func MatchesHighValueIndicator(summary string) bool {
	s := strings.ToLower(summary)
	for _, indicator := range highValueIndicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

// HighValueIndicators returns the indicator substrings used by the
// eligibility rule, lowercase.
func HighValueIndicators() []string {
	return append([]string(nil), highValueIndicators...)
}

// RawEvent is one row scraped from the calendar page, before normalization.
type RawEvent struct {
	DateLabel  string
	TimeLabel  string
	Country    string
	LevelLabel string
	Summary    string
}

// Source produces the raw calendar rows to ingest.
type Source interface {
	ScrapeEvents(ctx context.Context) ([]RawEvent, error)
}

// Statistics is an aggregate snapshot of the events table. Earliest and
// Latest are nil when the table is empty.
type Statistics struct {
	TotalEvents      int
	SyncedEvents     int
	UnsyncedEvents   int
	HighImpactEvents int
	EarliestEvent    *time.Time
	LatestEvent      *time.Time
}

// IngestResult summarizes one ingestion run. Duplicates counts rows the
// store skipped because they were already present.
type IngestResult struct {
	Scraped    int
	Rejected   int
	Inserted   int
	Duplicates int
}
