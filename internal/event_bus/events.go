package event_bus

import "time"

const (
	EventsIngestedType      EventType = "events.ingested"
	CalendarEventSyncedType EventType = "calendar.event.synced"
	SyncCompletedType       EventType = "calendar.sync.completed"
)

// EventsIngested is published after every ingestion run.
type EventsIngested struct {
	Scraped    int
	Rejected   int
	Inserted   int
	Duplicates int
}

// CalendarEventSynced is published for each event successfully created on
// the external calendar and recorded in the store.
type CalendarEventSynced struct {
	Summary    string
	OccursAt   time.Time
	ExternalID string
}

// SyncCompleted is published once per reconciler run with the aggregate
// outcome.
type SyncCompleted struct {
	Attempted int
	Succeeded int
	Failed    int
}
