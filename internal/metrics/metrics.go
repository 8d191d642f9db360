package metrics

import (
	"github.com/ecocal/ecocal/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsScraped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecocal_events_scraped_total",
		Help: "Rows scraped from the calendar page.",
	})
	EventsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecocal_events_rejected_total",
		Help: "Scraped rows dropped during normalization.",
	})
	EventsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecocal_events_inserted_total",
		Help: "New event rows inserted into the store.",
	})
	CalendarEventsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecocal_calendar_events_created_total",
		Help: "Events created on the external calendar and marked synced.",
	})
	SyncAttempted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecocal_sync_attempted_total",
		Help: "Events picked up by sync runs.",
	})
	SyncFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecocal_sync_failed_total",
		Help: "Events whose sync attempt failed.",
	})
)

func init() {
	prometheus.MustRegister(
		EventsScraped,
		EventsRejected,
		EventsInserted,
		CalendarEventsCreated,
		SyncAttempted,
		SyncFailed,
	)
}

// RegisterBusObserver subscribes the counters to the notification bus so
// ingestion and sync outcomes show up on /metrics regardless of whether a
// run was triggered over HTTP or from the CLI.
func RegisterBusObserver(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.EventsIngested](
		bus,
		event_bus.EventsIngestedType,
		func(e event_bus.EventT[event_bus.EventsIngested]) error {
			EventsScraped.Add(float64(e.Data.Scraped))
			EventsRejected.Add(float64(e.Data.Rejected))
			EventsInserted.Add(float64(e.Data.Inserted))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.CalendarEventSynced](
		bus,
		event_bus.CalendarEventSyncedType,
		func(e event_bus.EventT[event_bus.CalendarEventSynced]) error {
			CalendarEventsCreated.Inc()
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.SyncCompleted](
		bus,
		event_bus.SyncCompletedType,
		func(e event_bus.EventT[event_bus.SyncCompleted]) error {
			SyncAttempted.Add(float64(e.Data.Attempted))
			SyncFailed.Add(float64(e.Data.Failed))
			return nil
		},
	)
}
