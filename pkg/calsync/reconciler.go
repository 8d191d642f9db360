package calsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecocal/ecocal/internal/event_bus"
	"github.com/ecocal/ecocal/pkg/event"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no calendar client is available, e.g.
// because no OAuth token has been stored yet.
var ErrNotConfigured = errors.New("calendar sync is not configured")

// CalendarClient is the external calendar the reconciler propagates events
// to. Implemented by google.Calendar.
type CalendarClient interface {
	CreateEvent(ctx context.Context, e event.Event) (string, error)
	CheckConnection(ctx context.Context) error
}

// Failure describes one event that could not be propagated during a run.
type Failure struct {
	Summary  string
	OccursAt time.Time
	Reason   string
}

// Result summarizes one reconciliation run.
type Result struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []Failure
}

// Success reports whether the run completed without recorded failures.
func (r Result) Success() bool {
	return r.Failed == 0
}

// Reconciler propagates stored events that qualify for sync to the external
// calendar and records the assigned id, one event at a time. A failing event
// never aborts the run; its failure is recorded and the run continues.
type Reconciler struct {
	store    event.Repository
	calendar CalendarClient
	eventBus *event_bus.EventBus
	minLevel int
}

func NewReconciler(store event.Repository, calendar CalendarClient, eventBus *event_bus.EventBus, minLevel int) *Reconciler {
	return &Reconciler{
		store:    store,
		calendar: calendar,
		eventBus: eventBus,
		minLevel: minLevel,
	}
}

// Run performs one reconciliation pass. Reading the pending set or failing
// the connection check aborts the run; individual event failures do not.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	if r.calendar == nil {
		return Result{}, ErrNotConfigured
	}

	logger := log.WithField("syncRun", uuid.New().String())

	pending, err := r.store.FindUnsyncedImportant(ctx, r.minLevel)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load events pending sync: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("No events pending calendar sync")
		return Result{}, nil
	}

	if err := r.calendar.CheckConnection(ctx); err != nil {
		return Result{}, fmt.Errorf("calendar connection check failed: %w", err)
	}

	logger.Infof("Syncing %d events to calendar", len(pending))

	result := Result{Attempted: len(pending)}
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sync run interrupted: %w", err)
		}

		externalID, err := r.calendar.CreateEvent(ctx, e)
		if err != nil {
			r.recordFailure(&result, logger, e, fmt.Sprintf("failed to create calendar event: %v", err))
			continue
		}

		recorded, err := r.store.MarkSynced(ctx, e.OccursAt, e.Summary, externalID)
		if err != nil {
			r.recordFailure(&result, logger, e, fmt.Sprintf("calendar event %s created but not recorded: %v", externalID, err))
			continue
		}
		if !recorded {
			r.recordFailure(&result, logger, e, fmt.Sprintf("calendar event %s created but no unsynced row matched", externalID))
			continue
		}

		result.Succeeded++
		logger.Debugf("Synced event %q as %s", e.Summary, externalID)
		r.publish(event_bus.NewEvent(ctx, event_bus.CalendarEventSyncedType, event_bus.CalendarEventSynced{
			Summary:    e.Summary,
			OccursAt:   e.OccursAt,
			ExternalID: externalID,
		}))
	}

	logger.WithFields(log.Fields{
		"attempted": result.Attempted,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Calendar sync finished")

	r.publish(event_bus.NewEvent(ctx, event_bus.SyncCompletedType, event_bus.SyncCompleted{
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	}))

	return result, nil
}

func (r *Reconciler) recordFailure(result *Result, logger *log.Entry, e event.Event, reason string) {
	result.Failed++
	result.Failures = append(result.Failures, Failure{
		Summary:  e.Summary,
		OccursAt: e.OccursAt,
		Reason:   reason,
	})
	logger.Warnf("Failed to sync event %q: %s", e.Summary, reason)
}

func (r *Reconciler) publish(e event_bus.Event) {
	if err := r.eventBus.Publish(e); err != nil {
		log.Errorf("failed to publish %s event: %v", e.Type, err)
	}
}
