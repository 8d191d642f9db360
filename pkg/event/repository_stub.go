package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type naturalKey struct {
	occursAt string // RFC 3339, UTC
	summary  string
}

func keyOf(occursAt time.Time, summary string) naturalKey {
	return naturalKey{occursAt: occursAt.UTC().Format(time.RFC3339), summary: summary}
}

// RepositoryStub is an in-memory Repository with the same dedup, eligibility
// and mark-synced semantics as the Postgres implementation.
type RepositoryStub struct {
	mu     sync.RWMutex
	events map[naturalKey]*Event
	nextID int64
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		events: make(map[naturalKey]*Event),
		nextID: 1,
	}
}

func (r *RepositoryStub) InsertBatch(ctx context.Context, events []Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, e := range events {
		key := keyOf(e.OccursAt, e.Summary)
		if _, exists := r.events[key]; exists {
			continue
		}
		stored := e
		stored.ID = r.nextID
		r.nextID++
		if stored.DateAdded.IsZero() {
			stored.DateAdded = time.Now().UTC()
		}
		r.events[key] = &stored
		inserted++
	}
	return inserted, nil
}

func (r *RepositoryStub) FindUnsyncedImportant(ctx context.Context, minLevel int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0)
	for _, e := range r.events {
		if e.Synced() || !e.Important(minLevel) {
			continue
		}
		result = append(result, *e)
	}
	sortByOccursAt(result)
	return result, nil
}

func (r *RepositoryStub) MarkSynced(ctx context.Context, occursAt time.Time, summary string, externalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.events[keyOf(occursAt, summary)]
	if !exists || e.Synced() {
		return false, nil
	}
	e.ExternalID = externalID
	return true, nil
}

func (r *RepositoryStub) FindSince(ctx context.Context, since time.Time, minLevel int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0)
	for _, e := range r.events {
		if e.OccursAt.Before(since) || e.Level < minLevel {
			continue
		}
		result = append(result, *e)
	}
	sortByOccursAt(result)
	return result, nil
}

func (r *RepositoryStub) Statistics(ctx context.Context) (Statistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Statistics{}
	for _, e := range r.events {
		stats.TotalEvents++
		if e.Synced() {
			stats.SyncedEvents++
		} else {
			stats.UnsyncedEvents++
		}
		if e.Level >= LevelHighImpact {
			stats.HighImpactEvents++
		}
		occursAt := e.OccursAt
		if stats.EarliestEvent == nil || occursAt.Before(*stats.EarliestEvent) {
			stats.EarliestEvent = &occursAt
		}
		if stats.LatestEvent == nil || occursAt.After(*stats.LatestEvent) {
			stats.LatestEvent = &occursAt
		}
	}
	return stats, nil
}

func sortByOccursAt(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].OccursAt.Before(events[j].OccursAt)
	})
}

// Helper methods for testing

// Get returns a copy of the stored event for the given natural key, or nil.
func (r *RepositoryStub) Get(occursAt time.Time, summary string) *Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.events[keyOf(occursAt, summary)]
	if !exists {
		return nil
	}
	eventCopy := *e
	return &eventCopy
}

// Len returns the number of stored events.
func (r *RepositoryStub) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Reset clears all data (useful between tests)
func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make(map[naturalKey]*Event)
	r.nextID = 1
}

// RepositoryStubWithError wraps a RepositoryStub to simulate store failures.
type RepositoryStubWithError struct {
	*RepositoryStub
	insertBatchErr           error
	findUnsyncedImportantErr error
	markSyncedErr            error
}

func NewRepositoryStubWithError(stub *RepositoryStub) *RepositoryStubWithError {
	return &RepositoryStubWithError{RepositoryStub: stub}
}

func (r *RepositoryStubWithError) InsertBatch(ctx context.Context, events []Event) (int, error) {
	if r.insertBatchErr != nil {
		return 0, r.insertBatchErr
	}
	return r.RepositoryStub.InsertBatch(ctx, events)
}

func (r *RepositoryStubWithError) FindUnsyncedImportant(ctx context.Context, minLevel int) ([]Event, error) {
	if r.findUnsyncedImportantErr != nil {
		return nil, r.findUnsyncedImportantErr
	}
	return r.RepositoryStub.FindUnsyncedImportant(ctx, minLevel)
}

func (r *RepositoryStubWithError) MarkSynced(ctx context.Context, occursAt time.Time, summary string, externalID string) (bool, error) {
	if r.markSyncedErr != nil {
		return false, r.markSyncedErr
	}
	return r.RepositoryStub.MarkSynced(ctx, occursAt, summary, externalID)
}

// Error setters for testing error scenarios
func (r *RepositoryStubWithError) SetInsertBatchError(err error) {
	r.insertBatchErr = err
}

func (r *RepositoryStubWithError) SetFindUnsyncedImportantError(err error) {
	r.findUnsyncedImportantErr = err
}

func (r *RepositoryStubWithError) SetMarkSyncedError(err error) {
	r.markSyncedErr = err
}

var ErrRepositoryTestError = errors.New("repository test error")
