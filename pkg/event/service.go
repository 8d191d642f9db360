package event

import (
	"context"
	"fmt"
	"time"

	"github.com/ecocal/ecocal/internal/event_bus"
	"github.com/ecocal/ecocal/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// Ingest scrapes the calendar page, normalizes the rows and stores
	// them, absorbing duplicates.
	Ingest(ctx context.Context) (IngestResult, error)
	// EventsSince returns stored events from the last `days` days onward
	// (future events included) with at least the given level.
	EventsSince(ctx context.Context, days int, minLevel int) ([]Event, error)
	// UnsyncedImportant returns the events still waiting for calendar sync.
	UnsyncedImportant(ctx context.Context) ([]Event, error)
	// Statistics returns an aggregate snapshot of the store.
	Statistics(ctx context.Context) (Statistics, error)
}

type ServiceImpl struct {
	repo     Repository
	source   Source
	eventBus *event_bus.EventBus
	clock    utils.Clock
	minLevel int
}

func NewServiceImpl(repo Repository, source Source, eventBus *event_bus.EventBus, clock utils.Clock, minLevel int) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		source:   source,
		eventBus: eventBus,
		clock:    clock,
		minLevel: minLevel,
	}
}

func (s *ServiceImpl) Ingest(ctx context.Context) (IngestResult, error) {
	raw, err := s.source.ScrapeEvents(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to scrape calendar page: %w", err)
	}

	events, rejected := Normalize(raw)
	inserted, err := s.repo.InsertBatch(ctx, events)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to store scraped events: %w", err)
	}

	result := IngestResult{
		Scraped:    len(raw),
		Rejected:   rejected,
		Inserted:   inserted,
		Duplicates: len(events) - inserted,
	}
	log.WithFields(log.Fields{
		"scraped":    result.Scraped,
		"rejected":   result.Rejected,
		"inserted":   result.Inserted,
		"duplicates": result.Duplicates,
	}).Info("Calendar ingestion finished")

	err = s.eventBus.Publish(event_bus.NewEvent(
		ctx,
		event_bus.EventsIngestedType,
		event_bus.EventsIngested{
			Scraped:    result.Scraped,
			Rejected:   result.Rejected,
			Inserted:   result.Inserted,
			Duplicates: result.Duplicates,
		},
	))
	if err != nil {
		log.Errorf("failed to publish ingestion event: %v", err)
	}

	return result, nil
}

func (s *ServiceImpl) EventsSince(ctx context.Context, days int, minLevel int) ([]Event, error) {
	if days < 0 {
		days = 0
	}
	since := s.clock.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	return s.repo.FindSince(ctx, since, minLevel)
}

func (s *ServiceImpl) UnsyncedImportant(ctx context.Context) ([]Event, error) {
	return s.repo.FindUnsyncedImportant(ctx, s.minLevel)
}

func (s *ServiceImpl) Statistics(ctx context.Context) (Statistics, error) {
	return s.repo.Statistics(ctx)
}
