package app

import (
	"context"

	"github.com/ecocal/ecocal/internal/config"
	"github.com/ecocal/ecocal/internal/database"
	"github.com/ecocal/ecocal/internal/event_bus"
	"github.com/ecocal/ecocal/internal/metrics"
	"github.com/ecocal/ecocal/internal/utils"
	"github.com/ecocal/ecocal/pkg/calsync"
	"github.com/ecocal/ecocal/pkg/event"
	"github.com/ecocal/ecocal/pkg/google"
	"github.com/ecocal/ecocal/pkg/scraper"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	EventSource     event.Source
	EventRepository event.Repository
	EventService    event.Service
	EventHandler    *event.Handler

	Calendar    calsync.CalendarClient
	Reconciler  *calsync.Reconciler
	SyncHandler *calsync.Handler

	HealthHandler *HealthHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
// A missing or unreadable Google token leaves the calendar client nil: scraping
// and the API keep working, and sync requests report that syncing is not
// configured.
func BuildDependencies(db *database.Connector, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	metrics.RegisterBusObserver(deps.EventBus)

	deps.Clock = &utils.SystemClock{}
	deps.EventSource = scraper.NewTradingEconomics(cfg.Scraper)
	deps.EventRepository = event.NewPostgresRepository(db)
	deps.EventService = event.NewServiceImpl(deps.EventRepository, deps.EventSource, deps.EventBus, deps.Clock, cfg.Sync.MinLevel)
	deps.EventHandler = event.NewHandler(deps.EventService, event.NewCsvEventsRenderer())

	calendar, err := google.NewCalendar(context.Background(), cfg.Google)
	if err != nil {
		log.Warnf("Google Calendar is not configured: %v", err)
	} else {
		deps.Calendar = calendar
	}
	deps.Reconciler = calsync.NewReconciler(deps.EventRepository, deps.Calendar, deps.EventBus, cfg.Sync.MinLevel)
	deps.SyncHandler = calsync.NewHandler(deps.Reconciler)

	deps.HealthHandler = NewHealthHandler(db)

	return deps
}
