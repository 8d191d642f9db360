package event

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ecocal/ecocal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	ID         int64     `json:"id"`
	OccursAt   time.Time `json:"event_datetime"`
	Summary    string    `json:"summary"`
	Country    string    `json:"country,omitempty"`
	Level      int       `json:"level"`
	ExternalID string    `json:"external_id,omitempty"`
	Synced     bool      `json:"synced"`
}

type EventListDTO struct {
	Count  int        `json:"count"`
	Events []EventDTO `json:"events"`
}

type StatisticsDTO struct {
	TotalEvents    int        `json:"total_events"`
	SyncedEvents   int        `json:"synced_events"`
	UnsyncedEvents int        `json:"unsynced_events"`
	HighImportance int        `json:"high_importance_events"`
	EarliestEvent  *time.Time `json:"earliest_event,omitempty"`
	LatestEvent    *time.Time `json:"latest_event,omitempty"`
}

type IngestResultDTO struct {
	Scraped    int `json:"scraped"`
	Rejected   int `json:"rejected"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

type Handler struct {
	service     Service
	csvRenderer EventsRenderer
}

func NewHandler(service Service, csvRenderer EventsRenderer) *Handler {
	return &Handler{service, csvRenderer}
}

// GetEvents handles GET /api/events?days=30&level=0. A text/csv Accept
// header switches the body to CSV.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	days := 30
	if daysString := r.URL.Query().Get("days"); daysString != "" {
		parsed, err := strconv.Atoi(daysString)
		if err != nil || parsed < 0 {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid days parameter",
				Details: "'days' must be a non-negative integer",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		days = parsed
	}

	minLevel := 0
	if levelString := r.URL.Query().Get("level"); levelString != "" {
		parsed, err := strconv.Atoi(levelString)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid level parameter",
				Details: "'level' must be an integer",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		minLevel = parsed
	}

	events, err := h.service.EventsSince(r.Context(), days, minLevel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csvBody, err := h.csvRenderer.RenderEvents(events)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csvBody)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	writeEventList(w, events)
}

// GetUnsynced handles GET /api/events/unsynced.
func (h *Handler) GetUnsynced(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.UnsyncedImportant(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeEventList(w, events)
}

// GetStatistics handles GET /api/events/stats.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := StatisticsDTO{
		TotalEvents:    stats.TotalEvents,
		SyncedEvents:   stats.SyncedEvents,
		UnsyncedEvents: stats.UnsyncedEvents,
		HighImportance: stats.HighImpactEvents,
		EarliestEvent:  stats.EarliestEvent,
		LatestEvent:    stats.LatestEvent,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// TriggerScrape handles POST /api/scrape.
func (h *Handler) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	log.Debug("Triggering calendar scrape")
	result, err := h.service.Ingest(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Scrape failed",
			Details: err.Error(),
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	dto := IngestResultDTO{
		Scraped:    result.Scraped,
		Rejected:   result.Rejected,
		Inserted:   result.Inserted,
		Duplicates: result.Duplicates,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func writeEventList(w http.ResponseWriter, events []Event) {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(EventListDTO{Count: len(dtos), Events: dtos}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:         e.ID,
		OccursAt:   e.OccursAt,
		Summary:    e.Summary,
		Country:    e.Country,
		Level:      e.Level,
		ExternalID: e.ExternalID,
		Synced:     e.Synced(),
	}
}
