package event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ecocal/ecocal/internal/event_bus"
	"github.com/ecocal/ecocal/internal/rest"
	"github.com/ecocal/ecocal/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(repo Repository, source Source) *Handler {
	clock := &utils.MockClock{FixedNow: time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC)}
	service := NewServiceImpl(repo, source, event_bus.NewEventBus(), clock, LevelHighImpact)
	return NewHandler(service, NewCsvEventsRenderer())
}

func TestGetEvents_ReturnsEventList(t *testing.T) {
	// given
	now := time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC)
	repo := NewRepositoryStub()
	_, err := repo.InsertBatch(context.Background(), []Event{
		{OccursAt: now.Add(-24 * time.Hour), Summary: "Initial Jobless Claims", Country: "US", Level: 3},
		{OccursAt: now.Add(24 * time.Hour), Summary: "Retail Sales MoM", Country: "US", Level: 2, ExternalID: "evt-9"},
	})
	require.NoError(t, err)
	handler := newTestHandler(repo, NewSourceStub())

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()

	// when
	handler.GetEvents(w, req)

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	var response EventListDTO
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, 2, response.Count)
	require.Len(t, response.Events, 2)
	assert.Equal(t, "Initial Jobless Claims", response.Events[0].Summary)
	assert.False(t, response.Events[0].Synced)
	assert.Equal(t, "Retail Sales MoM", response.Events[1].Summary)
	assert.True(t, response.Events[1].Synced)
	assert.Equal(t, "evt-9", response.Events[1].ExternalID)
}

func TestGetEvents_AppliesDaysAndLevelParams(t *testing.T) {
	// given
	now := time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC)
	repo := NewRepositoryStub()
	_, err := repo.InsertBatch(context.Background(), []Event{
		{OccursAt: now.Add(-10 * 24 * time.Hour), Summary: "Outside Window", Level: 3},
		{OccursAt: now.Add(-2 * 24 * time.Hour), Summary: "Low Level", Level: 1},
		{OccursAt: now.Add(-24 * time.Hour), Summary: "Kept", Level: 3},
	})
	require.NoError(t, err)
	handler := newTestHandler(repo, NewSourceStub())

	req := httptest.NewRequest(http.MethodGet, "/api/events?days=7&level=2", nil)
	w := httptest.NewRecorder()

	// when
	handler.GetEvents(w, req)

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	var response EventListDTO
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	require.Equal(t, 1, response.Count)
	assert.Equal(t, "Kept", response.Events[0].Summary)
}

func TestGetEvents_InvalidDaysParam(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"non-numeric days", "/api/events?days=abc"},
		{"negative days", "/api/events?days=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			handler := newTestHandler(NewRepositoryStub(), NewSourceStub())
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			// when
			handler.GetEvents(w, req)

			// then
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var response rest.ErrorResponse
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)
			assert.Equal(t, "Invalid days parameter", response.Error)
		})
	}
}

func TestGetEvents_InvalidLevelParam(t *testing.T) {
	// given
	handler := newTestHandler(NewRepositoryStub(), NewSourceStub())
	req := httptest.NewRequest(http.MethodGet, "/api/events?level=high", nil)
	w := httptest.NewRecorder()

	// when
	handler.GetEvents(w, req)

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response rest.ErrorResponse
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "Invalid level parameter", response.Error)
}

func TestGetEvents_RendersCsvWhenRequested(t *testing.T) {
	// given
	now := time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC)
	repo := NewRepositoryStub()
	_, err := repo.InsertBatch(context.Background(), []Event{
		{OccursAt: now, Summary: "Initial Jobless Claims", Country: "US", Level: 3},
	})
	require.NoError(t, err)
	handler := newTestHandler(repo, NewSourceStub())

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("Accept", "text/csv")
	w := httptest.NewRecorder()

	// when
	handler.GetEvents(w, req)

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "event_datetime,summary,country,level,synced", lines[0])
	assert.Equal(t, "2025-02-13T12:00:00Z,Initial Jobless Claims,US,3,false", lines[1])
}

func TestGetUnsynced_ReturnsPendingImportantEvents(t *testing.T) {
	// given
	now := time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC)
	repo := NewRepositoryStub()
	_, err := repo.InsertBatch(context.Background(), []Event{
		{OccursAt: now, Summary: "Fed Interest Rate Decision", Level: 3},
		{OccursAt: now.Add(time.Hour), Summary: "Synced Already", Level: 3, ExternalID: "evt-1"},
		{OccursAt: now.Add(2 * time.Hour), Summary: "Not Important", Level: 1},
	})
	require.NoError(t, err)
	handler := newTestHandler(repo, NewSourceStub())

	req := httptest.NewRequest(http.MethodGet, "/api/events/unsynced", nil)
	w := httptest.NewRecorder()

	// when
	handler.GetUnsynced(w, req)

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	var response EventListDTO
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	require.Equal(t, 1, response.Count)
	assert.Equal(t, "Fed Interest Rate Decision", response.Events[0].Summary)
}

func TestGetStatistics_ReturnsAggregateCounts(t *testing.T) {
	// given
	now := time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC)
	repo := NewRepositoryStub()
	_, err := repo.InsertBatch(context.Background(), []Event{
		{OccursAt: now.Add(-time.Hour), Summary: "Consumer Confidence", Level: 2, ExternalID: "evt-1"},
		{OccursAt: now.Add(time.Hour), Summary: "Fed Interest Rate Decision", Level: 3},
	})
	require.NoError(t, err)
	handler := newTestHandler(repo, NewSourceStub())

	req := httptest.NewRequest(http.MethodGet, "/api/events/stats", nil)
	w := httptest.NewRecorder()

	// when
	handler.GetStatistics(w, req)

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]any
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, float64(2), response["total_events"])
	assert.Equal(t, float64(1), response["synced_events"])
	assert.Equal(t, float64(1), response["unsynced_events"])
	assert.Equal(t, float64(1), response["high_importance_events"])
	assert.Contains(t, response, "earliest_event")
	assert.Contains(t, response, "latest_event")
}

func TestTriggerScrape_ReturnsIngestCounts(t *testing.T) {
	// given
	repo := NewRepositoryStub()
	source := NewSourceStub()
	source.SetEvents([]RawEvent{
		{DateLabel: "Thursday February 13 2025", TimeLabel: "8:30 AM", Country: "US", LevelLabel: "calendar-date-3", Summary: "Initial Jobless Claims"},
		{DateLabel: "broken", TimeLabel: "9:00 AM", Country: "US", LevelLabel: "calendar-date-1", Summary: "Broken Row"},
	})
	handler := newTestHandler(repo, source)

	req := httptest.NewRequest(http.MethodPost, "/api/scrape", nil)
	w := httptest.NewRecorder()

	// when
	handler.TriggerScrape(w, req)

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	var response IngestResultDTO
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, IngestResultDTO{Scraped: 2, Rejected: 1, Inserted: 1, Duplicates: 0}, response)
	assert.Equal(t, 1, source.Calls())
}

func TestTriggerScrape_ScrapeFailure(t *testing.T) {
	// given
	source := NewSourceStub()
	source.SetError(errScrapeTest)
	handler := newTestHandler(NewRepositoryStub(), source)

	req := httptest.NewRequest(http.MethodPost, "/api/scrape", nil)
	w := httptest.NewRecorder()

	// when
	handler.TriggerScrape(w, req)

	// then
	assert.Equal(t, http.StatusBadGateway, w.Code)
	var response rest.ErrorResponse
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "Scrape failed", response.Error)
	assert.Contains(t, response.Details, "scrape test error")
}
