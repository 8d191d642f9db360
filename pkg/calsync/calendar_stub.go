package calsync

import (
	"context"
	"sync"

	"github.com/ecocal/ecocal/pkg/event"
	"github.com/google/uuid"
)

// StubCalendarClient is an in-memory CalendarClient with per-summary failure
// injection.
type StubCalendarClient struct {
	mu            sync.Mutex
	created       map[string]event.Event
	failSummaries map[string]error
	connectionErr error
}

func NewStubCalendarClient() *StubCalendarClient {
	return &StubCalendarClient{
		created:       map[string]event.Event{},
		failSummaries: map[string]error{},
	}
}

func (c *StubCalendarClient) CreateEvent(ctx context.Context, e event.Event) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.failSummaries[e.Summary]; ok {
		return "", err
	}
	uid := uuid.NewString()
	c.created[uid] = e
	return uid, nil
}

func (c *StubCalendarClient) CheckConnection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectionErr
}

// FailOnSummary makes CreateEvent return the given error for events with
// this summary.
func (c *StubCalendarClient) FailOnSummary(summary string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSummaries[summary] = err
}

func (c *StubCalendarClient) SetConnectionError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectionErr = err
}

// Created returns copies of all events stored so far, keyed by external id.
func (c *StubCalendarClient) Created() map[string]event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]event.Event, len(c.created))
	for uid, e := range c.created {
		result[uid] = e
	}
	return result
}

func (c *StubCalendarClient) CreatedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.created)
}

func (c *StubCalendarClient) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = map[string]event.Event{}
	c.failSummaries = map[string]error{}
	c.connectionErr = nil
}
