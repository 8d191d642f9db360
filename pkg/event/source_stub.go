package event

import (
	"context"
	"sync"
)

// SourceStub is an in-memory Source for tests.
type SourceStub struct {
	mu     sync.RWMutex
	events []RawEvent
	err    error
	calls  int
}

func NewSourceStub() *SourceStub {
	return &SourceStub{}
}

func (s *SourceStub) ScrapeEvents(ctx context.Context) ([]RawEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	result := make([]RawEvent, len(s.events))
	copy(result, s.events)
	return result, nil
}

func (s *SourceStub) SetEvents(events []RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

func (s *SourceStub) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times ScrapeEvents was invoked.
func (s *SourceStub) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}
