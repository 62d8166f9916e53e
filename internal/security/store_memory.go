package security

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryStore keeps events and alerts in slices for tests and DSN-less
// deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	alerts []Alert
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) InsertEvent(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListBySeverities(_ context.Context, severities []Severity, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		for _, sev := range severities {
			if e.Severity == sev {
				out = append(out, e)
				break
			}
		}
	}
	return newestFirst(out, limit), nil
}

func (s *InMemoryStore) ListByTypesSince(_ context.Context, eventTypes []string, since time.Time, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.CreatedAt.Before(since) {
			continue
		}
		for _, t := range eventTypes {
			if e.EventType == t {
				out = append(out, e)
				break
			}
		}
	}
	return newestFirst(out, limit), nil
}

func (s *InMemoryStore) InsertAlert(_ context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *InMemoryStore) ListAlerts(_ context.Context, limit int) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Alert{}, s.alerts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Alerts returns every alert, for test assertions.
func (s *InMemoryStore) Alerts() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Alert{}, s.alerts...)
}

// Events returns every event, for test assertions.
func (s *InMemoryStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}

func newestFirst(events []Event, limit int) []Event {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
