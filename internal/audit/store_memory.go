package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events in process memory. Default sink for tests and
// single-node deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByStudent(_ context.Context, studentID int64) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}
