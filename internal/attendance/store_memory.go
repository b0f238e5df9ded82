package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// InMemoryStore keeps records keyed by (student, group, date). The
// existence check and insert happen under one lock acquisition, giving the
// same insert-or-reject atomicity the postgres unique constraint provides.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

func recordKey(studentID id.StudentID, groupID id.GroupID, date time.Time) string {
	return fmt.Sprintf("%d|%d|%s", studentID, groupID, date.Format(time.DateOnly))
}

func (s *InMemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey(record.StudentID, record.GroupID, record.Date)
	if _, exists := s.records[key]; exists {
		return dErrors.Newf(dErrors.CodeAlreadyMarked,
			"attendance already recorded for student %d in group %d on %s",
			record.StudentID, record.GroupID, record.Date.Format(time.DateOnly))
	}
	s.records[key] = record
	return nil
}

func (s *InMemoryStore) HasForDate(_ context.Context, studentID id.StudentID, groupID id.GroupID, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.records[recordKey(studentID, groupID, date)]
	return exists, nil
}

func (s *InMemoryStore) ListByGroupAndDate(_ context.Context, groupID id.GroupID, date time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := date.Format(time.DateOnly)
	var out []Record
	for _, r := range s.records {
		if r.GroupID == groupID && r.Date.Format(time.DateOnly) == day {
			out = append(out, r)
		}
	}
	return out, nil
}
