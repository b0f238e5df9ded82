package roster

import (
	"context"
	"fmt"
	"sync"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// InMemoryStore backs the roster module for tests and single-node setups.
// The enrollment map key encodes the uniqueness invariant, so duplicate
// detection and insertion happen under one lock acquisition.
type InMemoryStore struct {
	mu          sync.RWMutex
	enrollments map[string]Enrollment // key: student|group|term
	configs     map[id.GroupID]GroupConfig
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		enrollments: make(map[string]Enrollment),
		configs:     make(map[id.GroupID]GroupConfig),
	}
}

func enrollmentKey(e Enrollment) string {
	return fmt.Sprintf("%d|%d|%s", e.StudentID, e.GroupID, e.TermID)
}

func (s *InMemoryStore) SaveEnrollment(_ context.Context, e Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := enrollmentKey(e)
	if _, exists := s.enrollments[key]; exists {
		return dErrors.Newf(dErrors.CodeAlreadyEnrolled,
			"student %d already enrolled in group %d for %s", e.StudentID, e.GroupID, e.TermID)
	}
	s.enrollments[key] = e
	return nil
}

func (s *InMemoryStore) ActiveEnrollments(_ context.Context, studentID id.StudentID) ([]Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Enrollment
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryStore) SaveGroupConfig(_ context.Context, cfg GroupConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.GroupID] = cfg
	return nil
}

func (s *InMemoryStore) GroupWindows(_ context.Context, groupID id.GroupID) ([]schedule.Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[groupID]
	if !ok {
		return nil, nil
	}
	return append([]schedule.Window{}, cfg.Windows...), nil
}

func (s *InMemoryStore) GroupPolicy(_ context.Context, groupID id.GroupID) (GroupPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[groupID]
	if !ok {
		return GroupPolicy{}, dErrors.Newf(dErrors.CodeNotFound, "group %d has no policy configured", groupID)
	}
	return cfg.Policy, nil
}
