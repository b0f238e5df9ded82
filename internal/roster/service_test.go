package roster

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/audit"
	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/requestcontext"
)

type EnrollServiceSuite struct {
	suite.Suite
	ctx        context.Context
	store      *InMemoryStore
	auditStore *audit.InMemoryStore
	service    *Service
}

func TestEnrollServiceSuite(t *testing.T) {
	suite.Run(t, new(EnrollServiceSuite))
}

func (s *EnrollServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()

	detector, err := NewConflictDetector(s.store)
	s.Require().NoError(err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service, err := NewService(s.store, detector, audit.NewPublisher(s.auditStore), logger, nil)
	s.Require().NoError(err)
	s.service = service

	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))

	configureGroup(s.T(), s.store, 1, window(s.T(), schedule.Monday, 8, 0, 10, 0))
	configureGroup(s.T(), s.store, 2, window(s.T(), schedule.Monday, 9, 0, 11, 0))
	configureGroup(s.T(), s.store, 3, window(s.T(), schedule.Monday, 10, 0, 12, 0))
}

func (s *EnrollServiceSuite) TestEnrollAccepted() {
	enrollment, err := s.service.Enroll(s.ctx, EnrollRequest{
		StudentID: id.StudentID(7), GroupID: id.GroupID(1), TermID: testTerm,
	})
	s.Require().NoError(err)
	s.Equal(id.GroupID(1), enrollment.GroupID)
	s.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), enrollment.EnrolledOn)

	events, err := s.auditStore.ListByStudent(context.Background(), 7)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionEnrolled, events[0].Action)
	s.Equal("2026-spring", events[0].Detail)
}

func (s *EnrollServiceSuite) TestEnrollRejectedOnConflict() {
	_, err := s.service.Enroll(s.ctx, EnrollRequest{
		StudentID: id.StudentID(7), GroupID: id.GroupID(1), TermID: testTerm,
	})
	s.Require().NoError(err)

	// Group 2 overlaps group 1 on Monday morning.
	_, err = s.service.Enroll(s.ctx, EnrollRequest{
		StudentID: id.StudentID(7), GroupID: id.GroupID(2), TermID: testTerm,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeScheduleConflict), "got %v", err)
	s.Contains(err.Error(), "monday 08:00-10:00")
	s.Contains(err.Error(), "monday 09:00-11:00")

	// Nothing was written.
	enrollments, listErr := s.store.ActiveEnrollments(context.Background(), id.StudentID(7))
	s.Require().NoError(listErr)
	s.Len(enrollments, 1)
}

func (s *EnrollServiceSuite) TestEnrollBackToBackAccepted() {
	_, err := s.service.Enroll(s.ctx, EnrollRequest{
		StudentID: id.StudentID(7), GroupID: id.GroupID(1), TermID: testTerm,
	})
	s.Require().NoError(err)

	// Group 3 starts exactly when group 1 ends; that is not a conflict.
	_, err = s.service.Enroll(s.ctx, EnrollRequest{
		StudentID: id.StudentID(7), GroupID: id.GroupID(3), TermID: testTerm,
	})
	s.Require().NoError(err)
}

func (s *EnrollServiceSuite) TestEnrollDuplicateRefused() {
	req := EnrollRequest{StudentID: id.StudentID(7), GroupID: id.GroupID(1), TermID: testTerm}

	_, err := s.service.Enroll(s.ctx, req)
	s.Require().NoError(err)

	_, err = s.service.Enroll(s.ctx, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyEnrolled), "got %v", err)
}

func (s *EnrollServiceSuite) TestConfigureGroupRejectsInvalid() {
	err := s.service.ConfigureGroup(s.ctx, GroupConfig{
		GroupID: id.GroupID(9),
		Policy:  GroupPolicy{ToleranceMinutes: 61, Kind: PolicyStandard},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig), "got %v", err)

	_, err = s.store.GroupPolicy(context.Background(), id.GroupID(9))
	s.Require().Error(err, "invalid config must not be written")
}

func (s *EnrollServiceSuite) TestConfigureGroupReplacesSchedule() {
	err := s.service.ConfigureGroup(s.ctx, GroupConfig{
		GroupID: id.GroupID(1),
		Windows: []schedule.Window{window(s.T(), schedule.Friday, 13, 0, 15, 0)},
		Policy:  GroupPolicy{ToleranceMinutes: 5, Kind: PolicyStrict},
	})
	s.Require().NoError(err)

	windows, err := s.store.GroupWindows(context.Background(), id.GroupID(1))
	s.Require().NoError(err)
	s.Require().Len(windows, 1)
	s.Equal(schedule.Friday, windows[0].Day)

	policy, err := s.store.GroupPolicy(context.Background(), id.GroupID(1))
	s.Require().NoError(err)
	s.Equal(GroupPolicy{ToleranceMinutes: 5, Kind: PolicyStrict}, policy)
}
