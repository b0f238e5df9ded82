//go:build integration

package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/attendance"
	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/testutil/containers"
)

type AttendancePostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *attendance.PostgresStore
}

func TestAttendancePostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AttendancePostgresSuite))
}

func (s *AttendancePostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	store, err := attendance.NewPostgresStore(s.pg.DB)
	s.Require().NoError(err)
	s.Require().NoError(store.EnsureSchema(context.Background()))
	s.store = store
}

func (s *AttendancePostgresSuite) SetupTest() {
	err := s.pg.TruncateAll(context.Background(), "attendance_records")
	s.Require().NoError(err)
}

func record(studentID int64, date time.Time) attendance.Record {
	return attendance.Record{
		ID:        id.NewRecordID(),
		StudentID: id.StudentID(studentID),
		GroupID:   id.GroupID(42),
		Date:      date,
		Marked:    schedule.Minute(8*60 + 5),
		Status:    attendance.StatusPresent,
		CreatedAt: date.Add(8 * time.Hour),
	}
}

func (s *AttendancePostgresSuite) TestSaveAndQuery() {
	ctx := context.Background()
	date := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	saved := record(7, date)
	s.Require().NoError(s.store.Save(ctx, saved))

	exists, err := s.store.HasForDate(ctx, id.StudentID(7), id.GroupID(42), date)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.HasForDate(ctx, id.StudentID(7), id.GroupID(42), date.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.False(exists)

	records, err := s.store.ListByGroupAndDate(ctx, id.GroupID(42), date)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(saved.ID, records[0].ID)
	s.Equal(saved.Marked, records[0].Marked)
	s.Equal(attendance.StatusPresent, records[0].Status)
}

func (s *AttendancePostgresSuite) TestUniqueConstraintHoldsUnderConcurrency() {
	date := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.store.Save(context.Background(), record(7, date))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(dErrors.HasCode(err, dErrors.CodeAlreadyMarked), "got %v", err)
		}
	}
	s.Equal(1, succeeded, "the unique constraint admits exactly one mark")
}

func (s *AttendancePostgresSuite) TestListOrderedByCreation() {
	ctx := context.Background()
	date := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	first := record(7, date)
	first.CreatedAt = date.Add(8 * time.Hour)
	second := record(8, date)
	second.CreatedAt = date.Add(9 * time.Hour)

	// Insert out of order; the list comes back by creation time.
	s.Require().NoError(s.store.Save(ctx, second))
	s.Require().NoError(s.store.Save(ctx, first))

	records, err := s.store.ListByGroupAndDate(ctx, id.GroupID(42), date)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(first.ID, records[0].ID)
	s.Equal(second.ID, records[1].ID)
}
