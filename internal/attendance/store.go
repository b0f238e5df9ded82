package attendance

import (
	"context"
	"time"

	id "rollcall/pkg/domain"
)

// Store persists attendance records. Save must be atomic with respect to the
// one-record-per-(student, group, date) invariant: under concurrent marks
// from the same student, exactly one insert wins and the rest come back with
// CodeAlreadyMarked. The engine performs a convenience pre-check, but this
// boundary is the real guarantee.
type Store interface {
	Save(ctx context.Context, record Record) error
	HasForDate(ctx context.Context, studentID id.StudentID, groupID id.GroupID, date time.Time) (bool, error)
	ListByGroupAndDate(ctx context.Context, groupID id.GroupID, date time.Time) ([]Record, error)
}
