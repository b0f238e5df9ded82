// Package attendance owns eligibility checking, lateness classification, and
// attendance records. Records are the one thing this engine writes; groups
// and enrollments are read from the roster module.
package attendance

import (
	"time"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
)

// Status is the classification of a marked attendance.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// EligibilityResult says whether a marking attempt is structurally allowed,
// independent of how the mark would be classified.
type EligibilityResult string

const (
	Eligible         EligibilityResult = "eligible"
	NotEnrolled      EligibilityResult = "not_enrolled"
	NoMatchingWindow EligibilityResult = "no_matching_window"
	AlreadyMarked    EligibilityResult = "already_marked"
)

// Moment is a fully-resolved "now" for eligibility purposes: the teaching
// day, the minute-of-day, and the calendar date the mark would be filed
// under.
type Moment struct {
	Day    schedule.Day
	Minute schedule.Minute
	Date   time.Time // truncated to a date; the attendance uniqueness key
}

// MomentOf derives a Moment from a wall-clock time. Sunday times yield an
// error from schedule.FromWeekday upstream; callers convert before building.
func MomentOf(t time.Time) (Moment, error) {
	day, err := schedule.FromWeekday(t.Weekday())
	if err != nil {
		return Moment{}, err
	}
	return Moment{
		Day:    day,
		Minute: schedule.MinuteOf(t),
		Date:   DateOnly(t),
	}, nil
}

// DateOnly strips the time-of-day so records key on the calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Record is one student's attendance for one group on one date. Created
// exactly once by the marking service, never mutated or deleted here. The
// classified status is persisted with the record; reporting reads it back.
type Record struct {
	ID        id.RecordID
	StudentID id.StudentID
	GroupID   id.GroupID
	Date      time.Time
	Marked    schedule.Minute // minute-of-day the student marked
	Status    Status
	CreatedAt time.Time
}
