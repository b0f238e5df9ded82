package attendance

import (
	"context"
	"fmt"
	"time"

	"rollcall/internal/roster"
	id "rollcall/pkg/domain"
)

// RecordSource is the slice of the attendance store eligibility needs.
type RecordSource interface {
	HasForDate(ctx context.Context, studentID id.StudentID, groupID id.GroupID, date time.Time) (bool, error)
}

// Checker decides whether "now" is a valid moment for a student to mark
// attendance in a group. It re-reads the collaborator stores on every call
// and holds no state of its own.
//
// The in-process duplicate check here is a convenience pre-check for the UI;
// the store's atomic insert-or-reject is what actually holds under
// concurrent marks.
type Checker struct {
	roster  roster.EnrollmentSource
	records RecordSource
}

func NewChecker(rosterSrc roster.EnrollmentSource, records RecordSource) (*Checker, error) {
	if rosterSrc == nil {
		return nil, fmt.Errorf("roster source is required")
	}
	if records == nil {
		return nil, fmt.Errorf("record source is required")
	}
	return &Checker{roster: rosterSrc, records: records}, nil
}

// CanMark runs the eligibility checks in order, stopping at the first
// failure:
//
//  1. the student is enrolled in the group
//  2. some window of the group contains the moment - the window itself is
//     the allowed marking interval; tolerance never widens it
//  3. no record exists yet for (student, group, date)
//
// Only Eligible permits the marking service to proceed.
func (c *Checker) CanMark(ctx context.Context, studentID id.StudentID, groupID id.GroupID, at Moment) (EligibilityResult, error) {
	enrollments, err := c.roster.ActiveEnrollments(ctx, studentID)
	if err != nil {
		return "", fmt.Errorf("load enrollments: %w", err)
	}
	enrolled := false
	for _, e := range enrollments {
		if e.GroupID == groupID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return NotEnrolled, nil
	}

	windows, err := c.roster.GroupWindows(ctx, groupID)
	if err != nil {
		return "", fmt.Errorf("load group windows: %w", err)
	}
	inWindow := false
	for _, w := range windows {
		if w.Contains(at.Day, at.Minute) {
			inWindow = true
			break
		}
	}
	if !inWindow {
		// Also covers groups with zero configured windows: an unscheduled
		// group has no valid attendance moment.
		return NoMatchingWindow, nil
	}

	marked, err := c.records.HasForDate(ctx, studentID, groupID, at.Date)
	if err != nil {
		return "", fmt.Errorf("check existing record: %w", err)
	}
	if marked {
		return AlreadyMarked, nil
	}
	return Eligible, nil
}
