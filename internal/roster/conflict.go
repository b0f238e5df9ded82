package roster

import (
	"context"
	"fmt"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
)

// Conflict describes the first collision found between a candidate group and
// an existing enrollment, with both windows so callers can show the student
// exactly which slots collide.
type Conflict struct {
	GroupID   id.GroupID      // the already-enrolled group
	Existing  schedule.Window // its colliding window
	Candidate schedule.Window // the candidate group's window
}

func (c *Conflict) String() string {
	return fmt.Sprintf("group %d %s collides with candidate %s", c.GroupID, c.Existing, c.Candidate)
}

// ConflictDetector answers whether enrolling a student into a candidate
// group would double-book any of their meeting slots. It re-reads the store
// on every call; there is no cached state to go stale.
type ConflictDetector struct {
	store EnrollmentSource
}

func NewConflictDetector(store EnrollmentSource) (*ConflictDetector, error) {
	if store == nil {
		return nil, fmt.Errorf("enrollment source is required")
	}
	return &ConflictDetector{store: store}, nil
}

// Check compares every window of the student's active same-term enrollments
// against every window of the candidate group, returning the first collision
// or nil when the schedule is clear.
//
// The candidate group itself is skipped, so re-checking after the enrollment
// was accepted gives the same answer as before it.
func (d *ConflictDetector) Check(ctx context.Context, studentID id.StudentID, candidateGroupID id.GroupID, termID id.TermID) (*Conflict, error) {
	candidateWindows, err := d.store.GroupWindows(ctx, candidateGroupID)
	if err != nil {
		return nil, fmt.Errorf("load candidate windows: %w", err)
	}
	if len(candidateWindows) == 0 {
		// An unscheduled group occupies no slots and can never conflict.
		return nil, nil
	}

	enrollments, err := d.store.ActiveEnrollments(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	for _, e := range enrollments {
		if e.GroupID == candidateGroupID || e.TermID != termID {
			continue
		}
		existingWindows, err := d.store.GroupWindows(ctx, e.GroupID)
		if err != nil {
			return nil, fmt.Errorf("load windows for group %d: %w", e.GroupID, err)
		}
		for _, existing := range existingWindows {
			for _, candidate := range candidateWindows {
				if existing.Overlaps(candidate) {
					return &Conflict{GroupID: e.GroupID, Existing: existing, Candidate: candidate}, nil
				}
			}
		}
	}
	return nil, nil
}

// HasConflict is the boolean wrapper the enrollment flow uses.
func (d *ConflictDetector) HasConflict(ctx context.Context, studentID id.StudentID, candidateGroupID id.GroupID, termID id.TermID) (bool, error) {
	conflict, err := d.Check(ctx, studentID, candidateGroupID, termID)
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}
