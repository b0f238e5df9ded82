package roster

import (
	"context"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// Store is the persistence contract for the roster module. Swap memory and
// postgres implementations without touching services.
//
// GroupPolicy returns a CodeNotFound error for unconfigured groups; callers
// that want the system default go through ResolvePolicy.
type Store interface {
	SaveEnrollment(ctx context.Context, e Enrollment) error
	ActiveEnrollments(ctx context.Context, studentID id.StudentID) ([]Enrollment, error)

	SaveGroupConfig(ctx context.Context, cfg GroupConfig) error
	GroupWindows(ctx context.Context, groupID id.GroupID) ([]schedule.Window, error)
	GroupPolicy(ctx context.Context, groupID id.GroupID) (GroupPolicy, error)
}

// PolicySource is the narrow read interface the attendance module consumes.
type PolicySource interface {
	GroupWindows(ctx context.Context, groupID id.GroupID) ([]schedule.Window, error)
	GroupPolicy(ctx context.Context, groupID id.GroupID) (GroupPolicy, error)
}

// EnrollmentSource is the narrow read interface conflict detection and
// eligibility checks consume.
type EnrollmentSource interface {
	ActiveEnrollments(ctx context.Context, studentID id.StudentID) ([]Enrollment, error)
	GroupWindows(ctx context.Context, groupID id.GroupID) ([]schedule.Window, error)
}

// ResolvePolicy looks up a group's policy, substituting the system default
// for groups that were never explicitly configured. Lookup failures other
// than not-found propagate.
func ResolvePolicy(ctx context.Context, src PolicySource, groupID id.GroupID) (GroupPolicy, error) {
	policy, err := src.GroupPolicy(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			return DefaultGroupPolicy(), nil
		}
		return GroupPolicy{}, err
	}
	return policy, nil
}

func isNotFound(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeNotFound)
}
