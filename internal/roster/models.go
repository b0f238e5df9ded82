// Package roster owns enrollments and per-group scheduling configuration.
// The attendance module reads this data; it never writes it.
package roster

import (
	"strings"
	"time"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// PolicyKind selects which classification policy a group uses. It is a
// persisted configuration field, not a runtime type switch.
type PolicyKind string

const (
	PolicyLenient  PolicyKind = "lenient"
	PolicyStandard PolicyKind = "standard"
	PolicyStrict   PolicyKind = "strict"
)

// ParsePolicyKind validates a raw policy name.
func ParsePolicyKind(raw string) (PolicyKind, error) {
	switch kind := PolicyKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case PolicyLenient, PolicyStandard, PolicyStrict:
		return kind, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown policy kind %q", raw)
	}
}

// Tolerance bounds. A group may forgive between zero and one hour of
// lateness before the late multiplier kicks in.
const (
	MinToleranceMinutes = 0
	MaxToleranceMinutes = 60
)

// Defaults applied when a group has never been explicitly configured.
const (
	DefaultToleranceMinutes = 10
	DefaultPolicy           = PolicyStandard
)

// GroupPolicy is the classification configuration of one group.
type GroupPolicy struct {
	ToleranceMinutes int
	Kind             PolicyKind
}

// DefaultGroupPolicy is what an unconfigured group resolves to.
func DefaultGroupPolicy() GroupPolicy {
	return GroupPolicy{ToleranceMinutes: DefaultToleranceMinutes, Kind: DefaultPolicy}
}

// Validate enforces policy invariants at configuration time.
func (p GroupPolicy) Validate() error {
	if p.ToleranceMinutes < MinToleranceMinutes || p.ToleranceMinutes > MaxToleranceMinutes {
		return dErrors.Newf(dErrors.CodeInvalidConfig,
			"tolerance %d outside [%d, %d] minutes", p.ToleranceMinutes, MinToleranceMinutes, MaxToleranceMinutes)
	}
	switch p.Kind {
	case PolicyLenient, PolicyStandard, PolicyStrict:
		return nil
	default:
		return dErrors.Newf(dErrors.CodeInvalidConfig, "unknown policy kind %q", p.Kind)
	}
}

// GroupConfig is the full administrator-owned configuration of a group:
// its meeting windows plus its classification policy. A group with zero
// windows is legal but can never conflict and never becomes eligible for
// marking; an unscheduled group has no valid attendance moment.
type GroupConfig struct {
	GroupID id.GroupID
	Windows []schedule.Window
	Policy  GroupPolicy
}

// Validate fails fast on any invariant violation so a misconfigured group is
// rejected at configuration time rather than silently defaulted.
func (c GroupConfig) Validate() error {
	if c.GroupID <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "group ID must be positive")
	}
	for _, w := range c.Windows {
		if _, err := schedule.NewWindow(w.Day, w.Start, w.End); err != nil {
			return err
		}
	}
	return c.Policy.Validate()
}

// Enrollment ties a student to a group for one term. Enrollments are
// immutable once created; at most one exists per (student, group, term).
type Enrollment struct {
	StudentID  id.StudentID
	GroupID    id.GroupID
	TermID     id.TermID
	EnrolledOn time.Time
}
