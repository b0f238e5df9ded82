package attendance

import (
	"rollcall/internal/roster"
	"rollcall/internal/schedule"
)

// Late multipliers: a mark later than tolerance but within
// multiplier*tolerance of the scheduled start counts as late rather than
// absent.
//
// The strict multiplier currently equals the standard one; the two policies
// are behaviorally identical today. Strict exists as a separate policy value
// so groups can opt in now and a future tightening (e.g. 2x) is a one-line
// change here rather than a data migration.
const (
	standardLateMultiplier = 3
	strictLateMultiplier   = 3
)

// Classify turns a marked minute into a status under the group's policy.
// This is pure domain logic - no I/O, no side effects.
//
// Lateness is measured from the scheduled start; marks before the start are
// treated as on time (diff clamped to zero), so arriving early is never
// penalized. Eligibility has already established that the mark falls inside
// a window, so tolerance only affects the label, never whether the mark is
// accepted.
func Classify(kind roster.PolicyKind, marked, scheduledStart schedule.Minute, toleranceMinutes int) Status {
	diff := int(marked) - int(scheduledStart)
	if diff < 0 {
		diff = 0
	}

	switch kind {
	case roster.PolicyLenient:
		// Unconditional presence credit; tolerance is irrelevant here.
		// Retained for groups that want it that way (virtual or optional
		// sessions).
		return StatusPresent
	case roster.PolicyStrict:
		return classifyWithMultiplier(diff, toleranceMinutes, strictLateMultiplier)
	default:
		return classifyWithMultiplier(diff, toleranceMinutes, standardLateMultiplier)
	}
}

func classifyWithMultiplier(diff, toleranceMinutes, multiplier int) Status {
	switch {
	case diff <= toleranceMinutes:
		return StatusPresent
	case diff <= multiplier*toleranceMinutes:
		return StatusLate
	default:
		return StatusAbsent
	}
}
