// Package schedule holds the time-window value types the roster and
// attendance modules share. All times are normalized to integer minutes since
// midnight at the boundary; nothing in the engine compares time strings.
package schedule

import (
	"fmt"
	"strings"
	"time"

	dErrors "rollcall/pkg/domain-errors"
)

// Day is a teaching day. Groups meet Monday through Saturday; Sunday is not
// a valid scheduling day.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// ParseDay accepts a lowercase-insensitive day name.
func ParseDay(raw string) (Day, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for i, n := range dayNames {
		if n == name {
			return Day(i), nil
		}
	}
	return 0, dErrors.Newf(dErrors.CodeInvalidInput, "unknown day %q", raw)
}

// FromWeekday converts a time.Weekday. Sunday is rejected: no group meets
// then, so no attendance moment can fall on it.
func FromWeekday(wd time.Weekday) (Day, error) {
	if wd == time.Sunday {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "sunday is not a teaching day")
	}
	return Day(int(wd) - 1), nil
}

func (d Day) String() string {
	if d < Monday || d > Saturday {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// IsValid reports whether the day is within the Monday-Saturday range.
func (d Day) IsValid() bool {
	return d >= Monday && d <= Saturday
}

// Minute is a minute-of-day offset, 0 (midnight) through 1439 (23:59).
type Minute int

const minutesPerDay = 1440

// ParseClock converts an "HH:MM" string to a minute-of-day offset.
func ParseClock(raw string) (Minute, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "time %q is not HH:MM", raw)
	}
	return Minute(t.Hour()*60 + t.Minute()), nil
}

// MinuteOf extracts the minute-of-day offset from a wall-clock time.
func MinuteOf(t time.Time) Minute {
	return Minute(t.Hour()*60 + t.Minute())
}

// Clock renders the offset as "HH:MM".
func (m Minute) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// IsValid reports whether the offset falls within a single day.
func (m Minute) IsValid() bool {
	return m >= 0 && m < minutesPerDay
}

// Window is a single meeting slot: a day of week plus a start/end range.
// Start < End always holds; windows never cross midnight.
type Window struct {
	Day   Day
	Start Minute
	End   Minute
}

// NewWindow validates and constructs a window. Violations are configuration
// errors: a group carrying a malformed window must fail at configuration
// time, not while a student is trying to mark attendance.
func NewWindow(day Day, start, end Minute) (Window, error) {
	if !day.IsValid() {
		return Window{}, dErrors.Newf(dErrors.CodeInvalidConfig, "window day %d out of range", int(day))
	}
	if !start.IsValid() || !end.IsValid() {
		return Window{}, dErrors.New(dErrors.CodeInvalidConfig, "window minutes must be within a single day")
	}
	if start >= end {
		return Window{}, dErrors.Newf(dErrors.CodeInvalidConfig, "window start %s must precede end %s", start.Clock(), end.Clock())
	}
	return Window{Day: day, Start: start, End: end}, nil
}

// Overlaps reports whether two windows collide. The comparison is half-open:
// a window ending exactly when another starts does not overlap it, so
// back-to-back slots on the same day are fine.
func (w Window) Overlaps(other Window) bool {
	if w.Day != other.Day {
		return false
	}
	return w.Start < other.End && other.Start < w.End
}

// Contains reports whether the given moment falls inside the window. Both
// boundaries are inclusive: a mark at the exact end minute is still within
// the slot.
func (w Window) Contains(day Day, m Minute) bool {
	return w.Day == day && w.Start <= m && m <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%s %s-%s", w.Day, w.Start.Clock(), w.End.Clock())
}
