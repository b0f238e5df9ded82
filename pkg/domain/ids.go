// Package domain holds the typed identifiers shared across modules. Typed IDs
// make cross-entity mixups a compile error and centralize boundary validation.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "rollcall/pkg/domain-errors"
)

// StudentID identifies a student in the roster subsystem.
type StudentID int64

// GroupID identifies a scheduled group.
type GroupID int64

// NewStudentID validates and wraps a raw student identifier.
// IDs must be positive.
func NewStudentID(raw int64) (StudentID, error) {
	if raw <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "student ID must be positive")
	}
	return StudentID(raw), nil
}

// NewGroupID validates and wraps a raw group identifier.
func NewGroupID(raw int64) (GroupID, error) {
	if raw <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "group ID must be positive")
	}
	return GroupID(raw), nil
}

func (s StudentID) Int64() int64 { return int64(s) }
func (g GroupID) Int64() int64   { return int64(g) }

// TermID identifies an academic period as "<year>-<semester>",
// e.g. "2026-fall". Semesters run within a single year; windows never
// straddle terms.
type TermID string

var termIDPattern = regexp.MustCompile(`^\d{4}-(spring|summer|fall)$`)

// ParseTermID validates the term format and normalizes case.
func ParseTermID(raw string) (TermID, error) {
	term := TermID(strings.ToLower(strings.TrimSpace(raw)))
	if !termIDPattern.MatchString(string(term)) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "term must look like 2026-fall")
	}
	return term, nil
}

func (t TermID) String() string { return string(t) }

// RecordID identifies an attendance record. Records are engine-owned, so the
// engine mints the IDs.
type RecordID uuid.UUID

// NewRecordID mints a fresh record identifier.
func NewRecordID() RecordID {
	return RecordID(uuid.New())
}

// ParseRecordID validates an incoming record identifier.
func ParseRecordID(raw string) (RecordID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil || parsed == uuid.Nil {
		return RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "record ID must be a valid UUID")
	}
	return RecordID(parsed), nil
}

func (r RecordID) String() string { return uuid.UUID(r).String() }
