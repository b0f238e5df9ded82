// Package audit keeps an append-only trail of roster and attendance actions.
// Events are emitted from domain services and fanned out to whichever sink is
// wired: the in-memory store, or Kafka when brokers are configured.
package audit

import (
	"context"
	"time"
)

// Action names the domain event being recorded.
type Action string

const (
	ActionEnrolled         Action = "enrolled"
	ActionAttendanceMarked Action = "attendance_marked"
	ActionMarkRefused      Action = "mark_refused"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	StudentID int64     `json:"student_id"`
	GroupID   int64     `json:"group_id"`
	Action    Action    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

// Store persists audit events. Append-only; nothing updates or deletes.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByStudent(ctx context.Context, studentID int64) ([]Event, error)
}
