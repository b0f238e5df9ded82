package handler

import (
	"time"

	"rollcall/internal/attendance"
)

// MarkResponse is the HTTP response for POST /attendance/marks.
type MarkResponse struct {
	ID         string    `json:"id"`
	StudentID  int64     `json:"student_id"`
	GroupID    int64     `json:"group_id"`
	Date       string    `json:"date"`
	MarkedTime string    `json:"marked_time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// EligibilityResponse is the HTTP response for GET /enrollments/eligibility.
type EligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Result   string `json:"result"`
}

// FromRecord converts a domain record to an HTTP response.
func FromRecord(record *attendance.Record) *MarkResponse {
	return &MarkResponse{
		ID:         record.ID.String(),
		StudentID:  record.StudentID.Int64(),
		GroupID:    record.GroupID.Int64(),
		Date:       record.Date.Format(time.DateOnly),
		MarkedTime: record.Marked.Clock(),
		Status:     string(record.Status),
		CreatedAt:  record.CreatedAt,
	}
}
