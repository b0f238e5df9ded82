package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rollcall/internal/attendance"
	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// MarkRequest is the HTTP request body for POST /attendance/marks. Date and
// marked_time default to the server-side request time when omitted, so
// kiosk-style clients can post just the IDs.
type MarkRequest struct {
	StudentID  int64  `json:"student_id"`
	GroupID    int64  `json:"group_id"`
	Date       string `json:"date,omitempty"`        // "2026-01-12"
	MarkedTime string `json:"marked_time,omitempty"` // "09:05"

	// Parsed values (populated by Validate)
	parsedStudentID id.StudentID
	parsedGroupID   id.GroupID
	parsedDate      *time.Time
	parsedMinute    *schedule.Minute
}

// Validate validates and parses the request.
// Implements the Validator interface for httputil.DecodeAndPrepare.
func (r *MarkRequest) Validate() error {
	studentID, err := id.NewStudentID(r.StudentID)
	if err != nil {
		return err
	}
	r.parsedStudentID = studentID

	groupID, err := id.NewGroupID(r.GroupID)
	if err != nil {
		return err
	}
	r.parsedGroupID = groupID

	if r.Date = strings.TrimSpace(r.Date); r.Date != "" {
		date, err := time.Parse(time.DateOnly, r.Date)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "date must look like 2026-01-12")
		}
		r.parsedDate = &date
	}
	if r.MarkedTime = strings.TrimSpace(r.MarkedTime); r.MarkedTime != "" {
		minute, err := schedule.ParseClock(r.MarkedTime)
		if err != nil {
			return err
		}
		r.parsedMinute = &minute
	}
	return nil
}

// Domain builds the service request, filling omitted fields from the
// request-pinned time.
func (r *MarkRequest) Domain(now time.Time) attendance.MarkRequest {
	date := now
	if r.parsedDate != nil {
		date = *r.parsedDate
	}
	minute := schedule.MinuteOf(now)
	if r.parsedMinute != nil {
		minute = *r.parsedMinute
	}
	return attendance.MarkRequest{
		StudentID: r.parsedStudentID,
		GroupID:   r.parsedGroupID,
		Date:      date,
		Marked:    minute,
	}
}

// eligibilityQuery is the parsed form of GET /enrollments/eligibility.
type eligibilityQuery struct {
	StudentID id.StudentID
	GroupID   id.GroupID
	At        attendance.Moment
}

func parseEligibilityQuery(r *http.Request, now time.Time) (eligibilityQuery, error) {
	q := r.URL.Query()

	rawStudent, err := strconv.ParseInt(q.Get("student_id"), 10, 64)
	if err != nil {
		return eligibilityQuery{}, dErrors.New(dErrors.CodeInvalidInput, "student_id query parameter is required")
	}
	studentID, err := id.NewStudentID(rawStudent)
	if err != nil {
		return eligibilityQuery{}, err
	}

	rawGroup, err := strconv.ParseInt(q.Get("group_id"), 10, 64)
	if err != nil {
		return eligibilityQuery{}, dErrors.New(dErrors.CodeInvalidInput, "group_id query parameter is required")
	}
	groupID, err := id.NewGroupID(rawGroup)
	if err != nil {
		return eligibilityQuery{}, err
	}

	at := now
	if raw := q.Get("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return eligibilityQuery{}, dErrors.New(dErrors.CodeInvalidInput, "at must be an RFC 3339 timestamp")
		}
	}
	moment, err := attendance.MomentOf(at)
	if err != nil {
		return eligibilityQuery{}, err
	}

	return eligibilityQuery{StudentID: studentID, GroupID: groupID, At: moment}, nil
}
