package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/roster"
	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// Service defines the interface for roster operations.
type Service interface {
	Enroll(ctx context.Context, req roster.EnrollRequest) (*roster.Enrollment, error)
	ConfigureGroup(ctx context.Context, cfg roster.GroupConfig) error
}

// Handler wires roster endpoints to the roster service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a roster handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts roster endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/enrollments", h.handleEnroll)
	r.Put("/groups/{groupID}/schedule", h.handleConfigureGroup)
}

// EnrollRequest is the HTTP request body for POST /enrollments.
type EnrollRequest struct {
	StudentID int64  `json:"student_id"`
	GroupID   int64  `json:"group_id"`
	Term      string `json:"term"` // "2026-fall"

	parsed roster.EnrollRequest
}

// Validate validates and parses the request.
// Implements the Validator interface for httputil.DecodeAndPrepare.
func (r *EnrollRequest) Validate() error {
	studentID, err := id.NewStudentID(r.StudentID)
	if err != nil {
		return err
	}
	groupID, err := id.NewGroupID(r.GroupID)
	if err != nil {
		return err
	}
	term, err := id.ParseTermID(r.Term)
	if err != nil {
		return err
	}
	r.parsed = roster.EnrollRequest{StudentID: studentID, GroupID: groupID, TermID: term}
	return nil
}

// EnrollResponse is the HTTP response for POST /enrollments.
type EnrollResponse struct {
	StudentID  int64  `json:"student_id"`
	GroupID    int64  `json:"group_id"`
	Term       string `json:"term"`
	EnrolledOn string `json:"enrolled_on"`
}

// WindowRequest is one schedule window in a group configuration body.
type WindowRequest struct {
	Day   string `json:"day"`   // "monday"
	Start string `json:"start"` // "08:00"
	End   string `json:"end"`   // "10:00"
}

// ConfigureGroupRequest is the HTTP request body for
// PUT /groups/{groupID}/schedule. The group ID travels in the path.
type ConfigureGroupRequest struct {
	Windows          []WindowRequest `json:"windows"`
	ToleranceMinutes *int            `json:"tolerance_minutes,omitempty"`
	Policy           string          `json:"policy,omitempty"` // "lenient", "standard", "strict"

	parsedWindows []schedule.Window
	parsedPolicy  roster.GroupPolicy
}

// Validate validates and parses the request.
func (r *ConfigureGroupRequest) Validate() error {
	r.parsedWindows = make([]schedule.Window, 0, len(r.Windows))
	for _, raw := range r.Windows {
		day, err := schedule.ParseDay(raw.Day)
		if err != nil {
			return err
		}
		start, err := schedule.ParseClock(raw.Start)
		if err != nil {
			return err
		}
		end, err := schedule.ParseClock(raw.End)
		if err != nil {
			return err
		}
		window, err := schedule.NewWindow(day, start, end)
		if err != nil {
			return err
		}
		r.parsedWindows = append(r.parsedWindows, window)
	}

	r.parsedPolicy = roster.DefaultGroupPolicy()
	if r.Policy = strings.TrimSpace(r.Policy); r.Policy != "" {
		kind, err := roster.ParsePolicyKind(r.Policy)
		if err != nil {
			return err
		}
		r.parsedPolicy.Kind = kind
	}
	if r.ToleranceMinutes != nil {
		r.parsedPolicy.ToleranceMinutes = *r.ToleranceMinutes
	}
	return r.parsedPolicy.Validate()
}

// handleEnroll handles POST /enrollments.
func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EnrollRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	enrollment, err := h.service.Enroll(ctx, req.parsed)
	if err != nil {
		// Conflicts and duplicates are expected outcomes; log them quietly.
		if code := dErrors.CodeOf(err); code == dErrors.CodeScheduleConflict || code == dErrors.CodeAlreadyEnrolled {
			h.logger.InfoContext(ctx, "enrollment refused",
				"request_id", requestID,
				"student_id", req.StudentID,
				"group_id", req.GroupID,
				"error", err,
			)
		} else {
			h.logger.ErrorContext(ctx, "enrollment failed",
				"request_id", requestID,
				"student_id", req.StudentID,
				"group_id", req.GroupID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, EnrollResponse{
		StudentID:  enrollment.StudentID.Int64(),
		GroupID:    enrollment.GroupID.Int64(),
		Term:       enrollment.TermID.String(),
		EnrolledOn: enrollment.EnrolledOn.Format(time.DateOnly),
	})
}

// handleConfigureGroup handles PUT /groups/{groupID}/schedule.
func (h *Handler) handleConfigureGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	rawGroupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "group ID must be an integer"))
		return
	}
	groupID, err := id.NewGroupID(rawGroupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ConfigureGroupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cfg := roster.GroupConfig{
		GroupID: groupID,
		Windows: req.parsedWindows,
		Policy:  req.parsedPolicy,
	}
	if err := h.service.ConfigureGroup(ctx, cfg); err != nil {
		h.logger.ErrorContext(ctx, "group configuration failed",
			"request_id", requestID,
			"group_id", groupID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "group configured",
		"request_id", requestID,
		"group_id", groupID,
		"windows", len(cfg.Windows),
		"policy", cfg.Policy.Kind,
	)
	w.WriteHeader(http.StatusNoContent)
}
