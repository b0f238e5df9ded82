package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/attendance"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// Service defines the interface for attendance operations.
type Service interface {
	Mark(ctx context.Context, req attendance.MarkRequest, opts ...attendance.MarkOption) (*attendance.Record, error)
	CanMark(ctx context.Context, studentID id.StudentID, groupID id.GroupID, at attendance.Moment) (attendance.EligibilityResult, error)
}

// Handler wires attendance endpoints to the attendance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an attendance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts attendance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attendance/marks", h.handleMark)
	r.Get("/enrollments/eligibility", h.handleEligibility)
}

// handleMark handles POST /attendance/marks.
func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[MarkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Mark(ctx, req.Domain(requestcontext.Now(ctx)))
	if err != nil {
		h.logMarkFailure(ctx, requestID, req, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "mark handled",
		"request_id", requestID,
		"student_id", req.StudentID,
		"group_id", req.GroupID,
		"status", record.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRecord(record))
}

// handleEligibility handles GET /enrollments/eligibility. Query parameters:
// student_id, group_id, and an optional RFC 3339 "at" (defaults to the
// request time).
func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	query, err := parseEligibilityQuery(r, requestcontext.Now(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.CanMark(ctx, query.StudentID, query.GroupID, query.At)
	if err != nil {
		h.logger.ErrorContext(ctx, "eligibility check failed",
			"request_id", requestID,
			"student_id", query.StudentID,
			"group_id", query.GroupID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, EligibilityResponse{
		Eligible: result == attendance.Eligible,
		Result:   string(result),
	})
}

func (h *Handler) logMarkFailure(ctx context.Context, requestID string, req MarkRequest, err error) {
	// Eligibility refusals are client outcomes, not server faults.
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeStoreFailure {
		h.logger.ErrorContext(ctx, "mark failed",
			"request_id", requestID,
			"student_id", req.StudentID,
			"group_id", req.GroupID,
			"error", err,
		)
		return
	}
	h.logger.InfoContext(ctx, "mark refused",
		"request_id", requestID,
		"student_id", req.StudentID,
		"group_id", req.GroupID,
		"error", err,
	)
}
