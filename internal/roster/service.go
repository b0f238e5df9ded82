package roster

import (
	"context"
	"fmt"
	"log/slog"

	"rollcall/internal/audit"
	"rollcall/internal/roster/metrics"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/requestcontext"
)

// Service handles enrollment requests and group configuration. Every
// enrollment passes the conflict detector before it reaches the store.
type Service struct {
	store    Store
	detector *ConflictDetector
	audit    *audit.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService wires the enrollment flow. The audit publisher and metrics may
// be nil; store and detector may not.
func NewService(store Store, detector *ConflictDetector, auditPub *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("roster store is required")
	}
	if detector == nil {
		return nil, fmt.Errorf("conflict detector is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, detector: detector, audit: auditPub, logger: logger, metrics: m}, nil
}

// EnrollRequest carries an already-validated enrollment intent.
type EnrollRequest struct {
	StudentID id.StudentID
	GroupID   id.GroupID
	TermID    id.TermID
}

// Enroll accepts the enrollment unless the candidate group's windows collide
// with an existing same-term enrollment. The colliding windows travel back in
// the error message so the caller can show the student what clashes.
func (s *Service) Enroll(ctx context.Context, req EnrollRequest) (*Enrollment, error) {
	conflict, err := s.detector.Check(ctx, req.StudentID, req.GroupID, req.TermID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStoreFailure, "conflict check failed", err)
	}
	if conflict != nil {
		s.metrics.IncrementConflictCheck("conflict")
		s.logger.InfoContext(ctx, "enrollment rejected: schedule conflict",
			"request_id", requestcontext.RequestID(ctx),
			"student_id", req.StudentID,
			"group_id", req.GroupID,
			"conflicting_group_id", conflict.GroupID,
			"existing_window", conflict.Existing.String(),
			"candidate_window", conflict.Candidate.String(),
		)
		return nil, dErrors.Newf(dErrors.CodeScheduleConflict, "%s", conflict)
	}
	s.metrics.IncrementConflictCheck("clear")

	enrollment := Enrollment{
		StudentID:  req.StudentID,
		GroupID:    req.GroupID,
		TermID:     req.TermID,
		EnrolledOn: requestcontext.Now(ctx),
	}
	if err := s.store.SaveEnrollment(ctx, enrollment); err != nil {
		if dErrors.HasCode(err, dErrors.CodeAlreadyEnrolled) {
			return nil, err
		}
		return nil, dErrors.Wrap(dErrors.CodeStoreFailure, "save enrollment", err)
	}

	s.metrics.IncrementEnrollments()
	s.emitAudit(ctx, audit.Event{
		StudentID: req.StudentID.Int64(),
		GroupID:   req.GroupID.Int64(),
		Action:    audit.ActionEnrolled,
		Detail:    enrollment.TermID.String(),
	})
	s.logger.InfoContext(ctx, "enrollment accepted",
		"request_id", requestcontext.RequestID(ctx),
		"student_id", req.StudentID,
		"group_id", req.GroupID,
		"term", req.TermID,
	)
	return &enrollment, nil
}

// ConfigureGroup validates and persists a group's windows, tolerance, and
// policy. Invalid configuration fails fast; nothing is partially written.
func (s *Service) ConfigureGroup(ctx context.Context, cfg GroupConfig) error {
	if err := cfg.Validate(); err != nil {
		s.metrics.IncrementGroupConfigWrite("invalid")
		return err
	}
	if err := s.store.SaveGroupConfig(ctx, cfg); err != nil {
		s.metrics.IncrementGroupConfigWrite("invalid")
		return dErrors.Wrap(dErrors.CodeStoreFailure, "save group config", err)
	}
	s.metrics.IncrementGroupConfigWrite("ok")
	s.logger.InfoContext(ctx, "group configured",
		"request_id", requestcontext.RequestID(ctx),
		"group_id", cfg.GroupID,
		"windows", len(cfg.Windows),
		"policy", cfg.Policy.Kind,
		"tolerance_minutes", cfg.Policy.ToleranceMinutes,
	)
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		// The audit trail is best-effort; losing an event never fails the
		// enrollment itself.
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
