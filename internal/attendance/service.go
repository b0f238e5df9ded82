package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rollcall/internal/attendance/metrics"
	"rollcall/internal/audit"
	"rollcall/internal/roster"
	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/requestcontext"
)

// RosterStore is everything the marking service reads from the roster module.
type RosterStore interface {
	roster.EnrollmentSource
	roster.PolicySource
}

// Service orchestrates attendance marking: eligibility, policy resolution,
// classification, persistence. All in-process steps are synchronous; the
// store write is the only side effect.
type Service struct {
	roster  RosterStore
	records Store
	checker *Checker
	audit   *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewService wires the marking flow. Audit publisher and metrics may be nil.
func NewService(rosterStore RosterStore, records Store, auditPub *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if rosterStore == nil {
		return nil, fmt.Errorf("roster store is required")
	}
	if records == nil {
		return nil, fmt.Errorf("attendance store is required")
	}
	checker, err := NewChecker(rosterStore, records)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		roster:  rosterStore,
		records: records,
		checker: checker,
		audit:   auditPub,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("rollcall/attendance"),
	}, nil
}

// CanMark answers the read-side eligibility question without recording
// anything (e.g. enabling a "mark attendance" button).
func (s *Service) CanMark(ctx context.Context, studentID id.StudentID, groupID id.GroupID, at Moment) (EligibilityResult, error) {
	return s.checker.CanMark(ctx, studentID, groupID, at)
}

// MarkRequest carries an already-validated marking intent. Date is the
// calendar date the record files under; Marked is the minute-of-day the
// student marked.
type MarkRequest struct {
	StudentID id.StudentID
	GroupID   id.GroupID
	Date      time.Time
	Marked    schedule.Minute
}

// MarkOption tweaks a single Mark call.
type MarkOption func(*markConfig)

type markConfig struct {
	policyOverride *roster.PolicyKind
}

// WithPolicy overrides the group-resolved policy for one call. Used by test
// and demo tooling; production callers let the group configuration decide.
// The override is call-scoped, so concurrent marks never see each other's
// policy.
func WithPolicy(kind roster.PolicyKind) MarkOption {
	return func(c *markConfig) {
		c.policyOverride = &kind
	}
}

// Mark records attendance for one student in one group on one date.
//
// Any eligibility refusal maps 1:1 to a coded error; only an Eligible result
// reaches classification and the store. The returned record carries the
// persisted status.
func (s *Service) Mark(ctx context.Context, req MarkRequest, opts ...MarkOption) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.Mark", trace.WithAttributes(
		attribute.Int64("student_id", req.StudentID.Int64()),
		attribute.Int64("group_id", req.GroupID.Int64()),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveMarkLatency(time.Since(start)) }()

	var cfg markConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	moment, err := s.momentOf(req)
	if err != nil {
		return nil, err
	}

	result, err := s.checker.CanMark(ctx, req.StudentID, req.GroupID, moment)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStoreFailure, "eligibility check failed", err)
	}
	if result != Eligible {
		s.metrics.IncrementRefusal(string(result))
		s.emitAudit(ctx, audit.Event{
			StudentID: req.StudentID.Int64(),
			GroupID:   req.GroupID.Int64(),
			Action:    audit.ActionMarkRefused,
			Detail:    string(result),
		})
		return nil, refusalError(result, req)
	}

	scheduledStart, err := s.matchingWindowStart(ctx, req.GroupID, moment)
	if err != nil {
		return nil, err
	}

	policy, err := s.resolvePolicy(ctx, req.GroupID, cfg)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStoreFailure, "resolve group policy", err)
	}

	status := Classify(policy.Kind, req.Marked, scheduledStart, policy.ToleranceMinutes)

	record := Record{
		ID:        id.NewRecordID(),
		StudentID: req.StudentID,
		GroupID:   req.GroupID,
		Date:      moment.Date,
		Marked:    req.Marked,
		Status:    status,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.records.Save(ctx, record); err != nil {
		if dErrors.HasCode(err, dErrors.CodeAlreadyMarked) {
			// Lost the race against a concurrent mark; the store's atomic
			// insert-or-reject is authoritative.
			s.metrics.IncrementRefusal(string(AlreadyMarked))
			return nil, err
		}
		return nil, dErrors.Wrap(dErrors.CodeStoreFailure, "save attendance record", err)
	}

	s.metrics.IncrementMark(string(status), string(policy.Kind))
	s.emitAudit(ctx, audit.Event{
		StudentID: req.StudentID.Int64(),
		GroupID:   req.GroupID.Int64(),
		Action:    audit.ActionAttendanceMarked,
		Detail:    string(status),
	})
	s.logger.InfoContext(ctx, "attendance marked",
		"request_id", requestcontext.RequestID(ctx),
		"student_id", req.StudentID,
		"group_id", req.GroupID,
		"date", moment.Date.Format(time.DateOnly),
		"marked", req.Marked.Clock(),
		"status", status,
		"policy", policy.Kind,
	)
	return &record, nil
}

func (s *Service) momentOf(req MarkRequest) (Moment, error) {
	day, err := schedule.FromWeekday(req.Date.Weekday())
	if err != nil {
		return Moment{}, err
	}
	if !req.Marked.IsValid() {
		return Moment{}, dErrors.New(dErrors.CodeInvalidInput, "marked time outside a single day")
	}
	return Moment{Day: day, Minute: req.Marked, Date: DateOnly(req.Date)}, nil
}

// matchingWindowStart finds the window containing the moment and returns its
// start. Eligibility already proved one exists; a miss here means the roster
// changed between reads and surfaces as a refusal, not a panic.
func (s *Service) matchingWindowStart(ctx context.Context, groupID id.GroupID, at Moment) (schedule.Minute, error) {
	windows, err := s.roster.GroupWindows(ctx, groupID)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeStoreFailure, "load group windows", err)
	}
	for _, w := range windows {
		if w.Contains(at.Day, at.Minute) {
			return w.Start, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeNoMatchingWindow, "no window covers the marked time")
}

func (s *Service) resolvePolicy(ctx context.Context, groupID id.GroupID, cfg markConfig) (roster.GroupPolicy, error) {
	policy, err := roster.ResolvePolicy(ctx, s.roster, groupID)
	if err != nil {
		return roster.GroupPolicy{}, err
	}
	if cfg.policyOverride != nil {
		policy.Kind = *cfg.policyOverride
	}
	return policy, nil
}

func refusalError(result EligibilityResult, req MarkRequest) error {
	switch result {
	case NotEnrolled:
		return dErrors.Newf(dErrors.CodeNotEnrolled, "student %d is not enrolled in group %d", req.StudentID, req.GroupID)
	case NoMatchingWindow:
		return dErrors.Newf(dErrors.CodeNoMatchingWindow, "group %d has no window covering the marked time", req.GroupID)
	case AlreadyMarked:
		return dErrors.Newf(dErrors.CodeAlreadyMarked, "attendance already recorded for student %d in group %d today", req.StudentID, req.GroupID)
	default:
		return dErrors.Newf(dErrors.CodeInternal, "unexpected eligibility result %q", result)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
