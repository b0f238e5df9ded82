package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

const uniqueViolation = "23505"

// PostgresStore persists enrollments and group configuration in PostgreSQL.
// Duplicate enrollments are rejected by the unique constraint on
// (student_id, group_id, term), not by a read-then-write.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed roster store.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &PostgresStore{db: db}, nil
}

// EnsureSchema creates the roster tables if missing. Used by local bootstrap
// and integration tests; production deployments run migrations out of band.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS enrollments (
			student_id  BIGINT NOT NULL,
			group_id    BIGINT NOT NULL,
			term        TEXT NOT NULL,
			enrolled_on DATE NOT NULL,
			PRIMARY KEY (student_id, group_id, term)
		);
		CREATE TABLE IF NOT EXISTS group_windows (
			group_id     BIGINT NOT NULL,
			day          INT NOT NULL,
			start_minute INT NOT NULL,
			end_minute   INT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS group_windows_group_idx ON group_windows (group_id);
		CREATE TABLE IF NOT EXISTS group_policies (
			group_id          BIGINT PRIMARY KEY,
			tolerance_minutes INT NOT NULL,
			kind              TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure roster schema: %w", err)
	}
	return nil
}

// SaveEnrollment inserts the enrollment, rejecting a duplicate
// (student, group, term) atomically at the database.
func (s *PostgresStore) SaveEnrollment(ctx context.Context, e Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, group_id, term, enrolled_on)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.StudentID.Int64(), e.GroupID.Int64(), e.TermID.String(), e.EnrolledOn)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return dErrors.New(dErrors.CodeAlreadyEnrolled, "student is already enrolled in this group for the term")
		}
		return fmt.Errorf("save enrollment: %w", err)
	}
	return nil
}

// ActiveEnrollments returns every enrollment for the student across terms.
func (s *PostgresStore) ActiveEnrollments(ctx context.Context, studentID id.StudentID) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT student_id, group_id, term, enrolled_on
		FROM enrollments
		WHERE student_id = $1
		ORDER BY enrolled_on, group_id
	`, studentID.Int64())
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []Enrollment
	for rows.Next() {
		var (
			sID        int64
			gID        int64
			term       string
			enrolledOn time.Time
		)
		if err := rows.Scan(&sID, &gID, &term, &enrolledOn); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, Enrollment{
			StudentID:  id.StudentID(sID),
			GroupID:    id.GroupID(gID),
			TermID:     id.TermID(term),
			EnrolledOn: enrolledOn,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return enrollments, nil
}

// SaveGroupConfig replaces the group's windows and policy in one
// transaction, so readers never observe a half-written schedule.
func (s *PostgresStore) SaveGroupConfig(ctx context.Context, cfg GroupConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin group config tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM group_windows WHERE group_id = $1`, cfg.GroupID.Int64()); err != nil {
		return fmt.Errorf("clear group windows: %w", err)
	}
	for _, w := range cfg.Windows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO group_windows (group_id, day, start_minute, end_minute)
			VALUES ($1, $2, $3, $4)
		`, cfg.GroupID.Int64(), int(w.Day), int(w.Start), int(w.End))
		if err != nil {
			return fmt.Errorf("insert group window: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_policies (group_id, tolerance_minutes, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id) DO UPDATE SET
			tolerance_minutes = EXCLUDED.tolerance_minutes,
			kind = EXCLUDED.kind
	`, cfg.GroupID.Int64(), cfg.Policy.ToleranceMinutes, string(cfg.Policy.Kind))
	if err != nil {
		return fmt.Errorf("upsert group policy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit group config: %w", err)
	}
	return nil
}

// GroupWindows returns the group's configured windows in schedule order.
func (s *PostgresStore) GroupWindows(ctx context.Context, groupID id.GroupID) ([]schedule.Window, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, start_minute, end_minute
		FROM group_windows
		WHERE group_id = $1
		ORDER BY day, start_minute
	`, groupID.Int64())
	if err != nil {
		return nil, fmt.Errorf("list group windows: %w", err)
	}
	defer rows.Close()

	var windows []schedule.Window
	for rows.Next() {
		var day, startMinute, endMinute int
		if err := rows.Scan(&day, &startMinute, &endMinute); err != nil {
			return nil, fmt.Errorf("scan group window: %w", err)
		}
		windows = append(windows, schedule.Window{
			Day:   schedule.Day(day),
			Start: schedule.Minute(startMinute),
			End:   schedule.Minute(endMinute),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group windows: %w", err)
	}
	return windows, nil
}

// GroupPolicy returns the group's explicit policy, or CodeNotFound when the
// group was never configured.
func (s *PostgresStore) GroupPolicy(ctx context.Context, groupID id.GroupID) (GroupPolicy, error) {
	var (
		tolerance int
		kind      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT tolerance_minutes, kind FROM group_policies WHERE group_id = $1
	`, groupID.Int64()).Scan(&tolerance, &kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GroupPolicy{}, dErrors.Newf(dErrors.CodeNotFound, "no policy configured for group %d", groupID)
		}
		return GroupPolicy{}, fmt.Errorf("load group policy: %w", err)
	}
	return GroupPolicy{ToleranceMinutes: tolerance, Kind: PolicyKind(kind)}, nil
}
