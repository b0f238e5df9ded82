package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

const uniqueViolation = "23505"

// PostgresStore persists attendance records in PostgreSQL. The unique
// constraint on (student_id, group_id, marked_on) is the source of truth for
// one-mark-per-day; Save surfaces a violation as CodeAlreadyMarked.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed attendance store.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &PostgresStore{db: db}, nil
}

// EnsureSchema creates the attendance table if missing. Used by local
// bootstrap and integration tests; production deployments run migrations
// out of band.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_records (
			id            UUID PRIMARY KEY,
			student_id    BIGINT NOT NULL,
			group_id      BIGINT NOT NULL,
			marked_on     DATE NOT NULL,
			marked_minute INT NOT NULL,
			status        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			UNIQUE (student_id, group_id, marked_on)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure attendance schema: %w", err)
	}
	return nil
}

// Save inserts the record, rejecting a duplicate (student, group, date)
// atomically at the database.
func (s *PostgresStore) Save(ctx context.Context, record Record) error {
	query := `
		INSERT INTO attendance_records (id, student_id, group_id, marked_on, marked_minute, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.StudentID.Int64(),
		record.GroupID.Int64(),
		record.Date,
		int(record.Marked),
		string(record.Status),
		record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return dErrors.New(dErrors.CodeAlreadyMarked, "attendance already recorded for this date")
		}
		return fmt.Errorf("save attendance record: %w", err)
	}
	return nil
}

// HasForDate reports whether a record already exists for the student, group,
// and calendar date.
func (s *PostgresStore) HasForDate(ctx context.Context, studentID id.StudentID, groupID id.GroupID, date time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE student_id = $1 AND group_id = $2 AND marked_on = $3
		)
	`, studentID.Int64(), groupID.Int64(), date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendance record: %w", err)
	}
	return exists, nil
}

// ListByGroupAndDate returns the group's records for one date, oldest mark
// first.
func (s *PostgresStore) ListByGroupAndDate(ctx context.Context, groupID id.GroupID, date time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, group_id, marked_on, marked_minute, status, created_at
		FROM attendance_records
		WHERE group_id = $1 AND marked_on = $2
		ORDER BY created_at
	`, groupID.Int64(), date)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			recordID     uuid.UUID
			studentID    int64
			gID          int64
			markedOn     time.Time
			markedMinute int
			status       string
			createdAt    time.Time
		)
		if err := rows.Scan(&recordID, &studentID, &gID, &markedOn, &markedMinute, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, Record{
			ID:        id.RecordID(recordID),
			StudentID: id.StudentID(studentID),
			GroupID:   id.GroupID(gID),
			Date:      markedOn,
			Marked:    schedule.Minute(markedMinute),
			Status:    Status(status),
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}
