package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursedesk/reminder-engine/internal/model"
)

type PostgresEnrollmentRepo struct {
	db *sql.DB
}

func NewPostgresEnrollmentRepo(db *sql.DB) *PostgresEnrollmentRepo {
	return &PostgresEnrollmentRepo{db: db}
}

// flagColumn maps a reminder offset to its sent-flag column. Column names
// come from a fixed table, never from input.
func flagColumn(offset model.ReminderOffset) (string, error) {
	switch offset {
	case model.OffsetEarly:
		return "reminder_early_sent", nil
	case model.OffsetFinal:
		return "reminder_final_sent", nil
	}
	return "", fmt.Errorf("unknown reminder offset: %q", offset)
}

func (r *PostgresEnrollmentRepo) ConfirmedUnsent(ctx context.Context, courseID int64, offset model.ReminderOffset) ([]model.Enrollment, error) {
	col, err := flagColumn(offset)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_id, student_name, student_phone, status,
		       reminder_early_sent, reminder_final_sent
		FROM enrollments
		WHERE course_id = $1
		  AND status = 'confirmed'
		  AND NOT `+col+`
		ORDER BY id ASC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		var status string
		var phone sql.NullString

		if err := rows.Scan(
			&e.ID,
			&e.CourseID,
			&e.StudentName,
			&phone,
			&status,
			&e.ReminderEarlySent,
			&e.ReminderFinalSent,
		); err != nil {
			return nil, err
		}

		e.Status = model.EnrollmentStatus(status)
		e.StudentPhone = phone.String

		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkReminderSent is a compare-and-set: the flag only moves false -> true.
// A concurrent session that already set it makes this return ErrStaleState.
func (r *PostgresEnrollmentRepo) MarkReminderSent(ctx context.Context, id int64, offset model.ReminderOffset) error {
	col, err := flagColumn(offset)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE enrollments
		SET `+col+` = true, updated_at = now()
		WHERE id = $1
		  AND NOT `+col+`
	`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
