package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coursedesk/reminder-engine/internal/model"
)

type PostgresTaskRepo struct {
	db *sql.DB
}

func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `
	id, assigned_to, title, due_date, status, priority,
	is_scheduled_message, message_body, media_url, message_status,
	last_error, sent_at, remote_message_id, contact_id, contact_phone,
	created_at, updated_at
`

func (r *PostgresTaskRepo) DueInWindow(ctx context.Context, assignee string, from, to time.Time) ([]model.Task, error) {
	if assignee == "" {
		return nil, errors.New("assignee must not be empty")
	}
	if to.Before(from) {
		return nil, errors.New("window end precedes window start")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE assigned_to = $1
		  AND status <> 'done'
		  AND due_date BETWEEN $2 AND $3
		ORDER BY due_date ASC
	`, assignee, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (r *PostgresTaskRepo) ClaimDueMessages(ctx context.Context, now time.Time, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE is_scheduled_message
		  AND message_status = 'pending'
		  AND due_date <= $1
		ORDER BY due_date ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}

	tasks, err := scanTasks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	claimedAt := time.Now().UTC()
	for _, task := range tasks {
		if _, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET message_status = 'sending', updated_at = $2
			WHERE id = $1
		`, task.ID, claimedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].MessageStatus = model.MessageSending
		tasks[i].UpdatedAt = claimedAt
	}
	return tasks, nil
}

func (r *PostgresTaskRepo) MarkMessageSent(ctx context.Context, id int64, remoteMessageID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET message_status = 'sent',
		    status = 'done',
		    sent_at = now(),
		    remote_message_id = $2,
		    updated_at = now()
		WHERE id = $1
		  AND message_status = 'sending'
	`, id, remoteMessageID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresTaskRepo) MarkMessageFailed(ctx context.Context, id int64, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET message_status = 'failed',
		    last_error = $2,
		    updated_at = now()
		WHERE id = $1
		  AND message_status IN ('pending', 'sending')
	`, id, reason)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresTaskRepo) MarkDone(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = 'done', updated_at = now()
		WHERE id = $1
		  AND status <> 'done'
	`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresTaskRepo) ListByMessageStatus(ctx context.Context, status model.MessageStatus, limit, offset int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE is_scheduled_message
		  AND message_status = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var out []model.Task
	for rows.Next() {
		var t model.Task
		var status, priority, msgStatus string
		var body, mediaURL, lastErr, remoteID, contactPhone sql.NullString
		var sentAt sql.NullTime
		var contactID sql.NullInt64

		if err := rows.Scan(
			&t.ID,
			&t.AssignedTo,
			&t.Title,
			&t.DueDate,
			&status,
			&priority,
			&t.IsScheduledMessage,
			&body,
			&mediaURL,
			&msgStatus,
			&lastErr,
			&sentAt,
			&remoteID,
			&contactID,
			&contactPhone,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}

		t.Status = model.TaskStatus(status)
		t.Priority = model.Priority(priority)
		t.MessageStatus = model.MessageStatus(msgStatus)

		if body.Valid {
			t.MessageBody = body.String
		}
		if mediaURL.Valid {
			s := mediaURL.String
			t.MediaURL = &s
		}
		if lastErr.Valid {
			s := lastErr.String
			t.LastError = &s
		}
		if sentAt.Valid {
			ts := sentAt.Time
			t.SentAt = &ts
		}
		if remoteID.Valid {
			s := remoteID.String
			t.RemoteMessageID = &s
		}
		if contactID.Valid {
			id := contactID.Int64
			t.ContactID = &id
		}
		if contactPhone.Valid {
			t.ContactPhone = contactPhone.String
		}

		out = append(out, t)
	}
	return out, rows.Err()
}

// requireRow maps a zero-row conditional update to ErrStaleState.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleState
	}
	return nil
}
