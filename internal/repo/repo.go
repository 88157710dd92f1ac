package repo

import (
	"context"
	"errors"
	"time"

	"github.com/coursedesk/reminder-engine/internal/model"
)

// ErrStaleState is returned by conditional writes that matched zero rows:
// the entity is no longer in the state the caller assumed, usually because
// another session got there first.
var ErrStaleState = errors.New("entity not in expected state")

type TaskRepository interface {
	// DueInWindow returns the assignee's not-done tasks with a due date
	// inside [from, to].
	DueInWindow(ctx context.Context, assignee string, from, to time.Time) ([]model.Task, error)

	// ClaimDueMessages atomically moves up to limit pending scheduled
	// messages due at or before now into the sending claim state and
	// returns them, oldest first. Rows claimed by another session are
	// skipped, never returned twice.
	ClaimDueMessages(ctx context.Context, now time.Time, limit int) ([]model.Task, error)

	// MarkMessageSent finalizes a claimed message: sending -> sent, and
	// the task itself is closed as done.
	MarkMessageSent(ctx context.Context, id int64, remoteMessageID string) error

	// MarkMessageFailed finalizes a message as failed, either from the
	// claim state or directly from pending (malformed entity).
	MarkMessageFailed(ctx context.Context, id int64, reason string) error

	MarkDone(ctx context.Context, id int64) error

	ListByMessageStatus(ctx context.Context, status model.MessageStatus, limit, offset int) ([]model.Task, error)
}

type CourseRepository interface {
	// ListPublished returns courses whose reminders may fire.
	ListPublished(ctx context.Context) ([]model.Course, error)
}

type EnrollmentRepository interface {
	// ConfirmedUnsent returns the course's confirmed enrollments whose
	// sent-flag for the offset is still false.
	ConfirmedUnsent(ctx context.Context, courseID int64, offset model.ReminderOffset) ([]model.Enrollment, error)

	// MarkReminderSent flips the offset's sent-flag false -> true.
	// Returns ErrStaleState when the flag was already true.
	MarkReminderSent(ctx context.Context, id int64, offset model.ReminderOffset) error
}
