package evaluator

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/coursedesk/reminder-engine/internal/cache"
	"github.com/coursedesk/reminder-engine/internal/client"
	"github.com/coursedesk/reminder-engine/internal/model"
	"github.com/coursedesk/reminder-engine/internal/repo"
)

// Dispatcher is the single network boundary of the engine.
type Dispatcher interface {
	Send(ctx context.Context, msg client.Message) (remoteMessageID string, err error)
}

// ScheduledMessages dispatches user-authored message jobs whose due date
// has passed. Jobs are claimed in small batches; each job terminates in
// sent or failed exactly once and is never retried.
type ScheduledMessages struct {
	repo       repo.TaskRepository
	dispatcher Dispatcher
	log        cache.DispatchLog

	batchSize  int
	contentMax int

	now func() time.Time
}

func NewScheduledMessages(r repo.TaskRepository, d Dispatcher, log cache.DispatchLog, batchSize, contentMax int) *ScheduledMessages {
	return &ScheduledMessages{
		repo:       r,
		dispatcher: d,
		log:        log,
		batchSize:  batchSize,
		contentMax: contentMax,
		now:        time.Now,
	}
}

func (e *ScheduledMessages) WithClock(now func() time.Time) *ScheduledMessages {
	e.now = now
	return e
}

func (e *ScheduledMessages) Run(ctx context.Context) {
	now := e.now()

	tasks, err := e.repo.ClaimDueMessages(ctx, now, e.batchSize)
	if err != nil {
		slog.Error("message sweep: claim failed", "error", err)
		return
	}

	var sent, failed int
	for _, task := range tasks {
		task := task
		runEntity("messages", task.ID, func() {
			if e.process(ctx, task) {
				sent++
			} else {
				failed++
			}
		})
	}

	if len(tasks) > 0 {
		slog.Info("message sweep completed", "claimed", len(tasks), "sent", sent, "failed", failed)
	}
}

// process finalizes one claimed job and reports whether it was sent.
func (e *ScheduledMessages) process(ctx context.Context, task model.Task) bool {
	// Malformed jobs fail without a dispatch attempt.
	if task.ContactPhone == "" {
		e.fail(ctx, task.ID, "no contact phone")
		return false
	}
	if task.MessageBody == "" {
		e.fail(ctx, task.ID, "empty message body")
		return false
	}
	if utf8.RuneCountInString(task.MessageBody) > e.contentMax {
		e.fail(ctx, task.ID, "message body exceeds content limit")
		return false
	}

	msg := client.Message{
		Phone:    task.ContactPhone,
		Body:     task.MessageBody,
		SenderID: task.AssignedTo,
	}
	if task.MediaURL != nil {
		msg.MediaURL = *task.MediaURL
	}

	remoteID, err := e.dispatcher.Send(ctx, msg)
	if err != nil {
		e.fail(ctx, task.ID, err.Error())
		return false
	}

	if err := e.repo.MarkMessageSent(ctx, task.ID, remoteID); err != nil {
		slog.Error("message sweep: mark sent failed", "task_id", task.ID, "error", err)
		return false
	}

	if err := e.log.StoreDispatch(ctx, cache.Entry{
		Kind:     cache.KindScheduledMessage,
		EntityID: task.ID,
		Phone:    task.ContactPhone,
		RemoteID: remoteID,
		At:       e.now(),
	}); err != nil {
		slog.Warn("message sweep: audit log write failed", "task_id", task.ID, "error", err)
	}

	return true
}

func (e *ScheduledMessages) fail(ctx context.Context, id int64, reason string) {
	if err := e.repo.MarkMessageFailed(ctx, id, reason); err != nil {
		slog.Error("message sweep: mark failed failed", "task_id", id, "error", err)
		return
	}
	slog.Warn("scheduled message failed", "task_id", id, "reason", reason)
}
