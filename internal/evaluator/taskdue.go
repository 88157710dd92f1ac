// Package evaluator holds the three periodic sweeps of the reminder
// engine: due-date alerts, scheduled-message dispatch, and course
// reminders. Each sweep is a tick function for a scheduler; errors are
// contained per entity so one bad record never stalls the rest of a pass.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coursedesk/reminder-engine/internal/alert"
	"github.com/coursedesk/reminder-engine/internal/dedup"
	"github.com/coursedesk/reminder-engine/internal/model"
	"github.com/coursedesk/reminder-engine/internal/repo"
)

// TaskDue raises an in-app alert for each of the actor's tasks that is
// due soon or recently went overdue. Each task alerts at most once per
// process lifetime, tracked by the injected seen-set.
type TaskDue struct {
	repo     repo.TaskRepository
	seen     *dedup.Set
	notifier alert.Notifier
	assignee string

	lookAhead time.Duration
	lookBack  time.Duration

	now func() time.Time
}

func NewTaskDue(r repo.TaskRepository, seen *dedup.Set, n alert.Notifier, assignee string, lookBack, lookAhead time.Duration) *TaskDue {
	return &TaskDue{
		repo:      r,
		seen:      seen,
		notifier:  n,
		assignee:  assignee,
		lookAhead: lookAhead,
		lookBack:  lookBack,
		now:       time.Now,
	}
}

// WithClock overrides the evaluator's clock. Tests use it.
func (e *TaskDue) WithClock(now func() time.Time) *TaskDue {
	e.now = now
	return e
}

func (e *TaskDue) Run(ctx context.Context) {
	now := e.now()
	windowStart := now.Add(-e.lookBack)
	windowEnd := now.Add(e.lookAhead)

	tasks, err := e.repo.DueInWindow(ctx, e.assignee, windowStart, windowEnd)
	if err != nil {
		slog.Error("task-due sweep: query failed", "error", err)
		return
	}

	for _, task := range tasks {
		if e.seen.Seen(task.ID) {
			continue
		}
		task := task
		runEntity("taskdue", task.ID, func() {
			e.raise(ctx, task, now)
			// Mark before any user action so the alert fires at most
			// once this session, even while the task stays in the
			// window.
			e.seen.MarkSeen(task.ID)
		})
	}
}

func (e *TaskDue) raise(ctx context.Context, task model.Task, now time.Time) {
	kind := alert.KindDueSoon
	label := "due soon"
	if task.DueDate.Before(now) {
		kind = alert.KindOverdue
		label = "overdue"
	}

	taskID := task.ID
	actions := []alert.Action{
		{
			Label: "Mark done",
			Run: func(ctx context.Context) error {
				return e.repo.MarkDone(ctx, taskID)
			},
		},
	}
	if task.ContactPhone != "" {
		actions = append(actions, alert.Action{
			Label: "Message contact",
			URL:   chatDeepLink(task.ContactPhone),
		})
	}

	e.notifier.Raise(ctx, alert.Alert{
		Kind:    kind,
		Title:   task.Title,
		Body:    fmt.Sprintf("%s (%s %s)", task.Title, label, task.DueDate.Format("2006-01-02 15:04")),
		Actions: actions,
		At:      now,
	})

	slog.Info("task alert raised", "task_id", task.ID, "kind", string(kind))
}

// chatDeepLink builds the external messaging deep link for a phone number.
func chatDeepLink(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits
}
