package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coursedesk/reminder-engine/internal/client"
	"github.com/coursedesk/reminder-engine/internal/model"
	"github.com/coursedesk/reminder-engine/internal/repo"
)

// fakeTaskRepo emulates the store's claim and conditional-update
// semantics in memory so the evaluators' idempotency and terminality
// guarantees can be exercised without Postgres.
type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[int64]*model.Task

	dueErr   error
	claimErr error

	doneIDs []int64
}

func newFakeTaskRepo(tasks ...model.Task) *fakeTaskRepo {
	f := &fakeTaskRepo{tasks: make(map[int64]*model.Task)}
	for _, t := range tasks {
		t := t
		f.tasks[t.ID] = &t
	}
	return f
}

var _ repo.TaskRepository = (*fakeTaskRepo)(nil)

func (f *fakeTaskRepo) DueInWindow(_ context.Context, assignee string, from, to time.Time) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dueErr != nil {
		return nil, f.dueErr
	}

	var out []model.Task
	for _, t := range f.tasks {
		if t.AssignedTo != assignee || t.Status == model.TaskDone {
			continue
		}
		if t.DueDate.Before(from) || t.DueDate.After(to) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeTaskRepo) ClaimDueMessages(_ context.Context, now time.Time, limit int) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claimErr != nil {
		return nil, f.claimErr
	}

	var candidates []*model.Task
	for _, t := range f.tasks {
		if t.IsScheduledMessage && t.MessageStatus == model.MessagePending && !t.DueDate.After(now) {
			candidates = append(candidates, t)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DueDate.Before(candidates[j].DueDate)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	var out []model.Task
	for _, t := range candidates {
		t.MessageStatus = model.MessageSending
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTaskRepo) MarkMessageSent(_ context.Context, id int64, remoteMessageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tasks[id]
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	if !t.MessageStatus.CanTransition(model.MessageSent) {
		return repo.ErrStaleState
	}
	t.MessageStatus = model.MessageSent
	t.Status = model.TaskDone
	t.RemoteMessageID = &remoteMessageID
	return nil
}

func (f *fakeTaskRepo) MarkMessageFailed(_ context.Context, id int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tasks[id]
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	if !t.MessageStatus.CanTransition(model.MessageFailed) {
		return repo.ErrStaleState
	}
	t.MessageStatus = model.MessageFailed
	t.LastError = &reason
	return nil
}

func (f *fakeTaskRepo) MarkDone(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tasks[id]
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	if t.Status == model.TaskDone {
		return repo.ErrStaleState
	}
	t.Status = model.TaskDone
	f.doneIDs = append(f.doneIDs, id)
	return nil
}

func (f *fakeTaskRepo) ListByMessageStatus(_ context.Context, status model.MessageStatus, limit, offset int) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Task
	for _, t := range f.tasks {
		if t.IsScheduledMessage && t.MessageStatus == status {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskRepo) get(id int64) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.tasks[id]
}

// fakeDispatcher records sends and fails on command.
type fakeDispatcher struct {
	mu    sync.Mutex
	sends []client.Message

	failNext int // fail this many sends before succeeding
	err      error
}

func (f *fakeDispatcher) Send(_ context.Context, msg client.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sends = append(f.sends, msg)
	if f.failNext > 0 {
		f.failNext--
		if f.err != nil {
			return "", f.err
		}
		return "", errors.New("send failed")
	}
	return fmt.Sprintf("remote-%d", len(f.sends)), nil
}

func (f *fakeDispatcher) sent() []client.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]client.Message, len(f.sends))
	copy(out, f.sends)
	return out
}

type fakeCourseRepo struct {
	courses []model.Course
	err     error
}

var _ repo.CourseRepository = (*fakeCourseRepo)(nil)

func (f *fakeCourseRepo) ListPublished(context.Context) ([]model.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[int64]*model.Enrollment

	queryErr error
	markErr  error
}

func newFakeEnrollmentRepo(enrollments ...model.Enrollment) *fakeEnrollmentRepo {
	f := &fakeEnrollmentRepo{enrollments: make(map[int64]*model.Enrollment)}
	for _, e := range enrollments {
		e := e
		f.enrollments[e.ID] = &e
	}
	return f
}

var _ repo.EnrollmentRepository = (*fakeEnrollmentRepo)(nil)

func (f *fakeEnrollmentRepo) ConfirmedUnsent(_ context.Context, courseID int64, offset model.ReminderOffset) ([]model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	var out []model.Enrollment
	for _, e := range f.enrollments {
		if e.CourseID != courseID || e.Status != model.EnrollmentConfirmed {
			continue
		}
		if e.ReminderSent(offset) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEnrollmentRepo) MarkReminderSent(_ context.Context, id int64, offset model.ReminderOffset) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markErr != nil {
		return f.markErr
	}

	e, ok := f.enrollments[id]
	if !ok {
		return fmt.Errorf("enrollment %d not found", id)
	}
	switch offset {
	case model.OffsetEarly:
		if e.ReminderEarlySent {
			return repo.ErrStaleState
		}
		e.ReminderEarlySent = true
	case model.OffsetFinal:
		if e.ReminderFinalSent {
			return repo.ErrStaleState
		}
		e.ReminderFinalSent = true
	}
	return nil
}

func (f *fakeEnrollmentRepo) get(id int64) model.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.enrollments[id]
}

// fixedClock returns a clock function pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
