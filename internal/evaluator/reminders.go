package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coursedesk/reminder-engine/internal/cache"
	"github.com/coursedesk/reminder-engine/internal/client"
	"github.com/coursedesk/reminder-engine/internal/model"
	"github.com/coursedesk/reminder-engine/internal/repo"
)

// CourseReminders dispatches the per-course early and final reminders to
// confirmed enrollments. Idempotency is flag-based: a failed dispatch
// leaves the sent-flag false, so the next hourly pass retries it as long
// as the course has not started.
type CourseReminders struct {
	courses     repo.CourseRepository
	enrollments repo.EnrollmentRepository
	dispatcher  Dispatcher
	log         cache.DispatchLog

	startHour int // inclusive
	endHour   int // inclusive
	loc       *time.Location

	now func() time.Time
}

func NewCourseReminders(
	courses repo.CourseRepository,
	enrollments repo.EnrollmentRepository,
	d Dispatcher,
	log cache.DispatchLog,
	startHour, endHour int,
	loc *time.Location,
) *CourseReminders {
	return &CourseReminders{
		courses:     courses,
		enrollments: enrollments,
		dispatcher:  d,
		log:         log,
		startHour:   startHour,
		endHour:     endHour,
		loc:         loc,
		now:         time.Now,
	}
}

func (e *CourseReminders) WithClock(now func() time.Time) *CourseReminders {
	e.now = now
	return e
}

func (e *CourseReminders) Run(ctx context.Context) {
	now := e.now().In(e.loc)

	if !e.withinBusinessHours(now) {
		slog.Info("reminder sweep suppressed outside business hours", "hour", now.Hour())
		return
	}

	courses, err := e.courses.ListPublished(ctx)
	if err != nil {
		slog.Error("reminder sweep: course query failed", "error", err)
		return
	}

	for _, course := range courses {
		for _, offset := range []model.ReminderOffset{model.OffsetEarly, model.OffsetFinal} {
			e.sweepOffset(ctx, course, offset, now)
		}
	}
}

// sweepOffset handles one (course, offset) pair independently of all
// others; a failure here never blocks the other offset or other courses.
func (e *CourseReminders) sweepOffset(ctx context.Context, course model.Course, offset model.ReminderOffset, now time.Time) {
	if !course.OffsetEnabled(offset) {
		return
	}

	startAt := course.StartAt(e.loc)
	triggerAt := course.TriggerAt(offset, e.loc)

	// Eligible only between the trigger instant and course start.
	if now.Before(triggerAt) || !now.Before(startAt) {
		return
	}

	pending, err := e.enrollments.ConfirmedUnsent(ctx, course.ID, offset)
	if err != nil {
		slog.Error("reminder sweep: enrollment query failed",
			"course_id", course.ID, "offset", string(offset), "error", err)
		return
	}

	for _, enrollment := range pending {
		enrollment := enrollment
		runEntity("reminders", enrollment.ID, func() {
			e.dispatchOne(ctx, course, enrollment, offset)
		})
	}
}

func (e *CourseReminders) dispatchOne(ctx context.Context, course model.Course, enrollment model.Enrollment, offset model.ReminderOffset) {
	if enrollment.StudentPhone == "" {
		return
	}

	body, err := RenderReminder(course, enrollment, e.loc)
	if err != nil {
		slog.Error("reminder sweep: template render failed",
			"enrollment_id", enrollment.ID, "error", err)
		return
	}

	// System-level send: no sender identity.
	remoteID, err := e.dispatcher.Send(ctx, client.Message{
		Phone: enrollment.StudentPhone,
		Body:  body,
	})
	if err != nil {
		// Flag stays false; the next pass retries.
		slog.Warn("reminder dispatch failed, will retry next pass",
			"enrollment_id", enrollment.ID, "offset", string(offset), "error", err)
		return
	}

	if err := e.enrollments.MarkReminderSent(ctx, enrollment.ID, offset); err != nil {
		if errors.Is(err, repo.ErrStaleState) {
			// Another session marked it between our query and write.
			slog.Warn("reminder flag already set by another session",
				"enrollment_id", enrollment.ID, "offset", string(offset))
			return
		}
		slog.Error("reminder sweep: flag write failed",
			"enrollment_id", enrollment.ID, "offset", string(offset), "error", err)
		return
	}

	if err := e.log.StoreDispatch(ctx, cache.Entry{
		Kind:     cache.KindCourseReminder,
		EntityID: enrollment.ID,
		Phone:    enrollment.StudentPhone,
		RemoteID: remoteID,
		At:       e.now(),
	}); err != nil {
		slog.Warn("reminder sweep: audit log write failed",
			"enrollment_id", enrollment.ID, "error", err)
	}

	slog.Info("course reminder sent",
		"course_id", course.ID, "enrollment_id", enrollment.ID, "offset", string(offset))
}

func (e *CourseReminders) withinBusinessHours(now time.Time) bool {
	h := now.Hour()
	return h >= e.startHour && h <= e.endHour
}
