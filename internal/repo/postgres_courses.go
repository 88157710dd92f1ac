package repo

import (
	"context"
	"database/sql"

	"github.com/coursedesk/reminder-engine/internal/model"
)

type PostgresCourseRepo struct {
	db *sql.DB
}

func NewPostgresCourseRepo(db *sql.DB) *PostgresCourseRepo {
	return &PostgresCourseRepo{db: db}
}

func (r *PostgresCourseRepo) ListPublished(ctx context.Context) ([]model.Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, start_date, start_time, end_time,
		       address, map_url, content_schedule, what_to_bring,
		       reminder_early_enabled, reminder_early_days,
		       reminder_final_enabled, reminder_final_days,
		       status
		FROM courses
		WHERE status = 'published'
		ORDER BY start_date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Course
	for rows.Next() {
		var c model.Course
		var status string
		var startTime, endTime, address, mapURL, schedule, bring sql.NullString

		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.StartDate,
			&startTime,
			&endTime,
			&address,
			&mapURL,
			&schedule,
			&bring,
			&c.ReminderEarlyEnabled,
			&c.ReminderEarlyDays,
			&c.ReminderFinalEnabled,
			&c.ReminderFinalDays,
			&status,
		); err != nil {
			return nil, err
		}

		c.Status = model.CourseStatus(status)
		c.StartTime = startTime.String
		c.EndTime = endTime.String
		c.Address = address.String
		c.MapURL = mapURL.String
		c.ContentSchedule = schedule.String
		c.WhatToBring = bring.String

		out = append(out, c)
	}
	return out, rows.Err()
}
