package model

import (
	"fmt"
	"time"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// ReminderOffset identifies one of the two per-course reminder windows.
type ReminderOffset string

const (
	OffsetEarly ReminderOffset = "early"
	OffsetFinal ReminderOffset = "final"
)

const (
	DefaultEarlyDays = 5
	DefaultFinalDays = 1
)

type Course struct {
	ID        int64
	Title     string
	StartDate time.Time
	StartTime string // "15:04"
	EndTime   string // "15:04"

	Address         string
	MapURL          string
	ContentSchedule string
	WhatToBring     string

	ReminderEarlyEnabled bool
	ReminderEarlyDays    int
	ReminderFinalEnabled bool
	ReminderFinalDays    int

	Status CourseStatus
}

// StartAt combines StartDate and StartTime in loc. A missing or malformed
// StartTime falls back to midnight of StartDate.
func (c Course) StartAt(loc *time.Location) time.Time {
	y, m, d := c.StartDate.In(loc).Date()
	t, err := time.Parse("15:04", c.StartTime)
	if err != nil {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
}

// OffsetEnabled reports whether the given reminder offset is switched on
// for this course.
func (c Course) OffsetEnabled(o ReminderOffset) bool {
	switch o {
	case OffsetEarly:
		return c.ReminderEarlyEnabled
	case OffsetFinal:
		return c.ReminderFinalEnabled
	}
	return false
}

// OffsetDays returns the configured day count for the offset, falling back
// to the defaults when unset.
func (c Course) OffsetDays(o ReminderOffset) int {
	switch o {
	case OffsetEarly:
		if c.ReminderEarlyDays > 0 {
			return c.ReminderEarlyDays
		}
		return DefaultEarlyDays
	case OffsetFinal:
		if c.ReminderFinalDays > 0 {
			return c.ReminderFinalDays
		}
		return DefaultFinalDays
	}
	return 0
}

// TriggerAt is the instant at which the offset's reminder becomes eligible:
// course start minus the configured number of days.
func (c Course) TriggerAt(o ReminderOffset, loc *time.Location) time.Time {
	return c.StartAt(loc).AddDate(0, 0, -c.OffsetDays(o))
}

func (o ReminderOffset) Valid() bool {
	return o == OffsetEarly || o == OffsetFinal
}

func ParseReminderOffset(s string) (ReminderOffset, error) {
	o := ReminderOffset(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown reminder offset: %q", s)
	}
	return o, nil
}
