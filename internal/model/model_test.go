package model

import (
	"testing"
	"time"
)

func TestMessageStatus_CanTransition(t *testing.T) {
	t.Parallel()

	legal := []struct{ from, to MessageStatus }{
		{MessagePending, MessageSending},
		{MessagePending, MessageFailed},
		{MessageSending, MessageSent},
		{MessageSending, MessageFailed},
	}
	for _, tr := range legal {
		if !tr.from.CanTransition(tr.to) {
			t.Errorf("expected %s -> %s to be legal", tr.from, tr.to)
		}
	}

	illegal := []struct{ from, to MessageStatus }{
		{MessagePending, MessageSent}, // must pass through the claim state
		{MessageSent, MessagePending},
		{MessageSent, MessageFailed},
		{MessageFailed, MessagePending},
		{MessageFailed, MessageSent},
		{MessageSending, MessagePending},
	}
	for _, tr := range illegal {
		if tr.from.CanTransition(tr.to) {
			t.Errorf("expected %s -> %s to be illegal", tr.from, tr.to)
		}
	}
}

func TestMessageStatus_Terminal(t *testing.T) {
	t.Parallel()

	if MessagePending.Terminal() || MessageSending.Terminal() {
		t.Fatalf("pending/sending must not be terminal")
	}
	if !MessageSent.Terminal() || !MessageFailed.Terminal() {
		t.Fatalf("sent/failed must be terminal")
	}
}

func TestCourse_StartAt(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	c := Course{
		StartDate: time.Date(2024, 6, 10, 0, 0, 0, 0, loc),
		StartTime: "08:00",
	}

	got := c.StartAt(loc)
	want := time.Date(2024, 6, 10, 8, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("StartAt = %v, want %v", got, want)
	}
}

func TestCourse_StartAt_MalformedTimeFallsBackToMidnight(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	c := Course{
		StartDate: time.Date(2024, 6, 10, 0, 0, 0, 0, loc),
		StartTime: "8 o'clock",
	}

	got := c.StartAt(loc)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("StartAt = %v, want %v", got, want)
	}
}

func TestCourse_TriggerAt(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	c := Course{
		StartDate:            time.Date(2024, 6, 10, 0, 0, 0, 0, loc),
		StartTime:            "08:00",
		ReminderEarlyEnabled: true,
		ReminderEarlyDays:    5,
		ReminderFinalEnabled: true,
		ReminderFinalDays:    1,
	}

	early := c.TriggerAt(OffsetEarly, loc)
	if want := time.Date(2024, 6, 5, 8, 0, 0, 0, loc); !early.Equal(want) {
		t.Fatalf("early trigger = %v, want %v", early, want)
	}

	final := c.TriggerAt(OffsetFinal, loc)
	if want := time.Date(2024, 6, 9, 8, 0, 0, 0, loc); !final.Equal(want) {
		t.Fatalf("final trigger = %v, want %v", final, want)
	}
}

func TestCourse_OffsetDays_Defaults(t *testing.T) {
	t.Parallel()

	var c Course
	if got := c.OffsetDays(OffsetEarly); got != DefaultEarlyDays {
		t.Fatalf("early default = %d, want %d", got, DefaultEarlyDays)
	}
	if got := c.OffsetDays(OffsetFinal); got != DefaultFinalDays {
		t.Fatalf("final default = %d, want %d", got, DefaultFinalDays)
	}
}

func TestParseReminderOffset(t *testing.T) {
	t.Parallel()

	if _, err := ParseReminderOffset("early"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseReminderOffset("weekly"); err == nil {
		t.Fatalf("expected error for unknown offset")
	}
}

func TestEnrollment_ReminderSent(t *testing.T) {
	t.Parallel()

	e := Enrollment{ReminderEarlySent: true}
	if !e.ReminderSent(OffsetEarly) {
		t.Fatalf("expected early flag to read true")
	}
	if e.ReminderSent(OffsetFinal) {
		t.Fatalf("expected final flag to read false")
	}
}
