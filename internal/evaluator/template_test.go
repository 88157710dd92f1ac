package evaluator

import (
	"strings"
	"testing"
	"time"
)

func TestRenderReminder_FullCourse(t *testing.T) {
	t.Parallel()

	course := testCourse()
	course.MapURL = "https://maps.example.com/studio"
	course.ContentSchedule = "Day 1: wheel throwing\nDay 2: glazing"
	course.WhatToBring = "An apron and a towel."

	body, err := RenderReminder(course, confirmedEnrollment(1), time.UTC)
	if err != nil {
		t.Fatalf("RenderReminder() error: %v", err)
	}

	for _, want := range []string{
		"Hi Anna!",
		"Pottery Basics",
		"Monday, 10 June 2024",
		"08:00-12:00",
		"Location: 1 Studio Lane",
		"Map: https://maps.example.com/studio",
		"Day 2: glazing",
		"An apron and a towel.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q\nbody:\n%s", want, body)
		}
	}
}

func TestRenderReminder_OptionalLinesOmitted(t *testing.T) {
	t.Parallel()

	course := testCourse()
	course.Address = ""
	course.MapURL = ""
	course.ContentSchedule = ""
	course.WhatToBring = ""

	body, err := RenderReminder(course, confirmedEnrollment(1), time.UTC)
	if err != nil {
		t.Fatalf("RenderReminder() error: %v", err)
	}

	for _, banned := range []string{"Location:", "Map:", "Schedule:", "What to bring:"} {
		if strings.Contains(body, banned) {
			t.Errorf("expected %q omitted for empty field\nbody:\n%s", banned, body)
		}
	}
}

func TestRenderReminder_FallbackGreeting(t *testing.T) {
	t.Parallel()

	enr := confirmedEnrollment(1)
	enr.StudentName = ""

	body, err := RenderReminder(testCourse(), enr, time.UTC)
	if err != nil {
		t.Fatalf("RenderReminder() error: %v", err)
	}
	if !strings.Contains(body, "Hi there!") {
		t.Fatalf("expected fallback greeting, got:\n%s", body)
	}
}

func TestTimeRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start, end, want string
	}{
		{"08:00", "12:00", "08:00-12:00"},
		{"08:00", "", "08:00"},
		{"", "12:00", "until 12:00"},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := timeRange(tc.start, tc.end); got != tc.want {
			t.Errorf("timeRange(%q, %q) = %q, want %q", tc.start, tc.end, got, tc.want)
		}
	}
}
