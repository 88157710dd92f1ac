package evaluator

import (
	"strings"
	"text/template"
	"time"

	"github.com/coursedesk/reminder-engine/internal/model"
)

// reminderTemplate renders the course reminder body. Optional course
// fields (map link, content schedule, what-to-bring) drop their lines
// entirely when empty.
const reminderTemplate = `Hi {{.Name}}!

This is a reminder that {{.Title}} starts on {{.Date}}{{if .TimeRange}} ({{.TimeRange}}){{end}}.
{{- if .Address}}
Location: {{.Address}}
{{- end}}
{{- if .MapURL}}
Map: {{.MapURL}}
{{- end}}
{{- if .ContentSchedule}}

Schedule:
{{.ContentSchedule}}
{{- end}}
{{- if .WhatToBring}}

What to bring:
{{.WhatToBring}}
{{- end}}

See you there!`

var reminderTmpl = template.Must(template.New("reminder").Parse(reminderTemplate))

type reminderParams struct {
	Name            string
	Title           string
	Date            string
	TimeRange       string
	Address         string
	MapURL          string
	ContentSchedule string
	WhatToBring     string
}

// RenderReminder builds the outbound reminder body for one enrollment.
func RenderReminder(course model.Course, enrollment model.Enrollment, loc *time.Location) (string, error) {
	params := reminderParams{
		Name:            firstName(enrollment.StudentName),
		Title:           course.Title,
		Date:            course.StartAt(loc).Format("Monday, 2 January 2006"),
		TimeRange:       timeRange(course.StartTime, course.EndTime),
		Address:         course.Address,
		MapURL:          course.MapURL,
		ContentSchedule: strings.TrimSpace(course.ContentSchedule),
		WhatToBring:     strings.TrimSpace(course.WhatToBring),
	}
	if params.Name == "" {
		params.Name = "there"
	}

	var b strings.Builder
	if err := reminderTmpl.Execute(&b, params); err != nil {
		return "", err
	}
	return b.String(), nil
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func timeRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return "until " + end
	default:
		return start + "-" + end
	}
}
