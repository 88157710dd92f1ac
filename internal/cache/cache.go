package cache

import (
	"context"
	"time"
)

// DispatchKind labels which sweep produced an outbound send.
type DispatchKind string

const (
	KindScheduledMessage DispatchKind = "scheduled_message"
	KindCourseReminder   DispatchKind = "course_reminder"
)

// Entry is one audit record of an outbound dispatch. The log is written
// after the durable state change and is never consulted for dedup
// decisions; the persisted entity flags remain the source of truth.
type Entry struct {
	Kind     DispatchKind `json:"kind"`
	EntityID int64        `json:"entityId"`
	Phone    string       `json:"phone"`
	RemoteID string       `json:"remoteId,omitempty"`
	At       time.Time    `json:"at"`
}

type DispatchLog interface {
	StoreDispatch(ctx context.Context, e Entry) error
}

// NopLog is used when Redis is not configured.
type NopLog struct{}

func (NopLog) StoreDispatch(context.Context, Entry) error { return nil }
