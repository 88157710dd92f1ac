package model

import "time"

type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// MessageStatus tracks the delivery state of a scheduled-message task.
// "sending" is a claim state: a sweep moves a row pending->sending before
// dispatching so that a concurrent sweep cannot pick up the same row.
type MessageStatus string

const (
	MessagePending MessageStatus = "pending"
	MessageSending MessageStatus = "sending"
	MessageSent    MessageStatus = "sent"
	MessageFailed  MessageStatus = "failed"
)

// CanTransition reports whether a message-status change is legal.
// Sent and failed are terminal.
func (s MessageStatus) CanTransition(to MessageStatus) bool {
	switch s {
	case MessagePending:
		return to == MessageSending || to == MessageFailed
	case MessageSending:
		return to == MessageSent || to == MessageFailed
	default:
		return false
	}
}

func (s MessageStatus) Terminal() bool {
	return s == MessageSent || s == MessageFailed
}

type Task struct {
	ID         int64
	AssignedTo string
	Title      string
	DueDate    time.Time
	Status     TaskStatus
	Priority   Priority

	// Scheduled-message fields; MessageStatus is only meaningful when
	// IsScheduledMessage is true.
	IsScheduledMessage bool
	MessageBody        string
	MediaURL           *string
	MessageStatus      MessageStatus
	LastError          *string
	SentAt             *time.Time
	RemoteMessageID    *string

	// Weak reference to a contact; the task never owns the contact.
	ContactID    *int64
	ContactPhone string

	CreatedAt time.Time
	UpdatedAt time.Time
}
