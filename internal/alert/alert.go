// Package alert is the in-app notification surface: evaluators raise
// alerts, the HTTP layer lists them and invokes their actions.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Kind string

const (
	KindDueSoon Kind = "due_soon"
	KindOverdue Kind = "overdue"
)

// Action is one user-invocable follow-up on an alert, e.g. mark-done or
// an open-chat deep link.
type Action struct {
	Label string
	URL   string // optional deep link; empty for callback-only actions
	Run   func(ctx context.Context) error
}

type Alert struct {
	ID      int64
	Kind    Kind
	Title   string
	Body    string
	Actions []Action
	At      time.Time
}

type Notifier interface {
	Raise(ctx context.Context, a Alert) int64
}

// Feed is the default Notifier: an in-memory, append-only list of raised
// alerts for the current session.
type Feed struct {
	mu     sync.Mutex
	nextID int64
	alerts []Alert
}

func NewFeed() *Feed {
	return &Feed{nextID: 1}
}

// Raise stores the alert and returns its assigned id.
func (f *Feed) Raise(_ context.Context, a Alert) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	a.ID = f.nextID
	f.nextID++
	if a.At.IsZero() {
		a.At = time.Now()
	}
	f.alerts = append(f.alerts, a)
	return a.ID
}

// Snapshot returns a copy of all alerts raised so far, oldest first.
func (f *Feed) Snapshot() []Alert {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Alert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

// Invoke runs the action at actionIdx of the alert with the given id.
func (f *Feed) Invoke(ctx context.Context, alertID int64, actionIdx int) error {
	f.mu.Lock()
	var found *Alert
	for i := range f.alerts {
		if f.alerts[i].ID == alertID {
			found = &f.alerts[i]
			break
		}
	}
	if found == nil {
		f.mu.Unlock()
		return fmt.Errorf("alert %d not found", alertID)
	}
	if actionIdx < 0 || actionIdx >= len(found.Actions) {
		f.mu.Unlock()
		return fmt.Errorf("alert %d has no action %d", alertID, actionIdx)
	}
	action := found.Actions[actionIdx]
	f.mu.Unlock()

	if action.Run == nil {
		return nil
	}
	return action.Run(ctx)
}
