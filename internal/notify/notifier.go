// Package notify is the local notification primitive: schedule a message for a
// point in time, list what is pending, cancel by identifier.
package notify

import (
	"context"
	"time"
)

// PayloadTaskID is the payload key reminders tag their owning task with
const PayloadTaskID = "taskId"

// Request describes a notification to deliver at TriggerAt
type Request struct {
	Title     string
	Body      string
	Payload   map[string]string
	TriggerAt time.Time
}

// Pending is a scheduled notification that has not been delivered yet
type Pending struct {
	Identifier string
	Title      string
	Body       string
	Payload    map[string]string
	TriggerAt  time.Time
}

// Notifier schedules and cancels local notifications.
// Implementations without notification support report Available() == false
// and treat every call as a successful no-op.
type Notifier interface {
	Available() bool
	Schedule(ctx context.Context, req Request) (string, error)
	ListPending(ctx context.Context) ([]Pending, error)
	Cancel(ctx context.Context, identifier string) error
	CancelAll(ctx context.Context) error
}

// Unavailable is the Notifier for environments without notification support
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Schedule(context.Context, Request) (string, error) { return "", nil }

func (Unavailable) ListPending(context.Context) ([]Pending, error) { return nil, nil }

func (Unavailable) Cancel(context.Context, string) error { return nil }

func (Unavailable) CancelAll(context.Context) error { return nil }
