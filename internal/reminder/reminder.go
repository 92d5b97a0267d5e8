// Package reminder decides when a task deserves a local notification and
// finds the notifications that belong to a task.
package reminder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/notify"
	"github.com/balkashynov/reefkeeper/internal/schedule"
)

// Title is the fixed heading of every maintenance reminder
const Title = "Maintenance Reminder"

// Scheduler schedules and cancels task reminders through a Notifier.
// It never mutates tasks; reminders are found again by the task id in their payload.
type Scheduler struct {
	notifier notify.Notifier
	clock    schedule.Clock
	logger   *zap.Logger
}

// NewScheduler creates a reminder scheduler
func NewScheduler(notifier notify.Notifier, clock schedule.Clock, logger *zap.Logger) *Scheduler {
	if notifier == nil {
		notifier = notify.Unavailable{}
	}
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{notifier: notifier, clock: clock, logger: logger}
}

// Body returns the reminder text for a task
func Body(t models.MaintenanceTask) string {
	when := "soon"
	if t.ReminderOffsetHours >= 24 {
		when = "tomorrow"
	}
	return fmt.Sprintf("\"%s\" is due %s!", t.Title, when)
}

// Schedule queues a reminder for the task's current due date.
// Returns "" and no error when notifications are off for the task, the
// trigger instant is not in the future, or notifications are unsupported.
func (s *Scheduler) Schedule(ctx context.Context, t models.MaintenanceTask) (string, error) {
	if !s.notifier.Available() {
		return "", nil
	}
	if !t.NotificationsEnabled {
		return "", nil
	}

	triggerAt := t.ReminderAt()
	if !triggerAt.After(s.clock.Now()) {
		s.logger.Debug("Reminder trigger already passed, skipping",
			zap.String("task_id", t.ID),
			zap.Time("trigger_at", triggerAt))
		return "", nil
	}

	id, err := s.notifier.Schedule(ctx, notify.Request{
		Title:     Title,
		Body:      Body(t),
		Payload:   map[string]string{notify.PayloadTaskID: t.ID},
		TriggerAt: triggerAt,
	})
	if err != nil {
		return "", fmt.Errorf("scheduling reminder for task %s: %w", t.ID, err)
	}

	s.logger.Debug("Reminder scheduled",
		zap.String("task_id", t.ID),
		zap.String("notification_id", id),
		zap.Time("trigger_at", triggerAt))
	return id, nil
}

// CancelForTask cancels every pending reminder tagged with taskID and
// returns how many were cancelled. Other reminders are left alone.
func (s *Scheduler) CancelForTask(ctx context.Context, taskID string) (int, error) {
	if !s.notifier.Available() {
		return 0, nil
	}

	pending, err := s.notifier.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing pending reminders: %w", err)
	}

	cancelled := 0
	for _, p := range pending {
		if p.Payload[notify.PayloadTaskID] != taskID {
			continue
		}
		if err := s.notifier.Cancel(ctx, p.Identifier); err != nil {
			return cancelled, fmt.Errorf("cancelling reminder %s: %w", p.Identifier, err)
		}
		cancelled++
	}
	return cancelled, nil
}

// PendingForTask lists the reminders currently queued for taskID
func (s *Scheduler) PendingForTask(ctx context.Context, taskID string) ([]notify.Pending, error) {
	if !s.notifier.Available() {
		return nil, nil
	}
	pending, err := s.notifier.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	var out []notify.Pending
	for _, p := range pending {
		if p.Payload[notify.PayloadTaskID] == taskID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Pending lists every queued reminder
func (s *Scheduler) Pending(ctx context.Context) ([]notify.Pending, error) {
	return s.notifier.ListPending(ctx)
}

// CancelAll drops every queued reminder
func (s *Scheduler) CancelAll(ctx context.Context) error {
	return s.notifier.CancelAll(ctx)
}
