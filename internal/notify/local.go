package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduledNotification is a row of the pending-notification queue
type ScheduledNotification struct {
	ID        string            `gorm:"primaryKey"`
	Title     string            `gorm:"not null"`
	Body      string            `gorm:"not null"`
	Payload   map[string]string `gorm:"serializer:json"`
	TriggerAt time.Time         `gorm:"index;not null"`
	CreatedAt time.Time
}

func (n ScheduledNotification) pending() Pending {
	return Pending{
		Identifier: n.ID,
		Title:      n.Title,
		Body:       n.Body,
		Payload:    n.Payload,
		TriggerAt:  n.TriggerAt,
	}
}

// LocalNotifier keeps pending notifications in the local database.
// A Dispatcher drains due rows and hands them to a Sink.
type LocalNotifier struct {
	db *gorm.DB
}

// NewLocalNotifier migrates the queue table and returns a notifier over it
func NewLocalNotifier(db *gorm.DB) (*LocalNotifier, error) {
	if err := db.AutoMigrate(&ScheduledNotification{}); err != nil {
		return nil, fmt.Errorf("failed to migrate notification queue: %w", err)
	}
	return &LocalNotifier{db: db}, nil
}

func (n *LocalNotifier) Available() bool { return true }

func (n *LocalNotifier) Schedule(ctx context.Context, req Request) (string, error) {
	row := ScheduledNotification{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Body:      req.Body,
		Payload:   req.Payload,
		TriggerAt: req.TriggerAt.UTC(), // stored as text; one offset keeps comparisons ordered
	}
	if row.Payload == nil {
		row.Payload = map[string]string{}
	}
	if err := n.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to schedule notification: %w", err)
	}
	return row.ID, nil
}

// ListPending returns every undelivered notification ordered by trigger time
func (n *LocalNotifier) ListPending(ctx context.Context) ([]Pending, error) {
	var rows []ScheduledNotification
	if err := n.db.WithContext(ctx).Order("trigger_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPending(rows), nil
}

func (n *LocalNotifier) Cancel(ctx context.Context, identifier string) error {
	return n.db.WithContext(ctx).Where("id = ?", identifier).Delete(&ScheduledNotification{}).Error
}

func (n *LocalNotifier) CancelAll(ctx context.Context) error {
	return n.db.WithContext(ctx).Where("1 = 1").Delete(&ScheduledNotification{}).Error
}

// Due returns notifications whose trigger time is at or before now
func (n *LocalNotifier) Due(ctx context.Context, now time.Time, limit int) ([]Pending, error) {
	var rows []ScheduledNotification
	q := n.db.WithContext(ctx).Where("trigger_at <= ?", now.UTC()).Order("trigger_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPending(rows), nil
}

// Ack removes a delivered notification from the queue
func (n *LocalNotifier) Ack(ctx context.Context, identifier string) error {
	return n.Cancel(ctx, identifier)
}

func toPending(rows []ScheduledNotification) []Pending {
	out := make([]Pending, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.pending())
	}
	return out
}
