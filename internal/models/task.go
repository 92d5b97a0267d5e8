package models

import (
	"time"
)

// RecurrenceUnit is the unit of a task's repeat interval
type RecurrenceUnit string

const (
	UnitDays   RecurrenceUnit = "days"
	UnitWeeks  RecurrenceUnit = "weeks"
	UnitMonths RecurrenceUnit = "months"
)

// Valid reports whether u is one of the supported units
func (u RecurrenceUnit) Valid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths:
		return true
	}
	return false
}

// Task defaults applied by NewTask
const (
	DefaultRecurrenceInterval  = 7
	DefaultRecurrenceUnit      = UnitDays
	DefaultReminderOffsetHours = 24
)

// TaskCompletionRecord is one entry of a task's completion log
type TaskCompletionRecord struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	CompletedAt time.Time `json:"completedAt"`
	Notes       string    `json:"notes,omitempty"`
}

// MaintenanceTask represents a recurring or one-off tank chore
type MaintenanceTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Both set => recurring. Zero interval or empty unit => one-off.
	RecurrenceInterval int            `json:"recurrenceInterval,omitempty"`
	RecurrenceUnit     RecurrenceUnit `json:"recurrenceUnit,omitempty"`

	NextDueDate          time.Time `json:"nextDueDate"`
	ReminderOffsetHours  int       `json:"reminderOffsetHours"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	IsPredefined         bool      `json:"isPredefined"`

	CompletionHistory []TaskCompletionRecord `json:"completionHistory"`
	IsCompleted       bool                   `json:"isCompleted,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRecurring reports whether completing the task re-dates it instead of closing it
func (t MaintenanceTask) IsRecurring() bool {
	return t.RecurrenceInterval > 0 && t.RecurrenceUnit.Valid()
}

// ReminderAt returns the instant a reminder for the current due date should fire
func (t MaintenanceTask) ReminderAt() time.Time {
	return t.NextDueDate.Add(-time.Duration(t.ReminderOffsetHours) * time.Hour)
}

// LastCompletion returns the most recent completion record, if any
func (t MaintenanceTask) LastCompletion() *TaskCompletionRecord {
	if len(t.CompletionHistory) == 0 {
		return nil
	}
	rec := t.CompletionHistory[len(t.CompletionHistory)-1]
	return &rec
}

// NewTask builds a complete task from defaults with the patch laid over them.
// The ID is left empty; the repository assigns it on insert.
func NewTask(p TaskPatch, now time.Time) MaintenanceTask {
	t := MaintenanceTask{
		ID:                   "",
		Description:          "",
		RecurrenceInterval:   DefaultRecurrenceInterval,
		RecurrenceUnit:       DefaultRecurrenceUnit,
		NextDueDate:          now,
		ReminderOffsetHours:  DefaultReminderOffsetHours,
		NotificationsEnabled: true,
		IsPredefined:         false,
		CompletionHistory:    []TaskCompletionRecord{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	p.Apply(&t)
	return t
}
