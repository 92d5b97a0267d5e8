package models

import "time"

// TaskPatch represents a partial task update.
// nil pointer => "no change". ID and CreatedAt are not patchable.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`

	// A zero interval or empty unit clears the recurrence rule.
	RecurrenceInterval *int            `json:"recurrenceInterval,omitempty"`
	RecurrenceUnit     *RecurrenceUnit `json:"recurrenceUnit,omitempty"`

	NextDueDate          *time.Time `json:"nextDueDate,omitempty"`
	ReminderOffsetHours  *int       `json:"reminderOffsetHours,omitempty"`
	NotificationsEnabled *bool      `json:"notificationsEnabled,omitempty"`
	IsPredefined         *bool      `json:"isPredefined,omitempty"`
	IsCompleted          *bool      `json:"isCompleted,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil &&
		p.RecurrenceInterval == nil && p.RecurrenceUnit == nil &&
		p.NextDueDate == nil && p.ReminderOffsetHours == nil &&
		p.NotificationsEnabled == nil && p.IsPredefined == nil && p.IsCompleted == nil
}

// Apply merges the set fields of p into t
func (p TaskPatch) Apply(t *MaintenanceTask) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.RecurrenceInterval != nil {
		t.RecurrenceInterval = *p.RecurrenceInterval
	}
	if p.RecurrenceUnit != nil {
		t.RecurrenceUnit = *p.RecurrenceUnit
	}
	if t.RecurrenceInterval <= 0 || t.RecurrenceUnit == "" {
		t.RecurrenceInterval = 0
		t.RecurrenceUnit = ""
	}
	if p.NextDueDate != nil {
		t.NextDueDate = *p.NextDueDate
	}
	if p.ReminderOffsetHours != nil {
		t.ReminderOffsetHours = *p.ReminderOffsetHours
	}
	if p.NotificationsEnabled != nil {
		t.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.IsPredefined != nil {
		t.IsPredefined = *p.IsPredefined
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if t.IsRecurring() {
		t.IsCompleted = false
	}
}

// CreaturePatch represents a partial creature update.
// nil pointer => "no change"; empty PhotoURI clears the photo.
type CreaturePatch struct {
	Name         *string       `json:"name,omitempty"`
	Species      *string       `json:"species,omitempty"`
	Type         *CreatureType `json:"type,omitempty"`
	PhotoURI     *string       `json:"photoUri,omitempty"`
	DateAcquired *time.Time    `json:"dateAcquired,omitempty"`
	Quantity     *int          `json:"quantity,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
	Archived     *bool         `json:"archived,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p CreaturePatch) Empty() bool {
	return p.Name == nil && p.Species == nil && p.Type == nil && p.PhotoURI == nil &&
		p.DateAcquired == nil && p.Quantity == nil && p.Notes == nil && p.Archived == nil
}

// Apply merges the set fields of p into c
func (p CreaturePatch) Apply(c *Creature) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Species != nil {
		c.Species = *p.Species
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.PhotoURI != nil {
		if *p.PhotoURI == "" {
			c.PhotoURI = nil
		} else {
			uri := *p.PhotoURI
			c.PhotoURI = &uri
		}
	}
	if p.DateAcquired != nil {
		c.DateAcquired = *p.DateAcquired
	}
	if p.Quantity != nil {
		c.Quantity = *p.Quantity
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Archived != nil {
		c.Archived = *p.Archived
	}
}

// Ptr returns a pointer to v; handy for building patches
func Ptr[T any](v T) *T {
	return &v
}
