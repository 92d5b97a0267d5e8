// Package schedule holds the pure date arithmetic behind task urgency and recurrence.
package schedule

import (
	"time"

	"github.com/balkashynov/reefkeeper/internal/models"
)

// Urgency is the bucket a task falls into relative to today
type Urgency string

const (
	Overdue  Urgency = "overdue"
	Today    Urgency = "today"
	Upcoming Urgency = "upcoming"
	Later    Urgency = "later"
)

// UpcomingWindowDays is the last day offset still counted as upcoming
const UpcomingWindowDays = 3

// Urgencies lists the buckets in display order
var Urgencies = []Urgency{Overdue, Today, Upcoming, Later}

// Label returns the section heading for the bucket
func (u Urgency) Label() string {
	switch u {
	case Overdue:
		return "🔴 Overdue"
	case Today:
		return "🟡 Due Today"
	case Upcoming:
		return "🔵 Upcoming"
	case Later:
		return "⚪ Later"
	default:
		return string(u)
	}
}

// DaysUntil returns the number of calendar days from now's day to due's day,
// both taken in now's location. Time of day is ignored.
func DaysUntil(due, now time.Time) int {
	loc := now.Location()
	due = due.In(loc)
	// Midnight UTC of each calendar date keeps the difference exact across DST shifts.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(today).Hours() / 24)
}

// ClassifyUrgency maps a due instant to an urgency bucket relative to now
func ClassifyUrgency(due, now time.Time) Urgency {
	diffDays := DaysUntil(due, now)
	switch {
	case diffDays < 0:
		return Overdue
	case diffDays == 0:
		return Today
	case diffDays <= UpcomingWindowDays:
		return Upcoming
	default:
		return Later
	}
}

// TaskUrgency classifies a task by its next due date
func TaskUrgency(t models.MaintenanceTask, now time.Time) Urgency {
	return ClassifyUrgency(t.NextDueDate, now)
}
