package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/balkashynov/reefkeeper/internal/models"
)

// ErrInvalidRecurrence is returned for a non-positive interval or unknown unit
var ErrInvalidRecurrence = errors.New("invalid recurrence rule")

// NextDueDate adds interval units to from. Months use calendar arithmetic
// with Go's normalisation, so Jan 31 + 1 month lands in early March.
func NextDueDate(from time.Time, interval int, unit models.RecurrenceUnit) (time.Time, error) {
	if interval <= 0 {
		return time.Time{}, fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidRecurrence, interval)
	}
	switch unit {
	case models.UnitDays:
		return from.AddDate(0, 0, interval), nil
	case models.UnitWeeks:
		return from.AddDate(0, 0, interval*7), nil
	case models.UnitMonths:
		return from.AddDate(0, interval, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidRecurrence, unit)
	}
}

// NextTaskDueDate re-dates a recurring task from the given instant
func NextTaskDueDate(t models.MaintenanceTask, from time.Time) (time.Time, error) {
	return NextDueDate(from, t.RecurrenceInterval, t.RecurrenceUnit)
}

// DescribeRule renders a recurrence rule for display, e.g. "every 2 weeks"
func DescribeRule(interval int, unit models.RecurrenceUnit) string {
	if interval <= 0 || !unit.Valid() {
		return "once"
	}
	if interval == 1 {
		return "every " + string(unit[:len(unit)-1])
	}
	return fmt.Sprintf("every %d %s", interval, unit)
}
