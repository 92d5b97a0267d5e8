package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/schedule"
)

// DefaultDueHour is the hour of day used for absolute dates
const DefaultDueHour = 9

var (
	dmyRegex      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoRegex      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	relativeRegex = regexp.MustCompile(`^(?:in\s+)?(\d+)\s*(h|hour|hours|d|day|days|w|week|weeks)$`)
)

// ParseDueDate parses various due date formats relative to now
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2026"), at 09:00 local time
// - yyyy-mm-dd (e.g., "2026-12-15"), at 09:00 local time
// - today, tomorrow
// - X hours (e.g., "24 hours", "1 hour")
// - X days (e.g., "3 days", "3d")
// - X weeks (e.g., "2 weeks", "2w")
//
// Relative days and weeks keep now's time of day.
func ParseDueDate(input string, now time.Time) (*time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}

	switch input {
	case "today", "now":
		return &now, nil
	case "tomorrow":
		due := now.AddDate(0, 0, 1)
		return &due, nil
	}

	if m := dmyRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[3], m[2], m[1], now.Location())
	}
	if m := isoRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[1], m[2], m[3], now.Location())
	}
	if due, err := parseRelativeTime(input, now); err != nil || due != nil {
		return due, err
	}

	return nil, clierr.Newf(clierr.InvalidDate,
		"invalid date %q. Use: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X hours, X days or X weeks", input)
}

func buildDate(yearStr, monthStr, dayStr string, loc *time.Location) (*time.Time, error) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)

	if month < 1 || month > 12 {
		return nil, clierr.New(clierr.InvalidDate, "month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, clierr.New(clierr.InvalidDate, "year must be between 2000 and 2100")
	}

	due := time.Date(year, time.Month(month), day, DefaultDueHour, 0, 0, 0, loc)

	// Normalisation moves invalid days (31/02) into the next month
	if due.Day() != day || due.Month() != time.Month(month) {
		return nil, clierr.Newf(clierr.InvalidDate, "%02d/%02d/%d is not a calendar date", day, month, year)
	}
	return &due, nil
}

// parseRelativeTime returns nil, nil when input is not a relative expression
func parseRelativeTime(input string, now time.Time) (*time.Time, error) {
	m := relativeRegex.FindStringSubmatch(input)
	if m == nil {
		return nil, nil
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, clierr.Newf(clierr.InvalidDate, "invalid number %q", m[1])
	}

	var due time.Time
	switch m[2] {
	case "h", "hour", "hours":
		if amount < 1 || amount > 8760 { // Max 1 year in hours
			return nil, clierr.New(clierr.InvalidDate, "hours must be between 1 and 8760")
		}
		due = now.Add(time.Duration(amount) * time.Hour)
	case "d", "day", "days":
		if amount < 0 || amount > 365 {
			return nil, clierr.New(clierr.InvalidDate, "days must be between 0 and 365")
		}
		due = now.AddDate(0, 0, amount)
	default:
		if amount < 1 || amount > 52 {
			return nil, clierr.New(clierr.InvalidDate, "weeks must be between 1 and 52")
		}
		due = now.AddDate(0, 0, amount*7)
	}
	return &due, nil
}

// FormatDueDate formats a due date for display relative to now
func FormatDueDate(due, now time.Time) string {
	daysDiff := schedule.DaysUntil(due, now)

	// Always show the actual date to avoid confusion
	dateStr := due.In(now.Location()).Format("02/01/2006")

	switch {
	case daysDiff < 0:
		if daysDiff == -1 {
			return fmt.Sprintf("⚠️ OVERDUE by 1 day (%s)", dateStr)
		}
		return fmt.Sprintf("⚠️ OVERDUE by %d days (%s)", -daysDiff, dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}
