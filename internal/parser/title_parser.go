package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/reefkeeper/internal/models"
)

// ParsedTask represents a task parsed from the quick-add syntax
type ParsedTask struct {
	Title               string
	Rule                *Rule
	DueDate             *time.Time
	ReminderOffsetHours *int
	Errors              []string
}

var (
	everyRegex  = regexp.MustCompile(`every:([^\s]+)`)
	dueRegex    = regexp.MustCompile(`due:([^\s]+)`)
	remindRegex = regexp.MustCompile(`remind:([^\s]+)`)
	offsetRegex = regexp.MustCompile(`^(\d+)h?$`)
)

// ParseTitle extracts metadata from a task title using quick-add syntax
// Syntax: "Water change every:1w due:tomorrow remind:12h"
// Values cannot contain spaces; use 3days or 3d rather than "3 days".
func ParseTitle(input string, now time.Time) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Errors: []string{},
	}

	// Extract recurrence (every:2w, every:none)
	if m := everyRegex.FindStringSubmatch(input); len(m) > 1 {
		rule, err := ParseRecurrence(m[1])
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Rule = &rule
		}
		input = everyRegex.ReplaceAllString(input, "")
	}

	// Extract due date (due:3days, due:15/12/2026, etc.)
	if m := dueRegex.FindStringSubmatch(input); len(m) > 1 {
		due, err := ParseDueDate(m[1], now)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.DueDate = due
		}
		input = dueRegex.ReplaceAllString(input, "")
	}

	// Extract reminder offset (remind:12h)
	if m := remindRegex.FindStringSubmatch(input); len(m) > 1 {
		if om := offsetRegex.FindStringSubmatch(strings.ToLower(m[1])); om != nil {
			hours, _ := strconv.Atoi(om[1])
			result.ReminderOffsetHours = &hours
		} else {
			result.Errors = append(result.Errors, "Invalid reminder offset '"+m[1]+"'. Use hours, e.g. remind:12h")
		}
		input = remindRegex.ReplaceAllString(input, "")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")

	return result
}

// Patch converts the parsed fields into a task patch
func (p ParsedTask) Patch() models.TaskPatch {
	patch := models.TaskPatch{}
	if p.Title != "" {
		patch.Title = models.Ptr(p.Title)
	}
	if p.Rule != nil {
		p.Rule.Apply(&patch)
	}
	if p.DueDate != nil {
		due := *p.DueDate
		patch.NextDueDate = &due
	}
	if p.ReminderOffsetHours != nil {
		patch.ReminderOffsetHours = models.Ptr(*p.ReminderOffsetHours)
	}
	return patch
}
