package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/schedule"
)

// Rule is a parsed recurrence rule. The zero Rule means one-off.
type Rule struct {
	Interval int
	Unit     models.RecurrenceUnit
}

// IsRecurring reports whether the rule repeats
func (r Rule) IsRecurring() bool {
	return r.Interval > 0 && r.Unit.Valid()
}

// String renders the rule, e.g. "every 2 weeks" or "once"
func (r Rule) String() string {
	return schedule.DescribeRule(r.Interval, r.Unit)
}

// Apply writes the rule into a task patch; a one-off rule clears recurrence
func (r Rule) Apply(p *models.TaskPatch) {
	p.RecurrenceInterval = models.Ptr(r.Interval)
	p.RecurrenceUnit = models.Ptr(r.Unit)
}

var (
	shortRuleRegex = regexp.MustCompile(`^(\d+)\s*(d|w|m)$`)
	longRuleRegex  = regexp.MustCompile(`^(?:every\s+)?(\d+\s+)?(day|days|week|weeks|month|months)$`)
)

// ParseRecurrence parses a recurrence rule
// Supported formats:
// - short form: 7d, 2w, 1m
// - long form: "3 days", "every 2 weeks", "every month"
// - daily, weekly, monthly
// - none, once, never, 0 (one-off task)
func ParseRecurrence(input string) (Rule, error) {
	input = strings.ToLower(strings.Join(strings.Fields(input), " "))

	switch input {
	case "none", "once", "never", "0", "":
		return Rule{}, nil
	case "daily":
		return Rule{Interval: 1, Unit: models.UnitDays}, nil
	case "weekly":
		return Rule{Interval: 1, Unit: models.UnitWeeks}, nil
	case "monthly":
		return Rule{Interval: 1, Unit: models.UnitMonths}, nil
	}

	var amount, unit string
	if m := shortRuleRegex.FindStringSubmatch(input); m != nil {
		amount, unit = m[1], m[2]
	} else if m := longRuleRegex.FindStringSubmatch(input); m != nil {
		amount, unit = strings.TrimSpace(m[1]), m[2]
	} else {
		return Rule{}, clierr.Newf(clierr.InvalidRecurrence,
			"invalid recurrence %q. Use: 7d, 2w, 1m, \"every 2 weeks\" or none", input)
	}

	interval := 1
	if amount != "" {
		n, err := strconv.Atoi(amount)
		if err != nil || n < 1 || n > 365 {
			return Rule{}, clierr.Newf(clierr.InvalidRecurrence, "interval must be between 1 and 365, got %q", amount)
		}
		interval = n
	}

	switch unit[0] {
	case 'd':
		return Rule{Interval: interval, Unit: models.UnitDays}, nil
	case 'w':
		return Rule{Interval: interval, Unit: models.UnitWeeks}, nil
	default:
		return Rule{Interval: interval, Unit: models.UnitMonths}, nil
	}
}
