package tasks

import (
	"sort"
	"time"

	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/schedule"
)

// Section is one urgency bucket of the dashboard
type Section struct {
	Urgency schedule.Urgency
	Tasks   []models.MaintenanceTask
}

// Title returns the section heading
func (s Section) Title() string {
	return s.Urgency.Label()
}

// GroupByUrgency buckets open tasks as overdue, today, upcoming and later,
// each sorted by due date. Empty buckets and closed one-off tasks are left out.
func GroupByUrgency(tasks []models.MaintenanceTask, now time.Time) []Section {
	buckets := make(map[schedule.Urgency][]models.MaintenanceTask, len(schedule.Urgencies))
	for _, t := range tasks {
		if t.IsCompleted {
			continue
		}
		u := schedule.TaskUrgency(t, now)
		buckets[u] = append(buckets[u], t)
	}

	var sections []Section
	for _, u := range schedule.Urgencies {
		items := buckets[u]
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].NextDueDate.Before(items[j].NextDueDate)
		})
		sections = append(sections, Section{Urgency: u, Tasks: items})
	}
	return sections
}

// Summary counts tasks per urgency bucket
type Summary struct {
	Overdue   int
	Today     int
	Upcoming  int
	Later     int
	Completed int
	Total     int
}

// Open returns the number of tasks still awaiting completion
func (s Summary) Open() int {
	return s.Total - s.Completed
}

// Summarize counts tasks per urgency bucket; closed one-off tasks count as completed
func Summarize(tasks []models.MaintenanceTask, now time.Time) Summary {
	var s Summary
	for _, t := range tasks {
		s.Total++
		if t.IsCompleted {
			s.Completed++
			continue
		}
		switch schedule.TaskUrgency(t, now) {
		case schedule.Overdue:
			s.Overdue++
		case schedule.Today:
			s.Today++
		case schedule.Upcoming:
			s.Upcoming++
		default:
			s.Later++
		}
	}
	return s
}
