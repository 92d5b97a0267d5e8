// Package tasks runs the maintenance task lifecycle: every mutation is a
// full read-modify-write of the stored collection followed by reminder
// cancellation and rescheduling.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/db"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/reminder"
	"github.com/balkashynov/reefkeeper/internal/schedule"
	"github.com/balkashynov/reefkeeper/internal/seed"
)

// Service orchestrates task mutations and keeps the last loaded collection
type Service struct {
	repo      *db.TaskRepo
	reminders *reminder.Scheduler
	clock     schedule.Clock
	logger    *zap.Logger

	mu    sync.RWMutex
	tasks []models.MaintenanceTask
}

// NewService creates a task service
func NewService(repo *db.TaskRepo, reminders *reminder.Scheduler, clock schedule.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reminders == nil {
		reminders = reminder.NewScheduler(nil, clock, logger)
	}
	return &Service{
		repo:      repo,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
		tasks:     []models.MaintenanceTask{},
	}
}

// Now returns the service clock's current time
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Tasks returns the collection as of the last Refresh
func (s *Service) Tasks() []models.MaintenanceTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MaintenanceTask, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Refresh reloads the full collection. A read failure is logged and
// leaves the caller with an empty collection.
func (s *Service) Refresh(ctx context.Context) []models.MaintenanceTask {
	loaded, err := s.repo.GetTasks(ctx)
	if err != nil {
		s.logger.Error("Failed to load tasks", zap.Error(err))
		loaded = []models.MaintenanceTask{}
	}

	s.mu.Lock()
	s.tasks = loaded
	s.mu.Unlock()
	return s.Tasks()
}

// Get returns a single task; nil when no task has that ID
func (s *Service) Get(ctx context.Context, id string) (*models.MaintenanceTask, error) {
	return s.repo.GetTask(ctx, id)
}

// Add creates a task from the patch and schedules its first reminder
func (s *Service) Add(ctx context.Context, p models.TaskPatch) (*models.MaintenanceTask, error) {
	if p.Title == nil || strings.TrimSpace(*p.Title) == "" {
		return nil, clierr.New(clierr.InvalidInput, "title is required")
	}
	if err := validatePatch(p); err != nil {
		return nil, err
	}

	task := models.NewTask(p, s.clock.Now())
	saved, err := s.repo.AddTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("adding task: %w", err)
	}

	s.logger.Info("Task added", zap.String("task_id", saved.ID), zap.String("title", saved.Title))
	s.scheduleReminder(ctx, saved)
	s.Refresh(ctx)
	return &saved, nil
}

// Update merges the patch into the stored task. Existing reminders are
// cancelled and a fresh one is scheduled from the merged state.
// Returns nil, nil when the task does not exist.
func (s *Service) Update(ctx context.Context, id string, p models.TaskPatch) (*models.MaintenanceTask, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, clierr.New(clierr.InvalidInput, "title cannot be empty")
	}
	if err := validatePatch(p); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	updated, err := s.repo.MutateTask(ctx, id, func(t *models.MaintenanceTask) error {
		closed := t.IsCompleted && !t.IsRecurring()
		p.Apply(t)
		// A closed one-off that gains a rule reopens from now
		if closed && t.IsRecurring() {
			if p.NextDueDate == nil {
				next, err := schedule.NextTaskDueDate(*t, now)
				if err != nil {
					return err
				}
				t.NextDueDate = next
			}
			if p.NotificationsEnabled == nil {
				t.NotificationsEnabled = true
			}
		}
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	if updated == nil {
		return nil, nil
	}

	s.logger.Info("Task updated", zap.String("task_id", id))
	s.rescheduleReminder(ctx, *updated)
	s.Refresh(ctx)
	return updated, nil
}

// Complete records a completion at the current time. Recurring tasks move
// their due date one interval past now; one-off tasks are closed and stop
// notifying. Completing a closed one-off task is INVALID_INPUT.
// Returns nil, nil when the task does not exist.
func (s *Service) Complete(ctx context.Context, id, notes string) (*models.MaintenanceTask, error) {
	now := s.clock.Now()
	updated, err := s.repo.MutateTask(ctx, id, func(t *models.MaintenanceTask) error {
		if t.IsCompleted && !t.IsRecurring() {
			return clierr.Newf(clierr.InvalidInput, "task %q is already completed", t.Title)
		}
		t.CompletionHistory = append(t.CompletionHistory, models.TaskCompletionRecord{
			ID:          uuid.NewString(),
			TaskID:      t.ID,
			CompletedAt: now,
			Notes:       notes,
		})

		if t.IsRecurring() {
			next, err := schedule.NextTaskDueDate(*t, now)
			if err != nil {
				return err
			}
			t.NextDueDate = next
		} else {
			t.IsCompleted = true
			t.NotificationsEnabled = false
		}
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("completing task %s: %w", id, err)
	}
	if updated == nil {
		return nil, nil
	}

	s.logger.Info("Task completed",
		zap.String("task_id", id),
		zap.Bool("recurring", updated.IsRecurring()),
		zap.Time("next_due", updated.NextDueDate))
	s.rescheduleReminder(ctx, *updated)
	s.Refresh(ctx)
	return updated, nil
}

// Remove cancels the task's reminders and deletes it. Removing an unknown
// task is a no-op that still clears any reminders tagged with its ID.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	if _, err := s.reminders.CancelForTask(ctx, id); err != nil {
		s.logger.Warn("Failed to cancel reminders", zap.String("task_id", id), zap.Error(err))
	}

	removed, err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting task %s: %w", id, err)
	}
	if removed {
		s.logger.Info("Task deleted", zap.String("task_id", id))
	}
	s.Refresh(ctx)
	return removed, nil
}

// SeedDefaults writes the templates into an unseeded store, each due one
// interval from now, and schedules their reminders. The initialized flag is
// set only after every task is stored, so a failed run is retried next time.
// Returns the number of tasks created; 0 when the store was already seeded.
func (s *Service) SeedDefaults(ctx context.Context, templates []seed.TaskTemplate) (int, error) {
	done, err := s.repo.IsInitialized(ctx)
	if err != nil {
		return 0, err
	}
	if done {
		return 0, nil
	}

	now := s.clock.Now()
	created := make([]models.MaintenanceTask, 0, len(templates))
	for _, tmpl := range templates {
		interval := tmpl.Interval
		if interval <= 0 {
			interval = 1
		}
		due, err := schedule.NextDueDate(now, interval, tmpl.Unit)
		if err != nil {
			return 0, fmt.Errorf("seeding %q: %w", tmpl.Title, err)
		}

		p := tmpl.Patch()
		p.RecurrenceInterval = models.Ptr(interval)
		p.NextDueDate = &due

		saved, err := s.repo.AddTask(ctx, models.NewTask(p, now))
		if err != nil {
			return 0, fmt.Errorf("seeding %q: %w", tmpl.Title, err)
		}
		created = append(created, saved)
	}

	for _, t := range created {
		s.scheduleReminder(ctx, t)
	}

	if err := s.repo.MarkInitialized(ctx); err != nil {
		return len(created), err
	}
	s.logger.Info("Seeded default tasks", zap.Int("count", len(created)))
	s.Refresh(ctx)
	return len(created), nil
}

func (s *Service) scheduleReminder(ctx context.Context, t models.MaintenanceTask) {
	if _, err := s.reminders.Schedule(ctx, t); err != nil {
		s.logger.Warn("Failed to schedule reminder", zap.String("task_id", t.ID), zap.Error(err))
	}
}

// rescheduleReminder always cancels before scheduling so a task never has
// two live reminders
func (s *Service) rescheduleReminder(ctx context.Context, t models.MaintenanceTask) {
	if _, err := s.reminders.CancelForTask(ctx, t.ID); err != nil {
		s.logger.Warn("Failed to cancel reminders", zap.String("task_id", t.ID), zap.Error(err))
	}
	s.scheduleReminder(ctx, t)
}

func validatePatch(p models.TaskPatch) error {
	if p.RecurrenceUnit != nil && *p.RecurrenceUnit != "" && !p.RecurrenceUnit.Valid() {
		return clierr.Newf(clierr.InvalidRecurrence, "unknown recurrence unit %q", *p.RecurrenceUnit).
			WithDetails(map[string]any{"allowed": []string{"days", "weeks", "months"}})
	}
	if p.RecurrenceInterval != nil && *p.RecurrenceInterval < 0 {
		return clierr.Newf(clierr.InvalidRecurrence, "recurrence interval must not be negative, got %d", *p.RecurrenceInterval)
	}
	if p.ReminderOffsetHours != nil && *p.ReminderOffsetHours < 0 {
		return clierr.Newf(clierr.InvalidInput, "reminder offset must not be negative, got %d", *p.ReminderOffsetHours)
	}
	return nil
}
