package db

import (
	"context"

	"github.com/balkashynov/reefkeeper/internal/models"
)

// TaskRepo persists the maintenance task collection
type TaskRepo struct {
	c collection[models.MaintenanceTask]
}

// NewTaskRepo creates a task repository over kv
func NewTaskRepo(kv KV) *TaskRepo {
	return &TaskRepo{c: newCollection(kv, TasksKey, TasksInitializedKey,
		func(t *models.MaintenanceTask) *string { return &t.ID })}
}

// GetTasks returns every stored task
func (r *TaskRepo) GetTasks(ctx context.Context) ([]models.MaintenanceTask, error) {
	return r.c.all(ctx)
}

// SaveTasks replaces the stored collection
func (r *TaskRepo) SaveTasks(ctx context.Context, tasks []models.MaintenanceTask) error {
	return r.c.save(ctx, tasks)
}

// GetTask retrieves a task by ID; nil when absent
func (r *TaskRepo) GetTask(ctx context.Context, id string) (*models.MaintenanceTask, error) {
	return r.c.get(ctx, id)
}

// AddTask stores a new task with a fresh ID and an empty completion history
func (r *TaskRepo) AddTask(ctx context.Context, task models.MaintenanceTask) (models.MaintenanceTask, error) {
	task.CompletionHistory = []models.TaskCompletionRecord{}
	return r.c.insert(ctx, task)
}

// MutateTask applies fn to the stored task and saves the collection.
// Returns nil, nil when the task does not exist.
func (r *TaskRepo) MutateTask(ctx context.Context, id string, fn func(*models.MaintenanceTask) error) (*models.MaintenanceTask, error) {
	return r.c.mutate(ctx, id, fn)
}

// DeleteTask removes a task; reports whether it existed
func (r *TaskRepo) DeleteTask(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, id)
}

// IsInitialized reports whether default tasks were already seeded
func (r *TaskRepo) IsInitialized(ctx context.Context) (bool, error) {
	return r.c.isInitialized(ctx)
}

// MarkInitialized records that default tasks were seeded
func (r *TaskRepo) MarkInitialized(ctx context.Context) error {
	return r.c.markInitialized(ctx)
}
