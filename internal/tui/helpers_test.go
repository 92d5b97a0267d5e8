package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/reefkeeper/internal/models"
)

var testNow = time.Date(2026, 2, 12, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// fakeStore records calls made by the models
type fakeStore struct {
	tasks     []models.MaintenanceTask
	added     []models.TaskPatch
	updated   map[string]models.TaskPatch
	completed []string
	removed   []string
	err       error
}

func newFakeStore(tasks ...models.MaintenanceTask) *fakeStore {
	return &fakeStore{tasks: tasks, updated: map[string]models.TaskPatch{}}
}

func (s *fakeStore) Refresh(context.Context) []models.MaintenanceTask {
	return append([]models.MaintenanceTask(nil), s.tasks...)
}

func (s *fakeStore) find(id string) *models.MaintenanceTask {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

func (s *fakeStore) Add(_ context.Context, p models.TaskPatch) (*models.MaintenanceTask, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.added = append(s.added, p)
	t := models.NewTask(p, testNow)
	t.ID = fmt.Sprintf("t%d", len(s.tasks)+1)
	s.tasks = append(s.tasks, t)
	return &t, nil
}

func (s *fakeStore) Update(_ context.Context, id string, p models.TaskPatch) (*models.MaintenanceTask, error) {
	if s.err != nil {
		return nil, s.err
	}
	t := s.find(id)
	if t == nil {
		return nil, nil
	}
	s.updated[id] = p
	p.Apply(t)
	out := *t
	return &out, nil
}

func (s *fakeStore) Complete(_ context.Context, id, _ string) (*models.MaintenanceTask, error) {
	if s.err != nil {
		return nil, s.err
	}
	t := s.find(id)
	if t == nil {
		return nil, nil
	}
	s.completed = append(s.completed, id)
	t.NextDueDate = testNow.AddDate(0, 0, 7)
	out := *t
	return &out, nil
}

func (s *fakeStore) Remove(_ context.Context, id string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.removed = append(s.removed, id)
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func task(id, title string, due time.Time) models.MaintenanceTask {
	t := models.NewTask(models.TaskPatch{Title: models.Ptr(title), NextDueDate: &due}, testNow)
	t.ID = id
	return t
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
