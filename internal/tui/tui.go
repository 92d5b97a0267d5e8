package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/parser"
)

// RunBoard starts the interactive maintenance board
func RunBoard(ctx context.Context, store TaskStore, now func() time.Time) error {
	model := NewBoardModel(ctx, store, now)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// RunTaskForm starts the add/edit wizard and reports the outcome to out.
// existing nil means a new task.
func RunTaskForm(ctx context.Context, out io.Writer, store TaskStore, now func() time.Time, existing *models.MaintenanceTask) (*models.MaintenanceTask, error) {
	model := NewTaskFormModel(ctx, store, now, existing)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(TaskFormModel)
	if !ok {
		return nil, nil
	}
	switch {
	case m.Err() != nil:
		return nil, m.Err()
	case m.Cancelled():
		fmt.Fprintln(out, "❌ Cancelled, nothing saved.")
	case m.Saved() != nil:
		task := m.Saved()
		verb := "added"
		if existing != nil {
			verb = "updated"
		}
		fmt.Fprintf(out, "✅ Task \"%s\" %s, %s\n", task.Title, verb, parser.FormatDueDate(task.NextDueDate, now()))
	}
	return m.Saved(), nil
}
