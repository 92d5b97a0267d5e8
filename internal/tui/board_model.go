package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/parser"
	"github.com/balkashynov/reefkeeper/internal/schedule"
	"github.com/balkashynov/reefkeeper/internal/tasks"
)

// TaskStore is the task service as seen by the TUI
type TaskStore interface {
	Refresh(ctx context.Context) []models.MaintenanceTask
	Add(ctx context.Context, p models.TaskPatch) (*models.MaintenanceTask, error)
	Update(ctx context.Context, id string, p models.TaskPatch) (*models.MaintenanceTask, error)
	Complete(ctx context.Context, id, notes string) (*models.MaintenanceTask, error)
	Remove(ctx context.Context, id string) (bool, error)
}

type tasksLoadedMsg struct {
	tasks []models.MaintenanceTask
}

type actionDoneMsg struct {
	status string
	err    error
}

// BoardModel shows open tasks grouped by urgency
type BoardModel struct {
	ctx   context.Context
	store TaskStore
	now   func() time.Time

	width  int
	height int

	sections []tasks.Section
	items    []models.MaintenanceTask // sections flattened in display order
	selected int
	loaded   bool

	confirmDelete bool
	status        string
	err           error

	wave *Wave
	keys boardKeyMap
	help help.Model
}

// NewBoardModel creates a board over the store
func NewBoardModel(ctx context.Context, store TaskStore, now func() time.Time) BoardModel {
	return BoardModel{
		ctx:   ctx,
		store: store,
		now:   now,
		wave:  NewWave(DefaultWaveConfig()),
		keys:  defaultBoardKeys(),
		help:  help.New(),
	}
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.loadTasks(), m.wave.Cmd())
}

func (m BoardModel) loadTasks() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return tasksLoadedMsg{tasks: store.Refresh(ctx)}
	}
}

func (m BoardModel) completeSelected() tea.Cmd {
	task, ok := m.current()
	if !ok {
		return nil
	}
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		updated, err := store.Complete(ctx, task.ID, "")
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if updated == nil {
			return actionDoneMsg{err: fmt.Errorf("task %q no longer exists", task.Title)}
		}
		if updated.IsRecurring() {
			return actionDoneMsg{status: fmt.Sprintf("✅ %s done, next due %s", updated.Title, updated.NextDueDate.Format("02/01/2006"))}
		}
		return actionDoneMsg{status: fmt.Sprintf("✅ %s done", updated.Title)}
	}
}

func (m BoardModel) deleteSelected() tea.Cmd {
	task, ok := m.current()
	if !ok {
		return nil
	}
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		if _, err := store.Remove(ctx, task.ID); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("🗑️  Deleted %s", task.Title)}
	}
}

func (m BoardModel) current() (models.MaintenanceTask, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return models.MaintenanceTask{}, false
	}
	return m.items[m.selected], true
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case waveTickMsg:
		if t, ok := m.current(); ok {
			m.wave.Tick(len([]rune(t.Title)))
		}
		return m, m.wave.Cmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tasksLoadedMsg:
		m.loaded = true
		m.sections = tasks.GroupByUrgency(msg.tasks, m.now())
		m.items = m.items[:0]
		for _, s := range m.sections {
			m.items = append(m.items, s.Tasks...)
		}
		if m.selected >= len(m.items) {
			m.selected = len(m.items) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		return m, nil

	case actionDoneMsg:
		m.status, m.err = msg.status, msg.err
		return m, m.loadTasks()

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y", "Y":
				m.confirmDelete = false
				return m, m.deleteSelected()
			case "ctrl+c":
				return m, tea.Quit
			default:
				m.confirmDelete = false
				return m, nil
			}
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
				m.wave.Reset()
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.items)-1 {
				m.selected++
				m.wave.Reset()
			}
		case key.Matches(msg, m.keys.Complete):
			return m, m.completeSelected()
		case key.Matches(msg, m.keys.Delete):
			if _, ok := m.current(); ok {
				m.confirmDelete = true
			}
		case key.Matches(msg, m.keys.Refresh):
			m.status, m.err = "", nil
			return m, m.loadTasks()
		}
	}
	return m, nil
}

// View renders the TUI
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 || !m.loaded {
		return "Loading..."
	}

	leftWidth := m.width * 55 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderSections(leftWidth),
		" ",
		m.renderDetails(rightWidth),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		"",
		content,
		m.renderStatus(),
		m.help.View(m.keys),
	)
}

func (m BoardModel) renderSections(width int) string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	b.WriteString(headerStyle.Render("🐠 Maintenance"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true)
		b.WriteString(emptyStyle.Render("Nothing to do. The reef is happy."))
	}

	titleWidth := width - 18
	if titleWidth < 12 {
		titleWidth = 12
	}

	now := m.now()
	index := 0
	for _, section := range m.sections {
		sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(urgencyColor(section.Urgency)))
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", section.Title(), len(section.Tasks))))
		b.WriteString("\n")

		for _, task := range section.Tasks {
			title := truncate(task.Title, titleWidth)
			due := dueBadge(task.NextDueDate, now)
			if index == m.selected {
				row := fmt.Sprintf("▶ %s %s", padRight(m.wave.Render(title), len([]rune(title)), titleWidth), due)
				b.WriteString(lipgloss.NewStyle().Bold(true).Render(row))
			} else {
				b.WriteString(fmt.Sprintf("  %s %s", padRight(title, len([]rune(title)), titleWidth), due))
			}
			b.WriteString("\n")
			index++
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m BoardModel) renderDetails(width int) string {
	var b strings.Builder

	task, ok := m.current()
	if !ok {
		logoStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width - 4)
		b.WriteString(logoStyle.Render("reef"))
	} else {
		now := m.now()
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
		value := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))

		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).Width(width - 4).Render(task.Title))
		b.WriteString("\n\n")

		b.WriteString(label.Render("Due: ") + value.Render(parser.FormatDueDate(task.NextDueDate, now)) + "\n")
		b.WriteString(label.Render("Repeats: ") + value.Render(schedule.DescribeRule(task.RecurrenceInterval, task.RecurrenceUnit)) + "\n")
		if task.NotificationsEnabled {
			b.WriteString(label.Render("Reminder: ") + value.Render(fmt.Sprintf("%dh before", task.ReminderOffsetHours)) + "\n")
		} else {
			b.WriteString(label.Render("Reminder: ") + value.Render("off") + "\n")
		}
		if last := task.LastCompletion(); last != nil {
			b.WriteString(label.Render("Last done: ") + value.Render(last.CompletedAt.In(now.Location()).Format("02/01/2006 15:04")) + "\n")
		}
		b.WriteString(label.Render("Completed: ") + value.Render(fmt.Sprintf("%d times", len(task.CompletionHistory))) + "\n")

		if task.Description != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Width(width - 4).Render(task.Description))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width - 2).
		Render(b.String())
}

func (m BoardModel) renderStatus() string {
	switch {
	case m.confirmDelete:
		task, _ := m.current()
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).Bold(true).
			Render(fmt.Sprintf("Delete %q? y/N", task.Title))
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("❌ " + m.err.Error())
	case m.status != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.status)
	}
	return ""
}

// dueBadge is the short due column: OVERDUE, TODAY, TOMORROW, Nd or dd/mm
func dueBadge(due, now time.Time) string {
	days := schedule.DaysUntil(due, now)
	text := due.In(now.Location()).Format("02/01")
	color := ColorSecondaryText
	switch {
	case days < 0:
		text, color = "OVERDUE", ColorError
	case days == 0:
		text, color = "TODAY", ColorWarning
	case days == 1:
		text, color = "TOMORROW", ColorAccentBright
	case days <= 7:
		text, color = fmt.Sprintf("%dd", days), ColorAccentBright
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// padRight pads a possibly styled string whose visible length is visible
func padRight(s string, visible, width int) string {
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
