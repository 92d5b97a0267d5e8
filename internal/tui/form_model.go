package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/parser"
)

// Step represents the current step in the wizard
type Step int

const (
	StepTitle Step = iota
	StepDescription
	StepDue
	StepRepeat
	StepRemind
	StepSave
)

var stepLabels = []string{"Title", "Description", "Due", "Repeat", "Remind", "Save"}

// TaskFormModel is the add/edit wizard for a maintenance task
type TaskFormModel struct {
	ctx   context.Context
	store TaskStore
	now   func() time.Time

	currentStep Step
	inputs      []textinput.Model
	initial     []string // input values at open, for change detection
	width       int
	height      int

	editing *models.MaintenanceTask

	// State
	validationErr string
	err           error
	completed     bool
	cancelled     bool
	saved         *models.MaintenanceTask

	wave *Wave

	showSaveModal   bool
	saveModalChoice bool // true for Yes
}

// NewTaskFormModel opens the wizard; existing switches it to edit mode
func NewTaskFormModel(ctx context.Context, store TaskStore, now func() time.Time, existing *models.MaintenanceTask) TaskFormModel {
	inputs := make([]textinput.Model, int(StepSave))
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 60
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[StepTitle].Placeholder = "What needs doing? (required)"
	inputs[StepTitle].CharLimit = 200
	inputs[StepTitle].Focus()

	inputs[StepDescription].Placeholder = "Details (Enter to skip)"
	inputs[StepDescription].CharLimit = 500

	inputs[StepDue].Placeholder = "dd/mm/yyyy, yyyy-mm-dd, tomorrow, 3 days (Enter for now)"
	inputs[StepDue].CharLimit = 50

	inputs[StepRepeat].Placeholder = "7d, 2w, 1m, every 2 weeks, none (Enter for weekly)"
	inputs[StepRepeat].CharLimit = 30

	inputs[StepRemind].Placeholder = "Hours before due, e.g. 24, or off (Enter for 24)"
	inputs[StepRemind].CharLimit = 10

	m := TaskFormModel{
		ctx:         ctx,
		store:       store,
		now:         now,
		currentStep: StepTitle,
		inputs:      inputs,
		editing:     existing,
		wave:        NewWave(DefaultWaveConfig()),
	}

	if existing != nil {
		m.inputs[StepTitle].SetValue(existing.Title)
		m.inputs[StepDescription].SetValue(existing.Description)
		m.inputs[StepDue].SetValue(existing.NextDueDate.In(now().Location()).Format("2006-01-02"))
		m.inputs[StepRepeat].SetValue(ruleInput(existing.RecurrenceInterval, existing.RecurrenceUnit))
		if existing.NotificationsEnabled {
			m.inputs[StepRemind].SetValue(strconv.Itoa(existing.ReminderOffsetHours))
		} else {
			m.inputs[StepRemind].SetValue("off")
		}
	}

	m.initial = make([]string, len(m.inputs))
	for i := range m.inputs {
		m.initial[i] = m.inputs[i].Value()
	}
	return m
}

// ruleInput renders a rule in the short form the repeat step accepts
func ruleInput(interval int, unit models.RecurrenceUnit) string {
	if interval <= 0 || !unit.Valid() {
		return "none"
	}
	return fmt.Sprintf("%d%c", interval, unit[0])
}

func (m TaskFormModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.wave.Cmd())
}

// Saved returns the created or updated task after a successful save
func (m TaskFormModel) Saved() *models.MaintenanceTask { return m.saved }

// Cancelled reports whether the user left without saving
func (m TaskFormModel) Cancelled() bool { return m.cancelled }

// Err returns the save error, if any
func (m TaskFormModel) Err() error { return m.err }

func (m TaskFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case waveTickMsg:
		m.wave.Tick(len([]rune(stepLabels[m.currentStep])))
		return m, m.wave.Cmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputWidth := m.width*2/3 - 10
		if inputWidth < 30 {
			inputWidth = 30
		}
		if inputWidth > 80 {
			inputWidth = 80
		}
		for i := range m.inputs {
			m.inputs[i].Width = inputWidth
		}
		return m, nil

	case tea.KeyMsg:
		if m.showSaveModal {
			switch msg.String() {
			case "left", "right", "h", "l":
				m.saveModalChoice = !m.saveModalChoice
			case "y", "Y":
				m.saveModalChoice = true
				return m.handleSaveChoice()
			case "n", "N":
				m.saveModalChoice = false
				return m.handleSaveChoice()
			case "enter":
				return m.handleSaveChoice()
			case "esc":
				m.showSaveModal = false
			case "ctrl+c":
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit

		case "esc":
			if m.currentStep == StepSave {
				return m.prevStep()
			}
			if !m.hasChanges() {
				m.cancelled = true
				return m, tea.Quit
			}
			m.showSaveModal = true
			m.saveModalChoice = true
			return m, nil

		case "enter":
			return m.handleEnter()

		case "tab", "down":
			if err := m.validateStep(m.currentStep); err != "" {
				m.validationErr = err
				return m, nil
			}
			m.validationErr = ""
			return m.nextStep()

		case "shift+tab", "up":
			m.validationErr = ""
			return m.prevStep()
		}
	}

	var cmd tea.Cmd
	if m.currentStep < StepSave {
		m.inputs[m.currentStep], cmd = m.inputs[m.currentStep].Update(msg)
	}
	return m, cmd
}

func (m TaskFormModel) value(step Step) string {
	return strings.TrimSpace(m.inputs[step].Value())
}

func (m TaskFormModel) hasChanges() bool {
	for i := range m.inputs {
		if m.inputs[i].Value() != m.initial[i] {
			return true
		}
	}
	return false
}

// validateStep returns a user-facing message, or "" when the step is valid
func (m TaskFormModel) validateStep(step Step) string {
	switch step {
	case StepTitle:
		if m.value(StepTitle) == "" {
			return "Task title is required"
		}
	case StepDue:
		if _, err := parser.ParseDueDate(m.value(StepDue), m.now()); err != nil {
			return err.Error()
		}
	case StepRepeat:
		if _, err := parser.ParseRecurrence(m.value(StepRepeat)); err != nil {
			return err.Error()
		}
	case StepRemind:
		if _, _, err := parseRemind(m.value(StepRemind)); err != nil {
			return err.Error()
		}
	}
	return ""
}

// parseRemind reads the remind step: hours before due, or off
func parseRemind(input string) (hours int, enabled bool, err error) {
	input = strings.ToLower(input)
	switch input {
	case "":
		return models.DefaultReminderOffsetHours, true, nil
	case "off", "no", "none":
		return 0, false, nil
	}
	hours, err = strconv.Atoi(strings.TrimSuffix(input, "h"))
	if err != nil || hours < 0 {
		return 0, false, fmt.Errorf("invalid reminder %q. Use hours before due, e.g. 24, or off", input)
	}
	return hours, true, nil
}

func (m TaskFormModel) handleEnter() (TaskFormModel, tea.Cmd) {
	if m.currentStep == StepSave {
		return m.save()
	}
	if err := m.validateStep(m.currentStep); err != "" {
		m.validationErr = err
		return m, nil
	}
	m.validationErr = ""
	return m.nextStep()
}

func (m TaskFormModel) nextStep() (TaskFormModel, tea.Cmd) {
	if m.currentStep < StepSave {
		m.inputs[m.currentStep].Blur()
		m.currentStep++
		if m.currentStep < StepSave {
			m.inputs[m.currentStep].Focus()
		}
		m.wave.Reset()
	}
	return m, textinput.Blink
}

func (m TaskFormModel) prevStep() (TaskFormModel, tea.Cmd) {
	if m.currentStep > StepTitle {
		if m.currentStep < StepSave {
			m.inputs[m.currentStep].Blur()
		}
		m.currentStep--
		m.inputs[m.currentStep].Focus()
		m.wave.Reset()
	}
	return m, textinput.Blink
}

// patch builds the task patch from the inputs. In edit mode unchanged
// due and repeat fields are left out so the stored values survive.
func (m TaskFormModel) patch() (models.TaskPatch, error) {
	now := m.now()
	p := models.TaskPatch{
		Title:       models.Ptr(m.value(StepTitle)),
		Description: models.Ptr(m.value(StepDescription)),
	}
	if p.Title == nil || *p.Title == "" {
		return p, fmt.Errorf("task title is required")
	}

	changed := func(step Step) bool {
		return m.editing == nil || m.inputs[step].Value() != m.initial[step]
	}

	if changed(StepDue) {
		due, err := parser.ParseDueDate(m.value(StepDue), now)
		if err != nil {
			return p, err
		}
		if due == nil {
			due = &now
		}
		p.NextDueDate = due
	}

	if changed(StepRepeat) {
		input := m.value(StepRepeat)
		if input == "" && m.editing == nil {
			input = ruleInput(models.DefaultRecurrenceInterval, models.DefaultRecurrenceUnit)
		}
		rule, err := parser.ParseRecurrence(input)
		if err != nil {
			return p, err
		}
		rule.Apply(&p)
	}

	hours, enabled, err := parseRemind(m.value(StepRemind))
	if err != nil {
		return p, err
	}
	p.NotificationsEnabled = models.Ptr(enabled)
	if enabled {
		p.ReminderOffsetHours = models.Ptr(hours)
	}
	return p, nil
}

func (m TaskFormModel) save() (TaskFormModel, tea.Cmd) {
	p, err := m.patch()
	if err != nil {
		m.validationErr = err.Error()
		return m, nil
	}

	var task *models.MaintenanceTask
	if m.editing != nil {
		task, err = m.store.Update(m.ctx, m.editing.ID, p)
		if err == nil && task == nil {
			err = fmt.Errorf("task %s no longer exists", m.editing.ID)
		}
	} else {
		task, err = m.store.Add(m.ctx, p)
	}
	if err != nil {
		m.err = err
		return m, tea.Quit
	}

	m.completed = true
	m.saved = task
	return m, tea.Quit
}

func (m TaskFormModel) handleSaveChoice() (TaskFormModel, tea.Cmd) {
	m.showSaveModal = false
	if m.saveModalChoice {
		if err := m.validateStep(StepTitle); err != "" {
			m.validationErr = err
			m.currentStep = StepTitle
			return m, nil
		}
		return m.save()
	}
	m.cancelled = true
	return m, tea.Quit
}

// View renders the TUI
func (m TaskFormModel) View() string {
	if m.cancelled || m.completed {
		return ""
	}

	if m.showSaveModal {
		return m.renderSaveModal()
	}
	if m.width < 85 {
		return m.renderWizard()
	}

	rightWidth := 44
	leftWidth := m.width - rightWidth - 4

	leftStyle := lipgloss.NewStyle().
		Width(leftWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1)

	rightStyle := lipgloss.NewStyle().
		Width(rightWidth).
		Padding(1)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(m.renderWizard()),
		" ",
		rightStyle.Render(m.renderPreview()),
	)
}

func (m TaskFormModel) renderWizard() string {
	var b strings.Builder

	titleText := "🐠 New Task"
	if m.editing != nil {
		titleText = "🐠 Edit " + m.editing.Title
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).Render(titleText))
	b.WriteString("\n\n")

	// progress line
	var steps []string
	for i, label := range stepLabels {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
		switch {
		case Step(i) == m.currentStep:
			steps = append(steps, m.wave.Render(label))
			continue
		case Step(i) < m.currentStep:
			style = style.Foreground(lipgloss.Color(ColorSuccess))
		}
		steps = append(steps, style.Render(label))
	}
	b.WriteString(strings.Join(steps, " › "))
	b.WriteString("\n\n")

	if m.currentStep < StepSave {
		b.WriteString(m.inputs[m.currentStep].View())
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Render("Press Enter to save, ↑ to go back"))
	}
	b.WriteString("\n\n")

	if m.validationErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("❌ " + m.validationErr))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).
		Render("Enter next • ↑/↓ move • Esc quit"))
	return b.String()
}

// renderPreview shows the task as it would be saved
func (m TaskFormModel) renderPreview() string {
	var b strings.Builder
	now := m.now()
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Italic(true)

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentMain)).Render("Preview"))
	b.WriteString("\n\n")

	title := m.value(StepTitle)
	if title == "" {
		b.WriteString(muted.Render("(untitled)"))
	} else {
		b.WriteString(value.Bold(true).Render(title))
	}
	b.WriteString("\n")
	if desc := m.value(StepDescription); desc != "" {
		b.WriteString(muted.Render(desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	due := "now"
	if d, err := parser.ParseDueDate(m.value(StepDue), now); err == nil && d != nil {
		due = parser.FormatDueDate(*d, now)
	} else if err != nil {
		due = "?"
	}
	b.WriteString(label.Render("Due: ") + value.Render(due) + "\n")

	repeat := "?"
	repeatInput := m.value(StepRepeat)
	if repeatInput == "" && m.editing == nil {
		repeatInput = ruleInput(models.DefaultRecurrenceInterval, models.DefaultRecurrenceUnit)
	}
	if rule, err := parser.ParseRecurrence(repeatInput); err == nil {
		repeat = rule.String()
	}
	b.WriteString(label.Render("Repeats: ") + value.Render(repeat) + "\n")

	remind := "?"
	if hours, enabled, err := parseRemind(m.value(StepRemind)); err == nil {
		remind = "off"
		if enabled {
			remind = fmt.Sprintf("%dh before", hours)
		}
	}
	b.WriteString(label.Render("Reminder: ") + value.Render(remind))
	return b.String()
}

func (m TaskFormModel) renderSaveModal() string {
	var content strings.Builder
	content.WriteString("Save changes?\n\n")

	yesStyle := lipgloss.NewStyle().Padding(0, 2)
	noStyle := lipgloss.NewStyle().Padding(0, 2)
	if m.saveModalChoice {
		yesStyle = yesStyle.
			Background(lipgloss.Color(ColorAccentBright)).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)
	} else {
		noStyle = noStyle.
			Background(lipgloss.Color(ColorError)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)
	}

	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, yesStyle.Render("Yes"), "   ", noStyle.Render("No")))
	content.WriteString("\n\n")
	content.WriteString("← → or Y/N to choose, Enter to confirm\nEsc to keep editing")

	modal := lipgloss.NewStyle().
		Width(50).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentBright)).
		Background(lipgloss.Color(ColorCardBackground)).
		Padding(1).
		Align(lipgloss.Center).
		Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
