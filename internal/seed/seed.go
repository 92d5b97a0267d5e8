// Package seed holds the built-in task and creature templates written to a
// fresh store on first run.
package seed

import (
	_ "embed"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/balkashynov/reefkeeper/internal/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// TaskTemplate describes a predefined maintenance task.
// Interval defaults to 1 when omitted; the unit is required.
type TaskTemplate struct {
	Title               string                `yaml:"title"`
	Description         string                `yaml:"description"`
	Interval            int                   `yaml:"interval"`
	Unit                models.RecurrenceUnit `yaml:"unit"`
	ReminderOffsetHours int                   `yaml:"reminder_offset_hours"`
}

// CreatureTemplate describes a predefined creature
type CreatureTemplate struct {
	Name     string              `yaml:"name"`
	Species  string              `yaml:"species"`
	Type     models.CreatureType `yaml:"type"`
	Quantity int                 `yaml:"quantity"`
	Notes    string              `yaml:"notes"`
}

// Defaults is the full template set
type Defaults struct {
	Tasks     []TaskTemplate     `yaml:"tasks"`
	Creatures []CreatureTemplate `yaml:"creatures"`
}

// Load parses the embedded templates
func Load() (*Defaults, error) {
	return Parse(defaultsYAML)
}

// Parse decodes and validates a template document
func Parse(data []byte) (*Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing seed templates: %w", err)
	}

	for i := range d.Tasks {
		t := &d.Tasks[i]
		if t.Title == "" {
			return nil, fmt.Errorf("task template %d: title is required", i)
		}
		if !t.Unit.Valid() {
			return nil, fmt.Errorf("task template %q: unknown unit %q", t.Title, t.Unit)
		}
		if t.Interval <= 0 {
			t.Interval = 1
		}
	}
	for i, c := range d.Creatures {
		if c.Name == "" {
			return nil, fmt.Errorf("creature template %d: name is required", i)
		}
		if !c.Type.Valid() {
			return nil, fmt.Errorf("creature template %q: unknown type %q", c.Name, c.Type)
		}
	}
	return &d, nil
}

// Patch converts the template into a task patch; the due date is left to the caller
func (t TaskTemplate) Patch() models.TaskPatch {
	p := models.TaskPatch{
		Title:              models.Ptr(t.Title),
		Description:        models.Ptr(t.Description),
		RecurrenceInterval: models.Ptr(t.Interval),
		RecurrenceUnit:     models.Ptr(t.Unit),
		IsPredefined:       models.Ptr(true),
	}
	if t.ReminderOffsetHours > 0 {
		p.ReminderOffsetHours = models.Ptr(t.ReminderOffsetHours)
	}
	return p
}

// Patch converts the template into a creature patch
func (c CreatureTemplate) Patch() models.CreaturePatch {
	p := models.CreaturePatch{
		Name:    models.Ptr(c.Name),
		Species: models.Ptr(c.Species),
		Type:    models.Ptr(c.Type),
		Notes:   models.Ptr(c.Notes),
	}
	if c.Quantity > 0 {
		p.Quantity = models.Ptr(c.Quantity)
	}
	return p
}
