package models

import (
	"time"
)

// CreatureType classifies a tank inhabitant
type CreatureType string

const (
	CreatureFish         CreatureType = "fish"
	CreatureCoral        CreatureType = "coral"
	CreatureInvertebrate CreatureType = "invertebrate"
	CreatureOther        CreatureType = "other"
)

// CreatureTypes lists the types in display order
var CreatureTypes = []CreatureType{CreatureFish, CreatureCoral, CreatureInvertebrate, CreatureOther}

// Valid reports whether ct is a known creature type
func (ct CreatureType) Valid() bool {
	switch ct {
	case CreatureFish, CreatureCoral, CreatureInvertebrate, CreatureOther:
		return true
	}
	return false
}

// Label returns the display label for the type
func (ct CreatureType) Label() string {
	switch ct {
	case CreatureFish:
		return "🐠 Fish"
	case CreatureCoral:
		return "🪸 Coral"
	case CreatureInvertebrate:
		return "🦀 Invertebrate"
	case CreatureOther:
		return "🌊 Other"
	default:
		return string(ct)
	}
}

// HealthLogEntry is a dated observation about a creature
type HealthLogEntry struct {
	ID         string    `json:"id"`
	CreatureID string    `json:"creatureId"`
	Date       time.Time `json:"date"`
	Note       string    `json:"note"`
}

// Creature represents a fish, coral or invertebrate living in the tank
type Creature struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Species      string           `json:"species"`
	Type         CreatureType     `json:"type"`
	PhotoURI     *string          `json:"photoUri,omitempty"`
	DateAcquired time.Time        `json:"dateAcquired"`
	Quantity     int              `json:"quantity"`
	Notes        string           `json:"notes"`
	HealthLog    []HealthLogEntry `json:"healthLog"`
	Archived     bool             `json:"archived"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// NewCreature builds a complete creature from defaults with the patch laid over them.
// The ID is left empty; the repository assigns it on insert.
func NewCreature(p CreaturePatch, now time.Time) Creature {
	c := Creature{
		ID:           "",
		DateAcquired: now,
		Quantity:     1,
		Notes:        "",
		HealthLog:    []HealthLogEntry{},
		Archived:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.Apply(&c)
	return c
}
