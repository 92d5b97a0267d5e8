package db

import (
	"context"

	"github.com/balkashynov/reefkeeper/internal/models"
)

// CreatureRepo persists the creature collection
type CreatureRepo struct {
	c collection[models.Creature]
}

// NewCreatureRepo creates a creature repository over kv
func NewCreatureRepo(kv KV) *CreatureRepo {
	return &CreatureRepo{c: newCollection(kv, CreaturesKey, CreaturesInitializedKey,
		func(c *models.Creature) *string { return &c.ID })}
}

// GetCreatures returns every stored creature, archived ones included
func (r *CreatureRepo) GetCreatures(ctx context.Context) ([]models.Creature, error) {
	return r.c.all(ctx)
}

// SaveCreatures replaces the stored collection
func (r *CreatureRepo) SaveCreatures(ctx context.Context, creatures []models.Creature) error {
	return r.c.save(ctx, creatures)
}

// GetCreature retrieves a creature by ID; nil when absent
func (r *CreatureRepo) GetCreature(ctx context.Context, id string) (*models.Creature, error) {
	return r.c.get(ctx, id)
}

// AddCreature stores a new creature with a fresh ID
func (r *CreatureRepo) AddCreature(ctx context.Context, c models.Creature) (models.Creature, error) {
	if c.HealthLog == nil {
		c.HealthLog = []models.HealthLogEntry{}
	}
	return r.c.insert(ctx, c)
}

// MutateCreature applies fn to the stored creature and saves the collection.
// Returns nil, nil when the creature does not exist.
func (r *CreatureRepo) MutateCreature(ctx context.Context, id string, fn func(*models.Creature) error) (*models.Creature, error) {
	return r.c.mutate(ctx, id, fn)
}

// DeleteCreature removes a creature; reports whether it existed
func (r *CreatureRepo) DeleteCreature(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, id)
}

// IsInitialized reports whether default creatures were already seeded
func (r *CreatureRepo) IsInitialized(ctx context.Context) (bool, error) {
	return r.c.isInitialized(ctx)
}

// MarkInitialized records that default creatures were seeded
func (r *CreatureRepo) MarkInitialized(ctx context.Context) error {
	return r.c.markInitialized(ctx)
}
