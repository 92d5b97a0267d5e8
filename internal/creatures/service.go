// Package creatures manages the tank inhabitants and their health logs.
package creatures

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/db"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/schedule"
	"github.com/balkashynov/reefkeeper/internal/seed"
)

// Service handles creature mutations over the stored collection
type Service struct {
	repo   *db.CreatureRepo
	clock  schedule.Clock
	logger *zap.Logger

	mu        sync.RWMutex
	creatures []models.Creature
}

// NewService creates a creature service
func NewService(repo *db.CreatureRepo, clock schedule.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, clock: clock, logger: logger, creatures: []models.Creature{}}
}

// Refresh reloads the collection; a read failure is logged and yields an empty list
func (s *Service) Refresh(ctx context.Context) []models.Creature {
	loaded, err := s.repo.GetCreatures(ctx)
	if err != nil {
		s.logger.Error("Failed to load creatures", zap.Error(err))
		loaded = []models.Creature{}
	}
	s.mu.Lock()
	s.creatures = loaded
	s.mu.Unlock()
	return s.all()
}

func (s *Service) all() []models.Creature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Creature, len(s.creatures))
	copy(out, s.creatures)
	return out
}

// List returns the freshly loaded creatures; archived ones only when asked
func (s *Service) List(ctx context.Context, includeArchived bool) []models.Creature {
	all := s.Refresh(ctx)
	if includeArchived {
		return all
	}
	active := make([]models.Creature, 0, len(all))
	for _, c := range all {
		if !c.Archived {
			active = append(active, c)
		}
	}
	return active
}

// Get returns a creature by ID; nil when absent
func (s *Service) Get(ctx context.Context, id string) (*models.Creature, error) {
	return s.repo.GetCreature(ctx, id)
}

// Add stores a new creature. Name, species and a known type are required.
func (s *Service) Add(ctx context.Context, p models.CreaturePatch) (*models.Creature, error) {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return nil, clierr.New(clierr.InvalidInput, "name is required")
	}
	if p.Species == nil || strings.TrimSpace(*p.Species) == "" {
		return nil, clierr.New(clierr.InvalidInput, "species is required")
	}
	if p.Type == nil {
		return nil, clierr.New(clierr.InvalidInput, "type is required")
	}
	if err := validatePatch(p); err != nil {
		return nil, err
	}

	saved, err := s.repo.AddCreature(ctx, models.NewCreature(p, s.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("adding creature: %w", err)
	}
	s.logger.Info("Creature added", zap.String("creature_id", saved.ID), zap.String("name", saved.Name))
	s.Refresh(ctx)
	return &saved, nil
}

// Update merges the patch into the stored creature; nil, nil when absent
func (s *Service) Update(ctx context.Context, id string, p models.CreaturePatch) (*models.Creature, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, clierr.New(clierr.InvalidInput, "name cannot be empty")
	}
	if err := validatePatch(p); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "Creature updated", func(c *models.Creature) {
		p.Apply(c)
	})
}

// Archive hides a creature from the default list without deleting its history
func (s *Service) Archive(ctx context.Context, id string) (*models.Creature, error) {
	return s.mutate(ctx, id, "Creature archived", func(c *models.Creature) {
		c.Archived = true
	})
}

// LogHealth appends a dated observation to the creature's health log
func (s *Service) LogHealth(ctx context.Context, id, note string) (*models.Creature, error) {
	if strings.TrimSpace(note) == "" {
		return nil, clierr.New(clierr.InvalidInput, "note is required")
	}
	now := s.clock.Now()
	return s.mutate(ctx, id, "Health log entry added", func(c *models.Creature) {
		c.HealthLog = append(c.HealthLog, models.HealthLogEntry{
			ID:         uuid.NewString(),
			CreatureID: c.ID,
			Date:       now,
			Note:       note,
		})
	})
}

// Remove deletes a creature; reports whether it existed
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	removed, err := s.repo.DeleteCreature(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting creature %s: %w", id, err)
	}
	if removed {
		s.logger.Info("Creature deleted", zap.String("creature_id", id))
	}
	s.Refresh(ctx)
	return removed, nil
}

// SeedDefaults stores the templates once per store and returns how many were created
func (s *Service) SeedDefaults(ctx context.Context, templates []seed.CreatureTemplate) (int, error) {
	done, err := s.repo.IsInitialized(ctx)
	if err != nil || done {
		return 0, err
	}

	now := s.clock.Now()
	for _, tmpl := range templates {
		if _, err := s.repo.AddCreature(ctx, models.NewCreature(tmpl.Patch(), now)); err != nil {
			return 0, fmt.Errorf("seeding %q: %w", tmpl.Name, err)
		}
	}
	if err := s.repo.MarkInitialized(ctx); err != nil {
		return len(templates), err
	}
	s.Refresh(ctx)
	return len(templates), nil
}

func (s *Service) mutate(ctx context.Context, id, msg string, fn func(*models.Creature)) (*models.Creature, error) {
	now := s.clock.Now()
	updated, err := s.repo.MutateCreature(ctx, id, func(c *models.Creature) error {
		fn(c)
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating creature %s: %w", id, err)
	}
	if updated == nil {
		return nil, nil
	}
	s.logger.Info(msg, zap.String("creature_id", id))
	s.Refresh(ctx)
	return updated, nil
}

func validatePatch(p models.CreaturePatch) error {
	if p.Type != nil && !p.Type.Valid() {
		return clierr.Newf(clierr.InvalidInput, "unknown creature type %q", *p.Type).
			WithDetails(map[string]any{"allowed": []string{"fish", "coral", "invertebrate", "other"}})
	}
	if p.Quantity != nil && *p.Quantity < 1 {
		return clierr.Newf(clierr.InvalidInput, "quantity must be at least 1, got %d", *p.Quantity)
	}
	return nil
}

// CountByType counts active creatures per type, weighting by quantity
func CountByType(creatures []models.Creature) map[models.CreatureType]int {
	counts := make(map[models.CreatureType]int, len(models.CreatureTypes))
	for _, c := range creatures {
		if c.Archived {
			continue
		}
		counts[c.Type] += c.Quantity
	}
	return counts
}
