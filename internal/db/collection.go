package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Storage keys. Every key the app writes starts with KeyPrefix.
const (
	KeyPrefix               = "@reef_keeper"
	TasksKey                = KeyPrefix + "_tasks"
	TasksInitializedKey     = KeyPrefix + "_tasks_initialized"
	CreaturesKey            = KeyPrefix + "_creatures"
	CreaturesInitializedKey = KeyPrefix + "_creatures_initialized"
)

// collection persists a slice of records as one JSON blob under a fixed key.
// Every write replaces the whole blob; the last writer wins.
type collection[T any] struct {
	kv      KV
	key     string
	initKey string
	idOf    func(*T) *string
	newID   func() string
}

func newCollection[T any](kv KV, key, initKey string, idOf func(*T) *string) collection[T] {
	return collection[T]{kv: kv, key: key, initKey: initKey, idOf: idOf, newID: uuid.NewString}
}

// all decodes the stored collection. A missing or empty key is an empty collection.
func (c collection[T]) all(ctx context.Context) ([]T, error) {
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.key, err)
	}
	if err := c.kv.Set(ctx, c.key, string(raw)); err != nil {
		return fmt.Errorf("writing %s: %w", c.key, err)
	}
	return nil
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	items, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if *c.idOf(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// insert assigns a fresh id, appends the item and writes the collection back
func (c collection[T]) insert(ctx context.Context, item T) (T, error) {
	items, err := c.all(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	*c.idOf(&item) = c.newID()
	items = append(items, item)
	if err := c.save(ctx, items); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// mutate applies fn to the item with the given id and writes the collection back.
// Returns nil without error when no item has that id.
func (c collection[T]) mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	items, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if *c.idOf(&items[i]) != id {
			continue
		}
		if err := fn(&items[i]); err != nil {
			return nil, err
		}
		// Ids are immutable whatever fn did.
		*c.idOf(&items[i]) = id
		if err := c.save(ctx, items); err != nil {
			return nil, err
		}
		updated := items[i]
		return &updated, nil
	}
	return nil, nil
}

// remove drops the item with the given id. Reports whether anything was removed.
func (c collection[T]) remove(ctx context.Context, id string) (bool, error) {
	items, err := c.all(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]T, 0, len(items))
	for i := range items {
		if *c.idOf(&items[i]) != id {
			kept = append(kept, items[i])
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	return true, c.save(ctx, kept)
}

func (c collection[T]) isInitialized(ctx context.Context) (bool, error) {
	v, _, err := c.kv.Get(ctx, c.initKey)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", c.initKey, err)
	}
	return v == "true", nil
}

func (c collection[T]) markInitialized(ctx context.Context) error {
	if err := c.kv.Set(ctx, c.initKey, "true"); err != nil {
		return fmt.Errorf("writing %s: %w", c.initKey, err)
	}
	return nil
}
