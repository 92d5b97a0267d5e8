// Package backup exports and wipes everything reef stores locally.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/balkashynov/reefkeeper/internal/db"
)

// Snapshot is the exported form of every app key.
// JSON values are embedded as-is; anything else is kept as a string.
type Snapshot struct {
	ExportedAt time.Time                  `json:"exportedAt"`
	Data       map[string]json.RawMessage `json:"data"`
}

// Reminders is the part of the reminder scheduler Clear needs
type Reminders interface {
	CancelAll(ctx context.Context) error
}

// Export collects every key under db.KeyPrefix
func Export(ctx context.Context, kv db.KV, now time.Time) (*Snapshot, error) {
	keys, err := kv.Keys(ctx, db.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}

	snap := &Snapshot{ExportedAt: now, Data: make(map[string]json.RawMessage, len(keys))}
	for _, key := range keys {
		value, ok, err := kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		if !ok {
			continue
		}
		snap.Data[key] = encodeValue(value)
	}
	return snap, nil
}

func encodeValue(value string) json.RawMessage {
	if json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	quoted, _ := json.Marshal(value)
	return quoted
}

// Write renders the snapshot as indented JSON
func (s *Snapshot) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Clear removes every app key and cancels all pending reminders.
// Returns the number of keys removed.
func Clear(ctx context.Context, kv db.KV, reminders Reminders) (int, error) {
	keys, err := kv.Keys(ctx, db.KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing keys: %w", err)
	}
	for i, key := range keys {
		if err := kv.Remove(ctx, key); err != nil {
			return i, fmt.Errorf("removing %s: %w", key, err)
		}
	}
	if reminders != nil {
		if err := reminders.CancelAll(ctx); err != nil {
			return len(keys), fmt.Errorf("cancelling reminders: %w", err)
		}
	}
	return len(keys), nil
}
