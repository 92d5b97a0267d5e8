package notify

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemoryNotifier keeps pending notifications in memory.
// Err, when set, is returned by every call; tests use it to simulate a broken platform.
type MemoryNotifier struct {
	mu      sync.Mutex
	seq     int
	pending map[string]Pending

	Err error
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{pending: map[string]Pending{}}
}

func (m *MemoryNotifier) Available() bool { return true }

func (m *MemoryNotifier) Schedule(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.seq++
	id := "n" + strconv.Itoa(m.seq)
	payload := make(map[string]string, len(req.Payload))
	for k, v := range req.Payload {
		payload[k] = v
	}
	m.pending[id] = Pending{
		Identifier: id,
		Title:      req.Title,
		Body:       req.Body,
		Payload:    payload,
		TriggerAt:  req.TriggerAt,
	}
	return id, nil
}

func (m *MemoryNotifier) ListPending(context.Context) ([]Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]Pending, 0, len(m.pending))
	for _, p := range m.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].TriggerAt.Before(out[j].TriggerAt)
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out, nil
}

func (m *MemoryNotifier) Cancel(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.pending, identifier)
	return nil
}

func (m *MemoryNotifier) CancelAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.pending = map[string]Pending{}
	return nil
}

// Due returns notifications whose trigger time is at or before now
func (m *MemoryNotifier) Due(ctx context.Context, now time.Time, limit int) ([]Pending, error) {
	all, err := m.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	var due []Pending
	for _, p := range all {
		if p.TriggerAt.After(now) {
			break
		}
		due = append(due, p)
		if limit > 0 && len(due) == limit {
			break
		}
	}
	return due, nil
}

// Ack removes a delivered notification
func (m *MemoryNotifier) Ack(ctx context.Context, identifier string) error {
	return m.Cancel(ctx, identifier)
}

// Len returns the number of pending notifications
func (m *MemoryNotifier) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
