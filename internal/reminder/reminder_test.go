package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/notify"
	"github.com/balkashynov/reefkeeper/internal/schedule"
)

var now = time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)

func task(id string, due time.Time, offset int) models.MaintenanceTask {
	t := models.NewTask(models.TaskPatch{
		Title:               models.Ptr("Water change"),
		NextDueDate:         &due,
		ReminderOffsetHours: &offset,
	}, now)
	t.ID = id
	return t
}

func TestScheduleTomorrowPhrasing(t *testing.T) {
	ctx := context.Background()
	n := notify.NewMemoryNotifier()
	s := NewScheduler(n, schedule.NewFakeClock(now), nil)

	id, err := s.Schedule(ctx, task("t1", time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC), 24))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pending, err := n.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	p := pending[0]
	assert.Equal(t, id, p.Identifier)
	assert.Equal(t, Title, p.Title)
	assert.Equal(t, `"Water change" is due tomorrow!`, p.Body)
	assert.Equal(t, "t1", p.Payload[notify.PayloadTaskID])
	assert.Equal(t, time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC), p.TriggerAt)
}

func TestScheduleSoonPhrasing(t *testing.T) {
	ctx := context.Background()
	n := notify.NewMemoryNotifier()
	s := NewScheduler(n, schedule.NewFakeClock(now), nil)

	_, err := s.Schedule(ctx, task("t1", time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC), 12))
	require.NoError(t, err)

	pending, _ := n.ListPending(ctx)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Body, "soon")
	assert.NotContains(t, pending[0].Body, "tomorrow")
	assert.Equal(t, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), pending[0].TriggerAt)
}

func TestScheduleSkips(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	disabled := task("t1", due, 24)
	disabled.NotificationsEnabled = false

	tests := []struct {
		name     string
		notifier notify.Notifier
		task     models.MaintenanceTask
	}{
		{"notifications disabled", notify.NewMemoryNotifier(), disabled},
		{"trigger in the past", notify.NewMemoryNotifier(), task("t1", now.Add(time.Hour), 24)},
		{"trigger exactly now", notify.NewMemoryNotifier(), task("t1", now.Add(24*time.Hour), 24)},
		{"notifier unavailable", notify.Unavailable{}, task("t1", due, 24)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.notifier, schedule.NewFakeClock(now), nil)
			id, err := s.Schedule(ctx, tt.task)
			assert.NoError(t, err)
			assert.Empty(t, id)

			pending, err := tt.notifier.ListPending(ctx)
			require.NoError(t, err)
			assert.Empty(t, pending)
		})
	}
}

func TestScheduleSurfacesNotifierError(t *testing.T) {
	n := notify.NewMemoryNotifier()
	n.Err = errors.New("platform exploded")
	s := NewScheduler(n, schedule.NewFakeClock(now), nil)

	id, err := s.Schedule(context.Background(), task("t1", time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC), 24))
	assert.Error(t, err)
	assert.Empty(t, id)
}

func TestCancelForTaskOnlyTouchesThatTask(t *testing.T) {
	ctx := context.Background()
	n := notify.NewMemoryNotifier()
	s := NewScheduler(n, schedule.NewFakeClock(now), nil)
	due := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"t1", "t1", "t2"} {
		_, err := s.Schedule(ctx, task(id, due, 24))
		require.NoError(t, err)
	}
	// A notification with no task tag at all.
	_, err := n.Schedule(ctx, notify.Request{Title: "other", TriggerAt: due})
	require.NoError(t, err)

	cancelled, err := s.CancelForTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)

	left, err := s.PendingForTask(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, left)

	others, err := s.PendingForTask(ctx, "t2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
	assert.Equal(t, 2, n.Len())
}

func TestCancelForTaskNoops(t *testing.T) {
	ctx := context.Background()

	s := NewScheduler(notify.NewMemoryNotifier(), schedule.NewFakeClock(now), nil)
	cancelled, err := s.CancelForTask(ctx, "nothing-here")
	assert.NoError(t, err)
	assert.Zero(t, cancelled)

	s = NewScheduler(notify.Unavailable{}, schedule.NewFakeClock(now), nil)
	cancelled, err = s.CancelForTask(ctx, "t1")
	assert.NoError(t, err)
	assert.Zero(t, cancelled)
}

// offlineNotifier holds queued entries but reports no notification support
type offlineNotifier struct {
	*notify.MemoryNotifier
}

func (offlineNotifier) Available() bool { return false }

func TestPendingForTaskRespectsAvailability(t *testing.T) {
	ctx := context.Background()
	n := notify.NewMemoryNotifier()
	_, err := NewScheduler(n, schedule.NewFakeClock(now), nil).
		Schedule(ctx, task("t1", time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC), 24))
	require.NoError(t, err)
	require.Equal(t, 1, n.Len())

	s := NewScheduler(offlineNotifier{n}, schedule.NewFakeClock(now), nil)
	pending, err := s.PendingForTask(ctx, "t1")
	assert.NoError(t, err)
	assert.Empty(t, pending)

	cancelled, err := s.CancelForTask(ctx, "t1")
	assert.NoError(t, err)
	assert.Zero(t, cancelled)
	assert.Equal(t, 1, n.Len())
}

func TestCancelAll(t *testing.T) {
	ctx := context.Background()
	n := notify.NewMemoryNotifier()
	s := NewScheduler(n, schedule.NewFakeClock(now), nil)
	_, err := s.Schedule(ctx, task("t1", time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC), 24))
	require.NoError(t, err)

	require.NoError(t, s.CancelAll(ctx))
	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNewSchedulerDefaults(t *testing.T) {
	s := NewScheduler(nil, nil, nil)
	id, err := s.Schedule(context.Background(), task("t1", time.Now().Add(72*time.Hour), 24))
	assert.NoError(t, err)
	assert.Empty(t, id)
}
