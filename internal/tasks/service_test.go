package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/db"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/notify"
	"github.com/balkashynov/reefkeeper/internal/reminder"
	"github.com/balkashynov/reefkeeper/internal/schedule"
	"github.com/balkashynov/reefkeeper/internal/seed"
)

var t0 = time.Date(2026, 2, 12, 12, 0, 0, 0, time.UTC)

type fixture struct {
	kv       *db.MemoryKV
	notifier *notify.MemoryNotifier
	clock    *schedule.FakeClock
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		kv:       db.NewMemoryKV(),
		notifier: notify.NewMemoryNotifier(),
		clock:    schedule.NewFakeClock(t0),
	}
	f.svc = f.serviceOn(f.kv)
	return f
}

func (f *fixture) serviceOn(kv db.KV) *Service {
	sched := reminder.NewScheduler(f.notifier, f.clock, zap.NewNop())
	return NewService(db.NewTaskRepo(kv), sched, f.clock, zap.NewNop())
}

func (f *fixture) pending(t *testing.T, taskID string) []notify.Pending {
	t.Helper()
	all, err := f.notifier.ListPending(context.Background())
	require.NoError(t, err)
	var out []notify.Pending
	for _, p := range all {
		if p.Payload[notify.PayloadTaskID] == taskID {
			out = append(out, p)
		}
	}
	return out
}

func due(d time.Duration) *time.Time {
	at := t0.Add(d)
	return &at
}

func TestAddSchedulesReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{
		Title:       models.Ptr("Water change"),
		NextDueDate: due(48 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, 7, task.RecurrenceInterval)
	assert.Equal(t, models.UnitDays, task.RecurrenceUnit)
	assert.Empty(t, task.CompletionHistory)

	p := f.pending(t, task.ID)
	require.Len(t, p, 1)
	assert.Equal(t, reminder.Title, p[0].Title)
	assert.Equal(t, `"Water change" is due tomorrow!`, p[0].Body)
	assert.True(t, p[0].TriggerAt.Equal(t0.Add(24*time.Hour)))

	assert.Len(t, f.svc.Tasks(), 1)
}

func TestAddDueNowSkipsReminder(t *testing.T) {
	f := newFixture(t)

	task, err := f.svc.Add(context.Background(), models.TaskPatch{Title: models.Ptr("Feed fish")})
	require.NoError(t, err)
	assert.True(t, task.NextDueDate.Equal(t0))
	assert.Equal(t, 0, f.notifier.Len())
}

func TestAddValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, models.TaskPatch{})
	assert.True(t, clierr.HasCode(err, clierr.InvalidInput))

	_, err = f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("   ")})
	assert.True(t, clierr.HasCode(err, clierr.InvalidInput))

	_, err = f.svc.Add(ctx, models.TaskPatch{
		Title:          models.Ptr("Dose"),
		RecurrenceUnit: models.Ptr(models.RecurrenceUnit("fortnights")),
	})
	assert.True(t, clierr.HasCode(err, clierr.InvalidRecurrence))

	_, err = f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Dose"), RecurrenceInterval: models.Ptr(-2)})
	assert.True(t, clierr.HasCode(err, clierr.InvalidRecurrence))

	assert.Empty(t, f.svc.Refresh(ctx))
}

func TestCompleteRecurringAnchorsOnCompletionTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{
		Title:       models.Ptr("Water change"),
		NextDueDate: due(72 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, f.pending(t, task.ID), 1)

	done, err := f.svc.Complete(ctx, task.ID, "20% change")
	require.NoError(t, err)
	require.NotNil(t, done)

	assert.Equal(t, time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC), done.NextDueDate)
	assert.False(t, done.IsCompleted)
	assert.True(t, done.NotificationsEnabled)
	require.Len(t, done.CompletionHistory, 1)
	rec := done.CompletionHistory[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, task.ID, rec.TaskID)
	assert.Equal(t, t0, rec.CompletedAt)
	assert.Equal(t, "20% change", rec.Notes)
	assert.Equal(t, t0, done.UpdatedAt)

	p := f.pending(t, task.ID)
	require.Len(t, p, 1, "old reminder must be replaced, not duplicated")
	assert.True(t, p[0].TriggerAt.Equal(time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)))
}

func TestCompleteOverdueTaskStillAnchorsOnNow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{
		Title:              models.Ptr("Clean skimmer"),
		RecurrenceInterval: models.Ptr(2),
		RecurrenceUnit:     models.Ptr(models.UnitWeeks),
		NextDueDate:        due(-10 * 24 * time.Hour),
	})
	require.NoError(t, err)

	done, err := f.svc.Complete(ctx, task.ID, "")
	require.NoError(t, err)
	assert.Equal(t, t0.AddDate(0, 0, 14), done.NextDueDate)
	assert.Equal(t, schedule.Later, schedule.TaskUrgency(*done, t0))
}

func TestCompleteOneOffClosesTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{
		Title:              models.Ptr("Replace heater"),
		RecurrenceInterval: models.Ptr(0),
		NextDueDate:        due(72 * time.Hour),
	})
	require.NoError(t, err)
	require.False(t, task.IsRecurring())
	require.Len(t, f.pending(t, task.ID), 1)

	done, err := f.svc.Complete(ctx, task.ID, "")
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	assert.False(t, done.NotificationsEnabled)
	assert.Equal(t, task.NextDueDate, done.NextDueDate)
	assert.Len(t, done.CompletionHistory, 1)
	assert.Empty(t, f.pending(t, task.ID))
}

func TestCompleteClosedOneOffIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{
		Title:              models.Ptr("Replace heater"),
		RecurrenceInterval: models.Ptr(0),
		NextDueDate:        due(72 * time.Hour),
	})
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, task.ID, "")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Complete(ctx, task.ID, "again")
	assert.True(t, clierr.HasCode(err, clierr.InvalidInput))

	stored, err := f.svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, stored.CompletionHistory, 1)
	assert.Equal(t, t0, stored.UpdatedAt)
}

func TestUpdateReopensClosedOneOffWithRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{
		Title:              models.Ptr("Replace heater"),
		RecurrenceInterval: models.Ptr(0),
		NextDueDate:        due(24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, task.ID, "")
	require.NoError(t, err)

	f.clock.Advance(10 * 24 * time.Hour)
	reopened, err := f.svc.Update(ctx, task.ID, models.TaskPatch{
		RecurrenceInterval: models.Ptr(2),
		RecurrenceUnit:     models.Ptr(models.UnitWeeks),
	})
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.True(t, reopened.NotificationsEnabled)
	assert.Equal(t, t0.AddDate(0, 0, 10+14), reopened.NextDueDate)
	assert.NotEqual(t, schedule.Overdue, schedule.TaskUrgency(*reopened, f.clock.Now()))
	assert.Len(t, f.pending(t, task.ID), 1)
}

func TestUpdateReopenKeepsExplicitDueAndNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{
		Title:              models.Ptr("Replace heater"),
		RecurrenceInterval: models.Ptr(0),
		NextDueDate:        due(24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, task.ID, "")
	require.NoError(t, err)

	reopened, err := f.svc.Update(ctx, task.ID, models.TaskPatch{
		RecurrenceInterval:   models.Ptr(1),
		RecurrenceUnit:       models.Ptr(models.UnitMonths),
		NextDueDate:          due(5 * 24 * time.Hour),
		NotificationsEnabled: models.Ptr(false),
	})
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.False(t, reopened.NotificationsEnabled)
	assert.Equal(t, t0.Add(5*24*time.Hour), reopened.NextDueDate)
	assert.Empty(t, f.pending(t, task.ID))
}

func TestUnknownIDsReturnNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.Complete(ctx, "missing", "")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.Update(ctx, "missing", models.TaskPatch{Title: models.Ptr("x")})
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateDisablingNotificationsCancelsReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Test water"), NextDueDate: due(72 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, f.pending(t, task.ID), 1)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.Update(ctx, task.ID, models.TaskPatch{NotificationsEnabled: models.Ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.NotificationsEnabled)
	assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)
	assert.Equal(t, t0, updated.CreatedAt)
	assert.Empty(t, f.pending(t, task.ID))
}

func TestUpdateDueDateReschedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Test water"), NextDueDate: due(72 * time.Hour)})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, task.ID, models.TaskPatch{
		NextDueDate:         due(10 * 24 * time.Hour),
		ReminderOffsetHours: models.Ptr(2),
	})
	require.NoError(t, err)

	p := f.pending(t, task.ID)
	require.Len(t, p, 1)
	assert.True(t, p[0].TriggerAt.Equal(t0.Add(10*24*time.Hour-2*time.Hour)))
	assert.Equal(t, `"Test water" is due soon!`, p[0].Body)
}

func TestUpdateClearsRecurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Quarantine check")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, task.ID, models.TaskPatch{RecurrenceInterval: models.Ptr(0)})
	require.NoError(t, err)
	assert.False(t, updated.IsRecurring())

	_, err = f.svc.Update(ctx, task.ID, models.TaskPatch{Title: models.Ptr("")})
	assert.True(t, clierr.HasCode(err, clierr.InvalidInput))
}

func TestRemoveCancelsRemindersAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Keep"), NextDueDate: due(72 * time.Hour)})
	require.NoError(t, err)
	gone, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Gone"), NextDueDate: due(72 * time.Hour)})
	require.NoError(t, err)

	removed, err := f.svc.Remove(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, f.pending(t, gone.ID))
	assert.Len(t, f.pending(t, keep.ID), 1)

	removed, err = f.svc.Remove(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	tasks := f.svc.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, keep.ID, tasks[0].ID)
}

func TestRemoveUnknownClearsOrphanReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.notifier.Schedule(ctx, notify.Request{
		Title:     reminder.Title,
		Payload:   map[string]string{notify.PayloadTaskID: "ghost"},
		TriggerAt: t0.Add(time.Hour),
	})
	require.NoError(t, err)

	removed, err := f.svc.Remove(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, f.notifier.Len())
}

func TestReminderFailureDoesNotAbortWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.Err = errors.New("platform down")

	task, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Dose"), NextDueDate: due(72 * time.Hour)})
	require.NoError(t, err)

	done, err := f.svc.Complete(ctx, task.ID, "")
	require.NoError(t, err)
	assert.Len(t, done.CompletionHistory, 1)

	removed, err := f.svc.Remove(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestConcurrentEditsLastWriteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.serviceOn(f.kv)

	task, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Original")})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, task.ID, models.TaskPatch{Title: models.Ptr("First")})
	require.NoError(t, err)
	_, err = other.Update(ctx, task.ID, models.TaskPatch{Title: models.Ptr("Second")})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)
}

func TestRefreshReadFailureYieldsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Dose")})
	require.NoError(t, err)
	require.Len(t, f.svc.Tasks(), 1)

	require.NoError(t, f.kv.Set(ctx, db.TasksKey, "{not json"))

	tasks := f.svc.Refresh(ctx)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	// Mutations refuse to overwrite a blob they could not read.
	_, err = f.svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Another")})
	assert.Error(t, err)
	raw, _, err := f.kv.Get(ctx, db.TasksKey)
	require.NoError(t, err)
	assert.Equal(t, "{not json", raw)
}

func TestSeedDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	defaults, err := seed.Load()
	require.NoError(t, err)

	n, err := f.svc.SeedDefaults(ctx, defaults.Tasks)
	require.NoError(t, err)
	assert.Equal(t, len(defaults.Tasks), n)

	tasks := f.svc.Tasks()
	require.Len(t, tasks, n)
	for i, task := range tasks {
		tmpl := defaults.Tasks[i]
		want, err := schedule.NextDueDate(t0, tmpl.Interval, tmpl.Unit)
		require.NoError(t, err)
		assert.Equal(t, tmpl.Title, task.Title)
		assert.True(t, task.IsPredefined)
		assert.Equal(t, want, task.NextDueDate, task.Title)
		assert.Len(t, f.pending(t, task.ID), 1, task.Title)
	}

	again, err := f.svc.SeedDefaults(ctx, defaults.Tasks)
	require.NoError(t, err)
	assert.Equal(t, 0, again)
	assert.Len(t, f.svc.Refresh(ctx), n)
}

func TestSeedDefaultsNotRepeatedAfterDeletingEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tmpl := []seed.TaskTemplate{{Title: "Water change", Interval: 1, Unit: models.UnitWeeks}}
	_, err := f.svc.SeedDefaults(ctx, tmpl)
	require.NoError(t, err)

	for _, task := range f.svc.Tasks() {
		_, err := f.svc.Remove(ctx, task.ID)
		require.NoError(t, err)
	}

	n, err := f.svc.SeedDefaults(ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, f.svc.Tasks())
}

func TestSeedDefaultsFailureLeavesFlagUnset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SeedDefaults(ctx, []seed.TaskTemplate{{Title: "Bad", Interval: 1, Unit: "fortnights"}})
	require.Error(t, err)

	ok, err := db.NewTaskRepo(f.kv).IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeedDefaultsIntervalFallsBackToOne(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SeedDefaults(context.Background(), []seed.TaskTemplate{{Title: "Glass", Unit: models.UnitWeeks}})
	require.NoError(t, err)

	tasks := f.svc.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].RecurrenceInterval)
	assert.Equal(t, t0.AddDate(0, 0, 7), tasks[0].NextDueDate)
}
