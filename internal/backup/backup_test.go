package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/balkashynov/reefkeeper/internal/db"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/notify"
	"github.com/balkashynov/reefkeeper/internal/reminder"
	"github.com/balkashynov/reefkeeper/internal/schedule"
	"github.com/balkashynov/reefkeeper/internal/tasks"
)

var t0 = time.Date(2026, 2, 12, 12, 0, 0, 0, time.UTC)

func TestExport(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()

	repo := db.NewTaskRepo(kv)
	task, err := repo.AddTask(ctx, models.NewTask(models.TaskPatch{Title: models.Ptr("Water change")}, t0))
	require.NoError(t, err)
	require.NoError(t, repo.MarkInitialized(ctx))
	require.NoError(t, kv.Set(ctx, "unrelated", "ignored"))

	snap, err := Export(ctx, kv, t0)
	require.NoError(t, err)
	assert.Equal(t, t0, snap.ExportedAt)
	assert.Len(t, snap.Data, 2)
	assert.NotContains(t, snap.Data, "unrelated")

	var exported []models.MaintenanceTask
	require.NoError(t, json.Unmarshal(snap.Data[db.TasksKey], &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, task.ID, exported[0].ID)

	var buf bytes.Buffer
	require.NoError(t, snap.Write(&buf))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2026-02-12T12:00:00Z", doc["exportedAt"])
	data := doc["data"].(map[string]any)
	assert.Equal(t, true, data[db.TasksInitializedKey])
}

func TestExportKeepsNonJSONAsString(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, db.KeyPrefix+"_note", "not json"))

	snap, err := Export(ctx, kv, t0)
	require.NoError(t, err)
	assert.JSONEq(t, `"not json"`, string(snap.Data[db.KeyPrefix+"_note"]))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryKV()
	notifier := notify.NewMemoryNotifier()
	clock := schedule.NewFakeClock(t0)
	sched := reminder.NewScheduler(notifier, clock, zap.NewNop())
	svc := tasks.NewService(db.NewTaskRepo(kv), sched, clock, zap.NewNop())

	due := t0.Add(72 * time.Hour)
	_, err := svc.Add(ctx, models.TaskPatch{Title: models.Ptr("Dose"), NextDueDate: &due})
	require.NoError(t, err)
	require.NoError(t, db.NewTaskRepo(kv).MarkInitialized(ctx))
	require.NoError(t, kv.Set(ctx, "unrelated", "kept"))
	require.Equal(t, 1, notifier.Len())

	n, err := Clear(ctx, kv, sched)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, notifier.Len())

	keys, err := kv.Keys(ctx, db.KeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
	_, ok, err := kv.Get(ctx, "unrelated")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Empty(t, svc.Refresh(ctx))
}
