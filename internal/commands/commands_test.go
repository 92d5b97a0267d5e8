package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/balkashynov/reefkeeper/internal/config"
	"github.com/balkashynov/reefkeeper/internal/db"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/notify"
	"github.com/balkashynov/reefkeeper/internal/schedule"
)

var t0 = time.Date(2026, 2, 12, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	app      *App
	kv       *db.MemoryKV
	clock    *schedule.FakeClock
	notifier *notify.MemoryNotifier
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		kv:       db.NewMemoryKV(),
		clock:    schedule.NewFakeClock(t0),
		notifier: notify.NewMemoryNotifier(),
	}
	cfg := &config.Config{
		Env:           "testing",
		Notifications: config.NotificationsConfig{Enabled: true, PollInterval: time.Second},
	}
	env.app = newApp(cfg, env.kv, env.notifier, env.notifier, env.clock, zap.NewNop())

	prev := openApp
	openApp = func(context.Context) (*App, error) { return env.app, nil }
	t.Cleanup(func() { openApp = prev })
	return env
}

// resetFlags puts every flag back to its default between runs of the shared command tree
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func (e *testEnv) run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func (e *testEnv) tasks(t *testing.T) []models.MaintenanceTask {
	t.Helper()
	return e.app.Tasks.Refresh(context.Background())
}

func (e *testEnv) onlyTask(t *testing.T) models.MaintenanceTask {
	t.Helper()
	all := e.tasks(t)
	require.Len(t, all, 1)
	return all[0]
}

func TestTaskAddSmartSyntax(t *testing.T) {
	env := setup(t)

	out, errOut, code := env.run(t, "task", "add", "Water change every:2w due:tomorrow remind:12h")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Water change")
	assert.Contains(t, out, "every 2 weeks")

	task := env.onlyTask(t)
	assert.Equal(t, "Water change", task.Title)
	assert.Equal(t, 2, task.RecurrenceInterval)
	assert.Equal(t, models.UnitWeeks, task.RecurrenceUnit)
	assert.Equal(t, t0.AddDate(0, 0, 1), task.NextDueDate)
	assert.Equal(t, 12, task.ReminderOffsetHours)
	assert.Equal(t, 1, env.notifier.Len())
}

func TestTaskAddFlags(t *testing.T) {
	env := setup(t)

	_, errOut, code := env.run(t, "task", "add", "Buy", "salt", "--every", "none", "--due", "2026-02-20", "--no-notify", "--desc", "Reef salt 20kg")
	require.Equal(t, 0, code, errOut)

	task := env.onlyTask(t)
	assert.Equal(t, "Buy salt", task.Title)
	assert.Equal(t, "Reef salt 20kg", task.Description)
	assert.False(t, task.IsRecurring())
	assert.False(t, task.NotificationsEnabled)
	assert.Equal(t, time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC), task.NextDueDate)
	assert.Equal(t, 0, env.notifier.Len())
}

func TestTaskAddErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"bad rule flag", []string{"task", "add", "Feed", "--every", "fortnightly"}, "INVALID_RECURRENCE"},
		{"bad due flag", []string{"task", "add", "Feed", "--due", "someday"}, "INVALID_DATE"},
		{"bad smart syntax", []string{"task", "add", "Feed every:often"}, "INVALID_INPUT"},
		{"missing title", []string{"task", "add", "--due", "tomorrow"}, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			_, errOut, code := env.run(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, "Error ["+tt.code+"]")
			assert.Empty(t, env.tasks(t))
		})
	}
}

func TestTaskList(t *testing.T) {
	env := setup(t)

	out, _, code := env.run(t, "task", "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No tasks found")

	env.run(t, "task", "add", "Test water due:today")
	env.run(t, "task", "add", "Clean glass due:10days")
	out, _, code = env.run(t, "task", "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Due Today (1)")
	assert.Contains(t, out, "Later (1)")
	assert.Contains(t, out, "Test water")
	assert.Contains(t, out, "Clean glass")
}

func TestTaskListJSON(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Dose every:none")
	task := env.onlyTask(t)
	env.run(t, "task", "done", task.ID)

	out, _, code := env.run(t, "task", "ls", "--json")
	require.Equal(t, 0, code)
	var open []models.MaintenanceTask
	require.NoError(t, json.Unmarshal([]byte(out), &open))
	assert.Empty(t, open)

	out, _, _ = env.run(t, "task", "ls", "--json", "--all")
	var all []models.MaintenanceTask
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all, 1)
	assert.True(t, all[0].IsCompleted)
}

func TestTaskDoneByPrefix(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Water change every:1w")
	task := env.onlyTask(t)

	env.clock.Advance(2 * time.Hour)
	out, errOut, code := env.run(t, "task", "done", shortID(task.ID), "--note", "20%")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Marked \"Water change\" as done")
	assert.Contains(t, out, "Next:")

	task = env.onlyTask(t)
	require.Len(t, task.CompletionHistory, 1)
	assert.Equal(t, "20%", task.CompletionHistory[0].Notes)
	assert.Equal(t, t0.Add(2*time.Hour).AddDate(0, 0, 7), task.NextDueDate)
}

func TestTaskShow(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Clean filter due:3days", "--desc", "Rinse sponge")
	task := env.onlyTask(t)

	out, _, code := env.run(t, "task", "show", task.ID)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Clean filter")
	assert.Contains(t, out, "Rinse sponge")
	assert.Contains(t, out, "every 7 days")
	assert.Contains(t, out, "Reminder:  24h before")
	assert.Contains(t, out, "Scheduled:")
}

func TestTaskNotFound(t *testing.T) {
	env := setup(t)
	for _, sub := range []string{"show", "done", "rm"} {
		_, errOut, code := env.run(t, "task", sub, "missing")
		assert.Equal(t, 1, code, sub)
		assert.Contains(t, errOut, "Error [TASK_NOT_FOUND]", sub)
	}
}

func TestTaskEdit(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Feed due:2days")
	task := env.onlyTask(t)
	require.Equal(t, 1, env.notifier.Len())

	out, errOut, code := env.run(t, "task", "edit", task.ID, "--title", "Feed pellets", "--notify=false", "--every", "1d")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Feed pellets")

	task = env.onlyTask(t)
	assert.Equal(t, "Feed pellets", task.Title)
	assert.False(t, task.NotificationsEnabled)
	assert.Equal(t, 1, task.RecurrenceInterval)
	assert.Equal(t, models.UnitDays, task.RecurrenceUnit)
	assert.Equal(t, 0, env.notifier.Len())
}

func TestTaskRemove(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Feed due:2days")
	task := env.onlyTask(t)

	out, _, code := env.run(t, "task", "rm", task.ID)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Deleted task \"Feed\"")
	assert.Empty(t, env.tasks(t))
	assert.Equal(t, 0, env.notifier.Len())
}

func TestBlankIDIsRejected(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Feed due:2days")
	env.run(t, "creature", "add", "Nemo", "-s", "Amphiprion ocellaris", "-t", "fish")

	for _, args := range [][]string{
		{"task", "rm", ""},
		{"task", "done", "  "},
		{"task", "show", ""},
		{"creature", "rm", ""},
	} {
		_, errOut, code := env.run(t, args...)
		assert.Equal(t, 1, code, args)
		assert.Contains(t, errOut, "Error [INVALID_INPUT]", args)
	}

	task := env.onlyTask(t)
	assert.Empty(t, task.CompletionHistory)
	assert.Len(t, env.app.Creatures.List(context.Background(), true), 1)
}

func TestTaskDoneTwiceOnOneOff(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Replace heater due:2days", "--every", "none")
	task := env.onlyTask(t)

	_, errOut, code := env.run(t, "task", "done", task.ID)
	require.Equal(t, 0, code, errOut)

	_, errOut, code = env.run(t, "task", "done", task.ID)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "already completed")
	assert.Len(t, env.onlyTask(t).CompletionHistory, 1)
}

func TestCreatureLifecycle(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	out, errOut, code := env.run(t, "creature", "add", "Nemo", "--species", "Amphiprion ocellaris", "--type", "Fish", "--qty", "2")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Nemo")

	list := env.app.Creatures.List(ctx, true)
	require.Len(t, list, 1)
	nemo := list[0]
	assert.Equal(t, models.CreatureFish, nemo.Type)
	assert.Equal(t, 2, nemo.Quantity)

	_, _, code = env.run(t, "creature", "log", shortID(nemo.ID), "Eating", "well")
	require.Equal(t, 0, code)
	_, _, code = env.run(t, "creature", "edit", nemo.ID, "--notes", "Host anemone")
	require.Equal(t, 0, code)

	out, _, _ = env.run(t, "creature", "show", nemo.ID)
	assert.Contains(t, out, "Amphiprion ocellaris")
	assert.Contains(t, out, "Host anemone")
	assert.Contains(t, out, "Eating well")

	_, _, code = env.run(t, "creature", "archive", nemo.ID)
	require.Equal(t, 0, code)
	out, _, _ = env.run(t, "creature", "ls")
	assert.Contains(t, out, "No creatures yet")
	out, _, _ = env.run(t, "creature", "ls", "--all")
	assert.Contains(t, out, "Nemo (archived)")

	_, _, code = env.run(t, "creature", "rm", nemo.ID)
	require.Equal(t, 0, code)
	assert.Empty(t, env.app.Creatures.List(ctx, true))
}

func TestCreatureValidation(t *testing.T) {
	env := setup(t)

	_, errOut, code := env.run(t, "creature", "add", "Nemo", "--type", "fish")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "species is required")

	_, errOut, code = env.run(t, "creature", "add", "Zoa", "--species", "Zoanthus", "--type", "plant")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error [INVALID_INPUT]")

	_, errOut, code = env.run(t, "creature", "show", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error [CREATURE_NOT_FOUND]")
}

func TestStatus(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Water change due:today")
	env.run(t, "task", "add", "Clean glass due:2days")
	env.run(t, "creature", "add", "Nemo", "-s", "Amphiprion ocellaris", "-t", "fish", "-q", "2")

	out, errOut, code := env.run(t)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "2 open, 0 overdue, 1 due today, 1 upcoming, 0 later")
	assert.Contains(t, out, "Fish 2")
	assert.Contains(t, out, "Water change")
}

func TestRemindListAndRun(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Water change due:tomorrow remind:12h")

	out, _, code := env.run(t, "remind", "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "13/02/2026 00:00")
	assert.Contains(t, out, "\"Water change\" is due soon!")

	out, _, code = env.run(t, "remind", "run", "--once")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Delivered 0 reminder(s)")

	env.clock.Advance(13 * time.Hour)
	out, _, code = env.run(t, "remind", "run", "--once")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Maintenance Reminder")
	assert.Contains(t, out, "Delivered 1 reminder(s)")
	assert.Equal(t, 0, env.notifier.Len())
}

func TestRemindRunNeedsQueue(t *testing.T) {
	env := setup(t)
	env.app.Queue = nil
	_, errOut, code := env.run(t, "remind", "run", "--once")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "notifications are disabled")
}

func TestExportAndReset(t *testing.T) {
	env := setup(t)
	env.run(t, "task", "add", "Feed due:2days")

	out, _, code := env.run(t, "export")
	require.Equal(t, 0, code)
	var snap struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Contains(t, snap.Data, "@reef_keeper_tasks")

	path := filepath.Join(t.TempDir(), "backup.json")
	out, _, code = env.run(t, "export", "-o", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Feed")

	_, errOut, code := env.run(t, "reset")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--yes")
	assert.Len(t, env.tasks(t), 1)

	_, _, code = env.run(t, "reset", "--yes")
	require.Equal(t, 0, code)
	assert.Empty(t, env.tasks(t))
	assert.Equal(t, 0, env.notifier.Len())
}

func TestInternalErrorsExitTwo(t *testing.T) {
	setup(t)
	openApp = func(context.Context) (*App, error) { return nil, errors.New("disk on fire") }

	var out, errOut bytes.Buffer
	resetFlags(rootCmd)
	code := execute(context.Background(), []string{"task", "ls"}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "Error [INTERNAL_ERROR]: disk on fire")
}

func TestVersionAndHelp(t *testing.T) {
	env := setup(t)
	SetVersion("1.2.3", "abc", "today")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	out, _, code := env.run(t, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "reef 1.2.3")

	out, _, code = env.run(t, "help")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "aquarium maintenance planner")
}

func TestSeedOnce(t *testing.T) {
	env := setup(t)
	env.app.Config.Seed.Enabled = true
	ctx := context.Background()

	env.app.seed(ctx)
	seeded := env.tasks(t)
	require.NotEmpty(t, seeded)
	for _, task := range seeded {
		assert.True(t, task.IsPredefined)
	}

	env.run(t, "task", "rm", seeded[0].ID)
	env.app.seed(ctx)
	assert.Len(t, env.tasks(t), len(seeded)-1)
}
