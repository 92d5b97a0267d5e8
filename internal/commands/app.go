package commands

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/config"
	"github.com/balkashynov/reefkeeper/internal/creatures"
	"github.com/balkashynov/reefkeeper/internal/db"
	"github.com/balkashynov/reefkeeper/internal/logger"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/notify"
	"github.com/balkashynov/reefkeeper/internal/reminder"
	"github.com/balkashynov/reefkeeper/internal/schedule"
	"github.com/balkashynov/reefkeeper/internal/seed"
	"github.com/balkashynov/reefkeeper/internal/tasks"
)

// App holds everything a command needs for one invocation
type App struct {
	Config    *config.Config
	DB        *gorm.DB // nil for in-memory apps
	KV        db.KV
	Clock     schedule.Clock
	Notifier  notify.Notifier
	Queue     notify.Queue // nil when notifications are disabled
	Reminders *reminder.Scheduler
	Tasks     *tasks.Service
	Creatures *creatures.Service
	Logger    *zap.Logger
}

// openApp builds the App for a command; tests swap it for an in-memory one
var openApp = openSQLiteApp

func openSQLiteApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, err
	}

	gdb, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	var notifier notify.Notifier = notify.Unavailable{}
	var queue notify.Queue
	if cfg.Notifications.Enabled {
		local, err := notify.NewLocalNotifier(gdb)
		if err != nil {
			_ = db.Close(gdb)
			return nil, err
		}
		notifier, queue = local, local
	}

	app := newApp(cfg, db.NewSQLiteKV(gdb), notifier, queue, schedule.SystemClock{}, logger.Get())
	app.DB = gdb
	app.seed(ctx)
	return app, nil
}

// newApp wires services over the given storage and notifier
func newApp(cfg *config.Config, kv db.KV, notifier notify.Notifier, queue notify.Queue, clock schedule.Clock, log *zap.Logger) *App {
	reminders := reminder.NewScheduler(notifier, clock, log.Named("reminder"))
	return &App{
		Config:    cfg,
		KV:        kv,
		Clock:     clock,
		Notifier:  notifier,
		Queue:     queue,
		Reminders: reminders,
		Tasks:     tasks.NewService(db.NewTaskRepo(kv), reminders, clock, log.Named("tasks")),
		Creatures: creatures.NewService(db.NewCreatureRepo(kv), clock, log.Named("creatures")),
		Logger:    log,
	}
}

// seed installs the default templates once per store; failures only log
func (a *App) seed(ctx context.Context) {
	if !a.Config.Seed.Enabled {
		return
	}
	defaults, err := seed.Load()
	if err != nil {
		a.Logger.Warn("Failed to load seed templates", zap.Error(err))
		return
	}
	if n, err := a.Tasks.SeedDefaults(ctx, defaults.Tasks); err != nil {
		a.Logger.Warn("Failed to seed tasks", zap.Error(err))
	} else if n > 0 {
		a.Logger.Info("Seeded default tasks", zap.Int("count", n))
	}
	if _, err := a.Creatures.SeedDefaults(ctx, defaults.Creatures); err != nil {
		a.Logger.Warn("Failed to seed creatures", zap.Error(err))
	}
}

// Close releases the database
func (a *App) Close() error {
	_ = logger.Sync()
	return db.Close(a.DB)
}

// findTask resolves a full id or a unique id prefix
func (a *App) findTask(ctx context.Context, ref string) (*models.MaintenanceTask, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, clierr.New(clierr.InvalidInput, "task id is required")
	}
	if t, err := a.Tasks.Get(ctx, ref); err != nil || t != nil {
		return t, err
	}
	var matches []models.MaintenanceTask
	for _, t := range a.Tasks.Refresh(ctx) {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		return nil, clierr.Newf(clierr.TaskNotFound, "task %q not found", ref)
	default:
		return nil, clierr.Newf(clierr.InvalidInput, "id %q matches %d tasks, use more characters", ref, len(matches))
	}
}

// findCreature resolves a full id or a unique id prefix, archived included
func (a *App) findCreature(ctx context.Context, ref string) (*models.Creature, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, clierr.New(clierr.InvalidInput, "creature id is required")
	}
	if c, err := a.Creatures.Get(ctx, ref); err != nil || c != nil {
		return c, err
	}
	var matches []models.Creature
	for _, c := range a.Creatures.List(ctx, true) {
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		return nil, clierr.Newf(clierr.CreatureNotFound, "creature %q not found", ref)
	default:
		return nil, clierr.Newf(clierr.InvalidInput, "id %q matches %d creatures, use more characters", ref, len(matches))
	}
}

// shortID is the prefix shown in listings
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func notFound(kind, ref string) error {
	if kind == "creature" {
		return clierr.Newf(clierr.CreatureNotFound, "creature %q not found", ref)
	}
	return clierr.Newf(clierr.TaskNotFound, "%s %q not found", kind, ref)
}
