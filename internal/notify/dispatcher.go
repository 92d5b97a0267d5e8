package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Queue is the part of LocalNotifier the dispatcher drains
type Queue interface {
	Due(ctx context.Context, now time.Time, limit int) ([]Pending, error)
	Ack(ctx context.Context, identifier string) error
}

// Sink presents a due notification to the user
type Sink interface {
	Deliver(ctx context.Context, n Pending) error
}

// DispatcherConfig controls the polling loop
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Dispatcher polls the queue for due notifications and delivers them
type Dispatcher struct {
	queue  Queue
	sink   Sink
	now    func() time.Time
	cfg    DispatcherConfig
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher; now is usually a Clock's Now method
func NewDispatcher(queue Queue, sink Sink, now func() time.Time, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: queue, sink: sink, now: now, cfg: cfg, logger: logger}
}

// Run polls until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.logger.Info("Dispatcher started", zap.Duration("poll_interval", d.cfg.PollInterval))

	// Initial poll
	d.DispatchDue(ctx)

	for {
		select {
		case <-ticker.C:
			d.DispatchDue(ctx)
		case <-ctx.Done():
			d.logger.Info("Dispatcher stopping")
			return nil
		}
	}
}

// DispatchDue delivers every currently due notification once and returns
// how many were delivered. Failed deliveries stay queued for the next poll.
func (d *Dispatcher) DispatchDue(ctx context.Context) int {
	pollCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	due, err := d.queue.Due(pollCtx, d.now(), d.cfg.BatchSize)
	if err != nil {
		d.logger.Error("Failed to fetch due notifications", zap.Error(err))
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	delivered := 0
	for _, n := range due {
		if err := d.sink.Deliver(pollCtx, n); err != nil {
			d.logger.Warn("Notification delivery failed, will retry",
				zap.String("notification_id", n.Identifier),
				zap.Error(err))
			continue
		}
		if err := d.queue.Ack(pollCtx, n.Identifier); err != nil {
			d.logger.Error("Failed to ack delivered notification",
				zap.String("notification_id", n.Identifier),
				zap.Error(err))
			continue
		}
		delivered++
	}

	d.logger.Debug("Notifications delivered", zap.Int("delivered", delivered), zap.Int("due", len(due)))
	return delivered
}

// TerminalSink prints a styled banner per notification
type TerminalSink struct {
	Out io.Writer
}

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1)
	bannerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#F59E0B"))
	bannerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func (s TerminalSink) Deliver(_ context.Context, n Pending) error {
	content := bannerTitleStyle.Render("🔧 "+n.Title) + "\n" + n.Body
	if id := n.Payload[PayloadTaskID]; id != "" {
		content += "\n" + bannerHintStyle.Render("reef task show "+id)
	}
	_, err := fmt.Fprintln(s.Out, bannerStyle.Render(content))
	return err
}

// LogSink writes each notification as a log entry
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Deliver(_ context.Context, n Pending) error {
	s.Logger.Info("Reminder",
		zap.String("notification_id", n.Identifier),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.String("task_id", n.Payload[PayloadTaskID]),
		zap.Time("trigger_at", n.TriggerAt))
	return nil
}

// MultiSink delivers to every sink and fails if any of them fails
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, n Pending) error {
	for _, s := range m {
		if err := s.Deliver(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
