package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/notify"
)

var remindCmd = &cobra.Command{
	Use:     "remind",
	Aliases: []string{"reminders"},
	Short:   "Inspect and deliver scheduled reminders",
}

var remindListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List pending reminders",
	Args:    cobra.NoArgs,
	RunE:    withApp(runRemindList),
}

var remindRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Deliver due reminders to this terminal",
	Long: `Poll the reminder queue and print each reminder as it comes due.
Runs until interrupted; --once delivers what is due now and exits.`,
	Args: cobra.NoArgs,
	RunE: withApp(runRemindRun),
}

func init() {
	remindRunCmd.Flags().Bool("once", false, "Deliver due reminders once and exit")
	remindCmd.AddCommand(remindListCmd, remindRunCmd)
}

func runRemindList(cmd *cobra.Command, _ []string, app *App) error {
	out := cmd.OutOrStdout()
	if !app.Notifier.Available() {
		fmt.Fprintln(out, "🔕 Notifications are disabled.")
		return nil
	}

	pending, err := app.Reminders.Pending(cmd.Context())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, "No reminders scheduled.")
		return nil
	}

	loc := app.Clock.Now().Location()
	fmt.Fprintf(out, "%-17s %-8s %s\n", "WHEN", "TASK", "MESSAGE")
	for _, p := range pending {
		fmt.Fprintf(out, "%-17s %-8s %s\n",
			p.TriggerAt.In(loc).Format("02/01/2006 15:04"),
			shortID(p.Payload[notify.PayloadTaskID]),
			p.Body)
	}
	return nil
}

func runRemindRun(cmd *cobra.Command, _ []string, app *App) error {
	if app.Queue == nil {
		return clierr.New(clierr.InvalidInput, "notifications are disabled; set notifications.enabled to true")
	}

	sink := notify.MultiSink{
		notify.TerminalSink{Out: cmd.OutOrStdout()},
		notify.LogSink{Logger: app.Logger.Named("reminders")},
	}
	dispatcher := notify.NewDispatcher(app.Queue, sink, app.Clock.Now, notify.DispatcherConfig{
		PollInterval: app.Config.Notifications.PollInterval,
	}, app.Logger.Named("dispatcher"))

	if once, _ := cmd.Flags().GetBool("once"); once {
		n := dispatcher.DispatchDue(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d reminder(s)\n", n)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintln(cmd.OutOrStdout(), "🔔 Watching for reminders, Ctrl+C to stop")
	return dispatcher.Run(ctx)
}
