package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/parser"
	"github.com/balkashynov/reefkeeper/internal/schedule"
	"github.com/balkashynov/reefkeeper/internal/tasks"
	"github.com/balkashynov/reefkeeper/internal/tui"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "t"},
	Short:   "Manage maintenance tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a maintenance task with smart parsing",
	Long: `Create a maintenance task. Without arguments an interactive form opens.

Smart syntax inside the title:
  every:2w        repeat rule (7d, 2w, 1m, none)
  due:tomorrow    first due date (dd/mm/yyyy, yyyy-mm-dd, 3days, tomorrow)
  remind:12h      hours before due to send a reminder

Example:
  reef task add "Water change every:1w due:tomorrow remind:12h"`,
	RunE: withApp(runTaskAdd),
}

var taskListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks grouped by urgency",
	Args:    cobra.NoArgs,
	RunE:    withApp(runTaskList),
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task with its history and pending reminders",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runTaskShow),
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task; without flags an interactive form opens",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runTaskEdit),
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as done",
	Long:  "Record a completion. Recurring tasks move to their next due date counted from now.",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runTaskDone),
}

var taskRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task and its reminders",
	Args:    cobra.ExactArgs(1),
	RunE:    withApp(runTaskRemove),
}

func init() {
	taskAddCmd.Flags().String("due", "", "Due date (dd/mm/yyyy, yyyy-mm-dd, tomorrow, 3 days)")
	taskAddCmd.Flags().String("every", "", "Repeat rule (7d, 2w, 1m, every 2 weeks, none)")
	taskAddCmd.Flags().Int("remind", models.DefaultReminderOffsetHours, "Hours before due to send a reminder")
	taskAddCmd.Flags().String("desc", "", "Description")
	taskAddCmd.Flags().Bool("no-notify", false, "Do not schedule reminders")

	taskListCmd.Flags().BoolP("all", "a", false, "Include completed one-off tasks")
	taskListCmd.Flags().Bool("json", false, "Output as JSON")

	taskEditCmd.Flags().String("title", "", "New title")
	taskEditCmd.Flags().String("desc", "", "New description")
	taskEditCmd.Flags().String("due", "", "New due date")
	taskEditCmd.Flags().String("every", "", "New repeat rule (none for one-off)")
	taskEditCmd.Flags().Int("remind", 0, "Hours before due to send a reminder")
	taskEditCmd.Flags().Bool("notify", true, "Enable or disable reminders (--notify=false)")

	taskDoneCmd.Flags().StringP("note", "n", "", "Note stored with the completion")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskEditCmd, taskDoneCmd, taskRemoveCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	now := app.Clock.Now()

	if len(args) == 0 && !flagsChanged(cmd) {
		_, err := tui.RunTaskForm(ctx, out, app.Tasks, app.Clock.Now, nil)
		return err
	}

	parsed := parser.ParseTitle(strings.Join(args, " "), now)
	if len(parsed.Errors) > 0 {
		return clierr.New(clierr.InvalidInput, strings.Join(parsed.Errors, "; "))
	}
	patch := parsed.Patch()

	if err := applyTaskFlags(cmd, &patch, now); err != nil {
		return err
	}
	if noNotify, _ := cmd.Flags().GetBool("no-notify"); noNotify {
		patch.NotificationsEnabled = models.Ptr(false)
	}

	task, err := app.Tasks.Add(ctx, patch)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ New task \"%s\" added - ID: %s\n", task.Title, shortID(task.ID))
	fmt.Fprintf(out, "   %s, %s\n", parser.FormatDueDate(task.NextDueDate, now), schedule.DescribeRule(task.RecurrenceInterval, task.RecurrenceUnit))
	return nil
}

// applyTaskFlags lays the shared --desc, --due, --every and --remind flags over patch
func applyTaskFlags(cmd *cobra.Command, patch *models.TaskPatch, now time.Time) error {
	flags := cmd.Flags()
	if flags.Changed("desc") {
		desc, _ := flags.GetString("desc")
		patch.Description = models.Ptr(desc)
	}
	if flags.Changed("due") {
		input, _ := flags.GetString("due")
		due, err := parser.ParseDueDate(input, now)
		if err != nil {
			return err
		}
		if due == nil {
			return clierr.New(clierr.InvalidDate, "--due cannot be empty")
		}
		patch.NextDueDate = due
	}
	if flags.Changed("every") {
		input, _ := flags.GetString("every")
		rule, err := parser.ParseRecurrence(input)
		if err != nil {
			return err
		}
		rule.Apply(patch)
	}
	if flags.Changed("remind") {
		hours, _ := flags.GetInt("remind")
		patch.ReminderOffsetHours = models.Ptr(hours)
	}
	return nil
}

func runTaskList(cmd *cobra.Command, _ []string, app *App) error {
	out := cmd.OutOrStdout()
	all := app.Tasks.Refresh(cmd.Context())
	now := app.Clock.Now()

	showAll, _ := cmd.Flags().GetBool("all")
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		list := all
		if !showAll {
			list = openTasks(all)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(all) == 0 {
		fmt.Fprintln(out, "No tasks found. Use 'reef task add \"Water change every:1w\"' to create your first task.")
		return nil
	}

	sections := tasks.GroupByUrgency(all, now)
	for _, section := range sections {
		fmt.Fprintf(out, "%s (%d)\n", section.Title(), len(section.Tasks))
		for _, t := range section.Tasks {
			printTaskRow(out, t, now)
		}
		fmt.Fprintln(out)
	}
	if len(sections) == 0 {
		fmt.Fprintln(out, "🎉 Nothing open. The reef is happy.")
	}

	if showAll {
		var done []models.MaintenanceTask
		for _, t := range all {
			if t.IsCompleted {
				done = append(done, t)
			}
		}
		if len(done) > 0 {
			fmt.Fprintf(out, "✔ Completed (%d)\n", len(done))
			for _, t := range done {
				fmt.Fprintf(out, "  %-8s %s\n", shortID(t.ID), truncate(t.Title, 40))
			}
		}
	}
	return nil
}

// flagsChanged reports whether any of the command's own flags were given
func flagsChanged(cmd *cobra.Command) bool {
	changed := false
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed = true
		}
	})
	return changed
}

func openTasks(all []models.MaintenanceTask) []models.MaintenanceTask {
	open := []models.MaintenanceTask{}
	for _, t := range all {
		if !t.IsCompleted {
			open = append(open, t)
		}
	}
	return open
}

func printTaskRow(out io.Writer, t models.MaintenanceTask, now time.Time) {
	bell := "🔔"
	if !t.NotificationsEnabled {
		bell = "🔕"
	}
	fmt.Fprintf(out, "  %-8s %-40s %-16s %s %s\n",
		shortID(t.ID),
		truncate(t.Title, 40),
		schedule.DescribeRule(t.RecurrenceInterval, t.RecurrenceUnit),
		bell,
		parser.FormatDueDate(t.NextDueDate, now))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func runTaskShow(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	t, err := app.findTask(ctx, args[0])
	if err != nil {
		return err
	}
	now := app.Clock.Now()
	loc := now.Location()

	fmt.Fprintf(out, "%s\n", t.Title)
	fmt.Fprintf(out, "ID:        %s\n", t.ID)
	if t.Description != "" {
		fmt.Fprintf(out, "About:     %s\n", t.Description)
	}
	if t.IsCompleted {
		fmt.Fprintln(out, "Status:    ✔ completed")
	} else {
		fmt.Fprintf(out, "Due:       %s\n", parser.FormatDueDate(t.NextDueDate, now))
	}
	fmt.Fprintf(out, "Repeats:   %s\n", schedule.DescribeRule(t.RecurrenceInterval, t.RecurrenceUnit))
	if t.NotificationsEnabled {
		fmt.Fprintf(out, "Reminder:  %dh before\n", t.ReminderOffsetHours)
	} else {
		fmt.Fprintln(out, "Reminder:  off")
	}
	if t.IsPredefined {
		fmt.Fprintln(out, "Source:    default set")
	}

	pending, err := app.Reminders.PendingForTask(ctx, t.ID)
	if err != nil {
		return err
	}
	for _, p := range pending {
		fmt.Fprintf(out, "Scheduled: %s  %s\n", p.TriggerAt.In(loc).Format("02/01/2006 15:04"), p.Body)
	}

	if len(t.CompletionHistory) > 0 {
		fmt.Fprintf(out, "\nHistory (%d):\n", len(t.CompletionHistory))
		for i := len(t.CompletionHistory) - 1; i >= 0; i-- {
			rec := t.CompletionHistory[i]
			line := "  " + rec.CompletedAt.In(loc).Format("02/01/2006 15:04")
			if rec.Notes != "" {
				line += "  " + rec.Notes
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	t, err := app.findTask(ctx, args[0])
	if err != nil {
		return err
	}
	now := app.Clock.Now()

	if !flagsChanged(cmd) {
		_, err := tui.RunTaskForm(ctx, out, app.Tasks, app.Clock.Now, t)
		return err
	}

	var patch models.TaskPatch
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		patch.Title = models.Ptr(title)
	}
	if err := applyTaskFlags(cmd, &patch, now); err != nil {
		return err
	}
	if cmd.Flags().Changed("notify") {
		enabled, _ := cmd.Flags().GetBool("notify")
		patch.NotificationsEnabled = models.Ptr(enabled)
	}
	if patch.Empty() {
		return clierr.New(clierr.InvalidInput, "nothing to change")
	}

	updated, err := app.Tasks.Update(ctx, t.ID, patch)
	if err != nil {
		return err
	}
	if updated == nil {
		return notFound("task", args[0])
	}

	fmt.Fprintf(out, "✏️  Updated task \"%s\" - ID: %s\n", updated.Title, shortID(updated.ID))
	fmt.Fprintf(out, "   %s, %s\n", parser.FormatDueDate(updated.NextDueDate, now), schedule.DescribeRule(updated.RecurrenceInterval, updated.RecurrenceUnit))
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	t, err := app.findTask(ctx, args[0])
	if err != nil {
		return err
	}
	note, _ := cmd.Flags().GetString("note")

	updated, err := app.Tasks.Complete(ctx, t.ID, note)
	if err != nil {
		return err
	}
	if updated == nil {
		return notFound("task", args[0])
	}

	now := app.Clock.Now()
	fmt.Fprintf(out, "✅ Marked \"%s\" as done at %s\n", updated.Title, now.Format("15:04"))
	if updated.IsRecurring() {
		fmt.Fprintf(out, "🔁 Next: %s\n", parser.FormatDueDate(updated.NextDueDate, now))
	}
	return nil
}

func runTaskRemove(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	t, err := app.findTask(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := app.Tasks.Remove(ctx, t.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted task \"%s\"\n", t.Title)
	return nil
}

var _ tui.TaskStore = (*tasks.Service)(nil)
