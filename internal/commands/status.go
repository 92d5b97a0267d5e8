package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/balkashynov/reefkeeper/internal/creatures"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/parser"
	"github.com/balkashynov/reefkeeper/internal/tasks"
	"github.com/balkashynov/reefkeeper/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tank dashboard",
	Args:  cobra.NoArgs,
	RunE:  withApp(runStatus),
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive maintenance board",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *App) error {
		return tui.RunBoard(cmd.Context(), app.Tasks, app.Clock.Now)
	}),
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tui.ColorAccentBright))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorHelpText))
)

// nextUpLimit is how many open tasks the dashboard lists
const nextUpLimit = 5

func runStatus(cmd *cobra.Command, _ []string, app *App) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	now := app.Clock.Now()

	all := app.Tasks.Refresh(ctx)
	summary := tasks.Summarize(all, now)

	fmt.Fprintln(out, headingStyle.Render("🐠 Reef status"))
	fmt.Fprintf(out, "Tasks:     %d open, %d overdue, %d due today, %d upcoming, %d later\n",
		summary.Open(), summary.Overdue, summary.Today, summary.Upcoming, summary.Later)

	counts := creatures.CountByType(app.Creatures.List(ctx, false))
	fmt.Fprint(out, "Creatures:")
	total := 0
	for _, t := range models.CreatureTypes {
		if counts[t] > 0 {
			fmt.Fprintf(out, " %s %d", t.Label(), counts[t])
			total += counts[t]
		}
	}
	if total == 0 {
		fmt.Fprint(out, " none yet")
	}
	fmt.Fprintln(out)

	sections := tasks.GroupByUrgency(all, now)
	if len(sections) == 0 {
		fmt.Fprintln(out, "\n🎉 Nothing to do. The reef is happy.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render("Next up"))
	shown := 0
	for _, section := range sections {
		for _, t := range section.Tasks {
			if shown == nextUpLimit {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("  ... and %d more, see 'reef task ls'", summary.Open()-shown)))
				return nil
			}
			fmt.Fprintf(out, "  %-8s %-40s %s\n", shortID(t.ID), truncate(t.Title, 40), parser.FormatDueDate(t.NextDueDate, now))
			shown++
		}
	}
	return nil
}
