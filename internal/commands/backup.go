package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/reefkeeper/internal/backup"
	"github.com/balkashynov/reefkeeper/internal/clierr"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored data as JSON",
	Args:  cobra.NoArgs,
	RunE:  withApp(runExport),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all tasks, creatures and scheduled reminders",
	Long: `Delete everything reef stores and cancel every pending reminder.
The default task set is installed again on the next run.`,
	Args: cobra.NoArgs,
	RunE: withApp(runReset),
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Write to file instead of stdout")
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm the reset")
}

func runExport(cmd *cobra.Command, _ []string, app *App) error {
	snapshot, err := backup.Export(cmd.Context(), app.KV, app.Clock.Now())
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		return snapshot.Write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := snapshot.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "💾 Exported %d keys to %s\n", len(snapshot.Data), path)
	return nil
}

func runReset(cmd *cobra.Command, _ []string, app *App) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return clierr.New(clierr.InvalidInput, "reset deletes all data; pass --yes to confirm")
	}
	removed, err := backup.Clear(cmd.Context(), app.KV, app.Reminders)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🧹 Cleared %d keys and all scheduled reminders\n", removed)
	return nil
}
