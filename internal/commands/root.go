package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/reefkeeper/internal/clierr"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "reef",
	Short: "Aquarium maintenance planner",
	Long: `reef keeps track of recurring tank chores and the creatures living in your aquarium.
It reminds you before water changes, filter cleanings and tests are due.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	RunE:          withApp(runStatus),
}

// withApp opens the app around a command; any unstructured error becomes INTERNAL_ERROR
func withApp(fn func(cmd *cobra.Command, args []string, app *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return clierr.From(err)
		}
		defer app.Close()

		if err := fn(cmd, args, app); err != nil {
			return clierr.From(err)
		}
		return nil
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	_, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		fmt.Fprintf(errOut, "Error [%s]: %s\n", cliErr.Code, cliErr.Message)
		return cliErr.ExitCode()
	}
	fmt.Fprintf(errOut, "Error: %v\n", err)
	return 1
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reef %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.reef/config.yaml)")

	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(creatureCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
