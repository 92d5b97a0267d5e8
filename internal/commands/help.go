package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for reef",
	Long:  `Display detailed help for all reef commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if target, _, err := rootCmd.Find(args); err == nil && target != rootCmd {
				_ = target.Help()
				return
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), helpText)
	},
}

const helpText = `
██████╗ ███████╗███████╗███████╗
██╔══██╗██╔════╝██╔════╝██╔════╝
██████╔╝█████╗  █████╗  █████╗
██╔══██╗██╔══╝  ██╔══╝  ██╔══╝
██║  ██║███████╗███████╗██║
╚═╝  ╚═╝╚══════╝╚══════╝╚═╝

reef - aquarium maintenance planner

COMMANDS:

  status                  Dashboard: task urgency counts and creatures (default)
  board                   Interactive board grouped by urgency

  task add <title>        Create a task with smart parsing (no args: form)
    --due                 Due date (dd/mm/yyyy, yyyy-mm-dd, tomorrow, 3 days)
    --every               Repeat rule (7d, 2w, 1m, every 2 weeks, none)
    --remind              Hours before due to send a reminder (default 24)
    --desc                Description
    --no-notify           Do not schedule reminders

    Smart syntax:
      every:2w      Repeat every two weeks
      due:tomorrow  First due date
      remind:12h    Reminder offset

    Example:
      reef task add "Water change every:1w due:tomorrow remind:12h"

  task ls                 Tasks grouped by urgency
    -a, --all             Include completed one-off tasks
    --json                JSON output
  task show <id>          Details, history and pending reminders
  task edit <id>          Edit with flags, or the form without flags
  task done <id>          Complete; recurring tasks move to the next date
    -n, --note            Note stored with the completion
  task rm <id>            Delete a task and its reminders

  creature add <name>     Add a creature
    -s, --species         Species (required)
    -t, --type            fish, coral, invertebrate, other (required)
    -q, --qty             Quantity (default 1)
    --notes, --acquired, --photo
  creature ls             List creatures (-a includes archived)
  creature show <id>      Details and health log
  creature edit <id>      Change fields with the add flags or --name
  creature archive <id>   Hide without deleting history
  creature log <id> <note> Add a health log entry
  creature rm <id>        Delete a creature

  remind ls               Pending reminders
  remind run              Deliver reminders as they come due (--once to drain and exit)

  export [-o file]        Dump all stored data as JSON
  reset --yes             Delete all data and cancel reminders

  version                 Version information

IDs can be shortened to any unique prefix.

CONFIG:
  ~/.reef/config.yaml or --config, overridden by REEF_* environment variables
  (REEF_ENV, REEF_DATA_DIR, REEF_NOTIFICATIONS_ENABLED, REEF_SEED_ENABLED, ...)
`
