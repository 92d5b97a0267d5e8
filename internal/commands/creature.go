package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/reefkeeper/internal/clierr"
	"github.com/balkashynov/reefkeeper/internal/models"
	"github.com/balkashynov/reefkeeper/internal/parser"
)

var creatureCmd = &cobra.Command{
	Use:     "creature",
	Aliases: []string{"creatures", "c"},
	Short:   "Manage the fish, corals and invertebrates in your tank",
}

var creatureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a creature",
	Example: `  reef creature add Nemo --species "Amphiprion ocellaris" --type fish
  reef creature add "Green star polyps" --species "Pachyclavularia violacea" --type coral --qty 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(runCreatureAdd),
}

var creatureListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List creatures",
	Args:    cobra.NoArgs,
	RunE:    withApp(runCreatureList),
}

var creatureShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a creature and its health log",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runCreatureShow),
}

var creatureEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a creature",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runCreatureEdit),
}

var creatureArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a creature, keeping its history",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runCreatureArchive),
}

var creatureRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a creature",
	Args:    cobra.ExactArgs(1),
	RunE:    withApp(runCreatureRemove),
}

var creatureLogCmd = &cobra.Command{
	Use:   "log <id> <note>",
	Short: "Add a health log entry",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApp(runCreatureLog),
}

// addCreatureFlags registers the fields shared by add and edit
func addCreatureFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("species", "s", "", "Species")
	cmd.Flags().StringP("type", "t", "", "Type: fish, coral, invertebrate, other")
	cmd.Flags().IntP("qty", "q", 1, "Quantity")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().String("acquired", "", "Date acquired (dd/mm/yyyy, yyyy-mm-dd)")
	cmd.Flags().String("photo", "", "Photo file URI (empty to clear on edit)")
}

func init() {
	addCreatureFlags(creatureAddCmd)
	addCreatureFlags(creatureEditCmd)
	creatureEditCmd.Flags().String("name", "", "New name")

	creatureListCmd.Flags().BoolP("all", "a", false, "Include archived creatures")
	creatureListCmd.Flags().Bool("json", false, "Output as JSON")

	creatureCmd.AddCommand(creatureAddCmd, creatureListCmd, creatureShowCmd, creatureEditCmd,
		creatureArchiveCmd, creatureRemoveCmd, creatureLogCmd)
}

// creaturePatch builds a patch from whichever creature flags were set
func creaturePatch(cmd *cobra.Command, app *App) (models.CreaturePatch, error) {
	var p models.CreaturePatch
	flags := cmd.Flags()

	if flags.Changed("name") {
		name, _ := flags.GetString("name")
		p.Name = models.Ptr(name)
	}
	if flags.Changed("species") {
		species, _ := flags.GetString("species")
		p.Species = models.Ptr(species)
	}
	if flags.Changed("type") {
		t, _ := flags.GetString("type")
		p.Type = models.Ptr(models.CreatureType(strings.ToLower(t)))
	}
	if flags.Changed("qty") {
		qty, _ := flags.GetInt("qty")
		p.Quantity = models.Ptr(qty)
	}
	if flags.Changed("notes") {
		notes, _ := flags.GetString("notes")
		p.Notes = models.Ptr(notes)
	}
	if flags.Changed("photo") {
		photo, _ := flags.GetString("photo")
		p.PhotoURI = models.Ptr(photo)
	}
	if flags.Changed("acquired") {
		input, _ := flags.GetString("acquired")
		date, err := parser.ParseDueDate(input, app.Clock.Now())
		if err != nil {
			return p, err
		}
		if date != nil {
			p.DateAcquired = date
		}
	}
	return p, nil
}

func runCreatureAdd(cmd *cobra.Command, args []string, app *App) error {
	p, err := creaturePatch(cmd, app)
	if err != nil {
		return err
	}
	p.Name = models.Ptr(strings.Join(args, " "))

	c, err := app.Creatures.Add(cmd.Context(), p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Welcome aboard, %s (%s) - ID: %s\n", c.Name, c.Type.Label(), shortID(c.ID))
	return nil
}

func runCreatureList(cmd *cobra.Command, _ []string, app *App) error {
	out := cmd.OutOrStdout()
	showAll, _ := cmd.Flags().GetBool("all")
	list := app.Creatures.List(cmd.Context(), showAll)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No creatures yet. Use 'reef creature add <name> --species ... --type fish' to add one.")
		return nil
	}

	fmt.Fprintf(out, "%-8s %-24s %-30s %-16s %s\n", "ID", "NAME", "SPECIES", "TYPE", "QTY")
	fmt.Fprintln(out, strings.Repeat("-", 84))
	for _, c := range list {
		name := truncate(c.Name, 24)
		if c.Archived {
			name = truncate(c.Name+" (archived)", 24)
		}
		fmt.Fprintf(out, "%-8s %-24s %-30s %-16s %d\n", shortID(c.ID), name, truncate(c.Species, 30), c.Type.Label(), c.Quantity)
	}
	return nil
}

func runCreatureShow(cmd *cobra.Command, args []string, app *App) error {
	out := cmd.OutOrStdout()
	c, err := app.findCreature(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	loc := app.Clock.Now().Location()

	fmt.Fprintf(out, "%s\n", c.Name)
	fmt.Fprintf(out, "ID:        %s\n", c.ID)
	fmt.Fprintf(out, "Species:   %s\n", c.Species)
	fmt.Fprintf(out, "Type:      %s\n", c.Type.Label())
	fmt.Fprintf(out, "Quantity:  %d\n", c.Quantity)
	fmt.Fprintf(out, "Acquired:  %s\n", c.DateAcquired.In(loc).Format("02/01/2006"))
	if c.PhotoURI != nil {
		fmt.Fprintf(out, "Photo:     %s\n", *c.PhotoURI)
	}
	if c.Notes != "" {
		fmt.Fprintf(out, "Notes:     %s\n", c.Notes)
	}
	if c.Archived {
		fmt.Fprintln(out, "Status:    archived")
	}

	if len(c.HealthLog) > 0 {
		fmt.Fprintf(out, "\nHealth log (%d):\n", len(c.HealthLog))
		for i := len(c.HealthLog) - 1; i >= 0; i-- {
			e := c.HealthLog[i]
			fmt.Fprintf(out, "  %s  %s\n", e.Date.In(loc).Format("02/01/2006 15:04"), e.Note)
		}
	}
	return nil
}

func runCreatureEdit(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	c, err := app.findCreature(ctx, args[0])
	if err != nil {
		return err
	}
	p, err := creaturePatch(cmd, app)
	if err != nil {
		return err
	}
	if p.Empty() {
		return clierr.New(clierr.InvalidInput, "nothing to change")
	}

	updated, err := app.Creatures.Update(ctx, c.ID, p)
	if err != nil {
		return err
	}
	if updated == nil {
		return notFound("creature", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated %s - ID: %s\n", updated.Name, shortID(updated.ID))
	return nil
}

func runCreatureArchive(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	c, err := app.findCreature(ctx, args[0])
	if err != nil {
		return err
	}
	if c.Archived {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already archived\n", c.Name)
		return nil
	}
	updated, err := app.Creatures.Archive(ctx, c.ID)
	if err != nil {
		return err
	}
	if updated == nil {
		return notFound("creature", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📦 Archived %s\n", updated.Name)
	return nil
}

func runCreatureRemove(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	c, err := app.findCreature(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := app.Creatures.Remove(ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", c.Name)
	return nil
}

func runCreatureLog(cmd *cobra.Command, args []string, app *App) error {
	ctx := cmd.Context()
	c, err := app.findCreature(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := app.Creatures.LogHealth(ctx, c.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if updated == nil {
		return notFound("creature", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📝 Logged for %s (%d entries)\n", updated.Name, len(updated.HealthLog))
	return nil
}
