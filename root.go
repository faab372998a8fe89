package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"runcohorts/internal/log"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runcohorts",
		Short: "Group your workouts into cohorts and forecast each one",
		Long: `runcohorts groups your running history into cohorts of similar workouts
(same distance, pace, duration, climb, temperature or humidity), scores how
consistent each cohort is and forecasts where its trend is heading.

Workouts come from Strava (runcohorts login, runcohorts sync) or from a JSON
export (runcohorts import).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debug := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return log.Init(*debug)
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		log.Sync()
	}

	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newImportCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newGroupsCommand())
	cmd.AddCommand(newPredictCommand())
	cmd.AddCommand(newBrowseCommand(debug))

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}
