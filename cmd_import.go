package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"runcohorts/internal/service"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import workouts from a JSON file ('-' for stdin)",
		Long: `Import workouts from a JSON array. Each entry has an id, start time and SI
measurements:

  [{"id": "w1", "start": "2024-07-01T06:00:00Z", "distance_m": 8000,
    "duration_s": 2400, "elevation_gain_m": 12, "temperature_c": 24,
    "humidity_pct": 88}]

Imported workouts with the same id replace earlier ones. This is the only way
to record humidity, which Strava does not provide.`,
		Args: cobra.ExactArgs(1),
		RunE: importE,
	}
}

func importE(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	stored, err := service.ImportWorkouts(r, e.db)
	rejected := multierr.Errors(err)
	for _, reason := range rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "  skipped: %v\n", reason)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d workouts imported\n", stored)

	if stored == 0 && err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID...",
		Short: "Delete stored workouts by id",
		Long: `Delete workouts from the local database. A synced workout comes back on
the next full sync only if the sync state is reset, so this is mostly for
cleaning up bad imports.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			var errs error
			for _, id := range args {
				if err := e.db.DeleteWorkout(id); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("workout %s: %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			}
			return errs
		},
	}
}
