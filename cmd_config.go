package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"runcohorts/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write an example config file if none exists",
		Long: `Write an example config.toml holding every metric's default tolerance and
bucket width. An existing file is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateExample(); err != nil {
				return fmt.Errorf("creating example config: %w", err)
			}
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Add your Strava API credentials from https://www.strava.com/settings/api")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the config file and list every problem",
		Args:  cobra.NoArgs,
		RunE:  configCheckE,
	})

	return cmd
}

func configCheckE(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	problems := multierr.Errors(multierr.Combine(cfg.Validate(), cfg.ValidateStrava()))
	if len(problems) == 0 {
		fmt.Fprintln(out, "Config OK")
		return nil
	}

	for _, p := range problems {
		fmt.Fprintf(out, "  - %v\n", p)
	}
	return fmt.Errorf("config has %d problem(s)", len(problems))
}
