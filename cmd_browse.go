package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"runcohorts/internal/log"
	"runcohorts/internal/service"
	"runcohorts/internal/strava"
	"runcohorts/internal/tui"
)

func newBrowseCommand(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse cohorts in an interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			// Log lines would tear the alternate screen
			if !*debug {
				log.SetLogger(zap.NewNop().Sugar())
			}

			var (
				syncer tui.Syncer
				limits tui.RateLimits
			)
			ts, err := e.tokenSource(cmd.Context())
			switch {
			case err == nil:
				client := strava.NewClient(ts)
				syncer = service.NewSyncService(client, e.db, e.cfg.Sync.ActivityTypes, e.cfg.Sync.PerPage)
				limits = client
			case errors.Is(err, errNotLoggedIn):
			default:
				log.Debugf("browsing offline: %v", err)
			}

			app := tui.NewApp(e.cohortService(), syncer, limits)
			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running TUI: %w", err)
			}
			return nil
		},
	}
}
