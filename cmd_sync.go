package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"runcohorts/internal/log"
	"runcohorts/internal/service"
	"runcohorts/internal/strava"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch new runs, walks and hikes from Strava",
		Long: `Fetch every activity added since the last sync and store the ones whose
type is listed in [sync] activity_types. Activities without distance or
moving time are skipped.`,
		Args: cobra.NoArgs,
		RunE: syncE,
	}
}

func syncE(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ts, err := e.tokenSource(cmd.Context())
	if err != nil {
		return err
	}

	client := strava.NewClient(ts)
	svc := service.NewSyncService(client, e.db, e.cfg.Sync.ActivityTypes, e.cfg.Sync.PerPage)

	progress := make(chan service.SyncProgress)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range progress {
			fmt.Fprintf(out, "  page %d: %d fetched, %d stored\n", p.Page, p.Fetched, p.Stored)
		}
	}()

	fmt.Fprintln(out, "Syncing with Strava...")
	result, err := svc.SyncWorkouts(cmd.Context(), progress)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	for _, err := range result.Errors {
		log.Warnf("sync: %v", err)
	}

	short, daily := client.RateLimitStatus()
	fmt.Fprintf(out, "\n%d workouts synced, %d other activities ignored\n", result.WorkoutsStored, result.Skipped)
	fmt.Fprintf(out, "API requests left: %d (15min), %d (daily)\n", short, daily)
	return nil
}
