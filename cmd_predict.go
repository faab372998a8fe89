package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"runcohorts/internal/grouping"
)

type predictOptions struct {
	metric     string
	key        string
	weeks      float64
	jsonOutput bool
}

func newPredictCommand() *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast one cohort's performance",
		Long: `Fit a trend through a cohort's workouts and project it forward. Use the key
shown in brackets by 'runcohorts groups'. Pace, elevation and weather cohorts
forecast pace; distance and duration cohorts forecast finishing time.`,
		Example: `  runcohorts predict --metric distance --key 5
  runcohorts predict --metric pace --key 480 --weeks 6 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return predictE(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.metric, "metric", "m", string(grouping.MetricPace), "Metric the cohort was grouped by")
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "Cohort key (required)")
	cmd.Flags().Float64VarP(&opts.weeks, "weeks", "w", 0, "Weeks ahead (default from config)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func predictE(cmd *cobra.Command, opts *predictOptions) error {
	metric, err := grouping.ParseMetric(opts.metric)
	if err != nil {
		return fmt.Errorf("%w (choose one of: %s)", err, metricNames())
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	weeks := e.cfg.Prediction.WeeksAhead
	if cmd.Flags().Changed("weeks") {
		weeks = opts.weeks
	}

	svc := e.cohortService()
	c, err := svc.Cohort(cmd.Context(), metric, opts.key)
	if err != nil {
		return err
	}

	p, err := svc.PredictCohort(c, weeks)
	if errors.Is(err, grouping.ErrInsufficientData) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s has %d workout(s); a forecast needs at least 2.\n", c.Title, c.Count())
		return nil
	}
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), p)
	}
	writePredictionReport(cmd.OutOrStdout(), c, p)
	return nil
}
