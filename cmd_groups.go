package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"runcohorts/internal/grouping"
)

func metricNames() string {
	names := make([]string, len(grouping.AllMetrics))
	for i, m := range grouping.AllMetrics {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

type groupsOptions struct {
	metric      string
	all         bool
	tolerance   float64
	bucketWidth float64
	jsonOutput  bool
	detail      bool
}

func newGroupsCommand() *cobra.Command {
	opts := &groupsOptions{}

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Group workouts into cohorts by one metric",
		Long: `Bucket stored workouts by a metric and list the cohorts, most common first.

Each workout joins the bucket whose center is the nearest multiple of the
bucket width, provided it lies within the tolerance of that center. Workouts
outside every bucket's tolerance are counted but not grouped.`,
		Example: `  runcohorts groups --metric distance
  runcohorts groups --metric pace --tolerance 5 --bucket-width 10 --detail
  runcohorts groups --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return groupsE(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.metric, "metric", "m", string(grouping.MetricPace), "Metric to group by: "+metricNames())
	cmd.Flags().BoolVar(&opts.all, "all", false, "Group by every metric")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "Override the configured tolerance")
	cmd.Flags().Float64Var(&opts.bucketWidth, "bucket-width", 0, "Override the configured bucket width")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&opts.detail, "detail", false, "Include every stat section")
	cmd.MarkFlagsMutuallyExclusive("all", "metric")
	cmd.MarkFlagsMutuallyExclusive("all", "tolerance")
	cmd.MarkFlagsMutuallyExclusive("all", "bucket-width")

	return cmd
}

func groupsE(cmd *cobra.Command, opts *groupsOptions) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	svc := e.cohortService()
	out := cmd.OutOrStdout()

	if opts.all {
		results, err := svc.AllGroups(cmd.Context())
		if err != nil {
			return err
		}
		if opts.jsonOutput {
			return writeJSON(out, results)
		}
		for _, res := range results {
			writeGroupsReport(out, res, opts.detail)
		}
		return nil
	}

	metric, err := grouping.ParseMetric(opts.metric)
	if err != nil {
		return fmt.Errorf("%w (choose one of: %s)", err, metricNames())
	}

	params, err := e.cfg.Parameters(metric)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tolerance") {
		params.Tolerance = opts.tolerance
	}
	if cmd.Flags().Changed("bucket-width") {
		params.BucketWidth = opts.bucketWidth
	}

	res, err := svc.GroupsWith(cmd.Context(), metric, params)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(out, res)
	}
	writeGroupsReport(out, res, opts.detail)
	return nil
}
