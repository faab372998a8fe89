package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"runcohorts/internal/grouping"
	"runcohorts/internal/quantity"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	reportHeadStyle  = lipgloss.NewStyle().Bold(true)
	reportMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	reportLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Width(22)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeGroupsReport prints every cohort of a grouping run, most common first
func writeGroupsReport(w io.Writer, res *grouping.Result, detail bool) {
	def, _ := grouping.Lookup(res.Metric)
	fmt.Fprintln(w, reportTitleStyle.Render(fmt.Sprintf("%s cohorts", def.Title)))
	fmt.Fprintln(w, reportMutedStyle.Render(fmt.Sprintf("tolerance %s, bucket width %s, %d workouts considered, %d outside tolerance",
		quantity.TrimFloat(res.Parameters.Tolerance, 2),
		quantity.TrimFloat(res.Parameters.BucketWidth, 2),
		res.Considered, res.Skipped)))
	fmt.Fprintln(w)

	if len(res.Cohorts) == 0 {
		fmt.Fprintln(w, "No cohorts.")
		return
	}

	for _, c := range res.Cohorts {
		fmt.Fprintln(w, reportHeadStyle.Render(fmt.Sprintf("%s  [%s]  %s", c.Title, c.Key, c.RankLabel)))
		fmt.Fprintln(w, reportLine("Workouts", fmt.Sprintf("%d (%.1f%%)", c.Count(), c.PercentageOfTotal)))
		fmt.Fprintln(w, reportLine("Consistency", fmt.Sprintf("%d", c.Consistency.Score)))
		fmt.Fprintln(w, reportLine("Average Pace", quantity.Format(c.AveragePace)))
		fmt.Fprintln(w, reportLine("Best to Worst", quantity.Format(c.TotalVariation)))
		if c.Prediction != nil {
			fmt.Fprintln(w, reportLine("Prediction", c.Prediction.Summary()))
		}

		if detail {
			for _, s := range c.Stats {
				fmt.Fprintln(w, "  "+reportHeadStyle.Render(s.Title))
				for _, item := range s.Items {
					fmt.Fprintln(w, "  "+reportLine(item.Label, item.Value))
				}
			}
		}
		fmt.Fprintln(w)
	}
}

// writePredictionReport prints a forecast and its training suggestions
func writePredictionReport(w io.Writer, c grouping.Cohort, p *grouping.Prediction) {
	fmt.Fprintln(w, reportTitleStyle.Render(fmt.Sprintf("%s: %s week forecast", c.Title, quantity.TrimFloat(p.WeeksAhead, 1))))
	fmt.Fprintln(w, reportLine("Target Date", p.TargetDate.Format("Jan 02, 2006")))
	fmt.Fprintln(w, reportLine("Pace", quantity.Format(p.PredictedPace)))
	fmt.Fprintln(w, reportLine("Time", quantity.Format(p.PredictedDuration)))
	if p.PredictedDistance != nil {
		fmt.Fprintln(w, reportLine("Distance", quantity.Format(*p.PredictedDistance)))
	}
	fmt.Fprintln(w, reportLine("Momentum", string(p.Momentum)))
	fmt.Fprintln(w, reportLine("Improvement", fmt.Sprintf("%+.2f%%", p.ImprovementPercentage)))
	fmt.Fprintln(w, reportLine("Confidence", fmt.Sprintf("%d (%s)", p.Confidence, p.ConfidenceLevel)))
	fmt.Fprintln(w, reportMutedStyle.Render(fmt.Sprintf("based on %d workouts over %.0f days",
		p.Basis.DataPoints, p.Basis.TimeSpanDays)))

	if len(p.Recommendations) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, reportHeadStyle.Render("Training Recommendations"))
	for _, r := range p.Recommendations {
		parts := []string{fmt.Sprintf("%dx/week", r.WeeklyFrequency), string(r.Intensity)}
		if r.TargetPace != nil {
			parts = append(parts, quantity.Format(*r.TargetPace))
		}
		if r.TargetDuration != nil {
			parts = append(parts, quantity.Format(*r.TargetDuration))
		}
		fmt.Fprintln(w, reportLine(r.WorkoutType, strings.Join(parts, ", ")))
		fmt.Fprintln(w, "  "+reportMutedStyle.Render(r.Rationale))
	}
}

func reportLine(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left, reportLabelStyle.Render(label), value)
}
