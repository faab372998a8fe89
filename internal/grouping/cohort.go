package grouping

import (
	"fmt"
	"slices"

	"runcohorts/internal/analysis"
	"runcohorts/internal/quantity"
)

// StatItem is one labelled value in a stat section
type StatItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// StatSection is a titled group of stat items for display
type StatSection struct {
	Title string     `json:"title"`
	Items []StatItem `json:"items"`
}

// Cohort is a bucket of workouts sharing a near-equal value of one metric.
// Each pipeline stage returns a new Cohort value; Members is never modified
// after binning.
type Cohort struct {
	Key    string     `json:"key"`
	Center float64    `json:"center"`
	Metric MetricType `json:"metric"`
	Unit   string     `json:"unit"`
	Title  string     `json:"title"`
	Suffix string     `json:"suffix"`

	Members []Record `json:"members"`

	// Skipped counts workouts rejected by tolerance for this metric's run
	Skipped int `json:"skipped"`

	Rank              int     `json:"rank"`
	RankLabel         string  `json:"rank_label"`
	PercentageOfTotal float64 `json:"percentage_of_total"`

	TotalDistance  quantity.Quantity `json:"total_distance"`
	TotalDuration  quantity.Quantity `json:"total_duration"`
	TotalElevation quantity.Quantity `json:"total_elevation"`

	AveragePace     quantity.Quantity `json:"average_pace"`
	AverageDuration quantity.Quantity `json:"average_duration"`

	// Typical values are the most frequent rounded member values
	TypicalPace        quantity.Quantity  `json:"typical_pace"`
	TypicalDuration    quantity.Quantity  `json:"typical_duration"`
	TypicalDistance    quantity.Quantity  `json:"typical_distance"`
	TypicalElevation   quantity.Quantity  `json:"typical_elevation"`
	TypicalHumidity    *quantity.Quantity `json:"typical_humidity,omitempty"`
	TypicalTemperature *quantity.Quantity `json:"typical_temperature,omitempty"`

	Highlight         Record `json:"highlight"`
	Worst             Record `json:"worst"`
	MostRecent        Record `json:"most_recent"`
	Oldest            Record `json:"oldest"`
	GreatestElevation Record `json:"greatest_elevation"`
	LowestElevation   Record `json:"lowest_elevation"`

	// TotalVariation is the gap between Worst and Highlight on the metric's
	// comparison axis
	TotalVariation quantity.Quantity `json:"total_variation"`

	Consistency  analysis.ConsistencyResult `json:"consistency"`
	Distribution []float64                  `json:"distribution"`

	Stats      []StatSection `json:"stats"`
	Prediction *Prediction   `json:"prediction,omitempty"`
}

// Count returns the number of members
func (c Cohort) Count() int {
	return len(c.Members)
}

// newCohort seeds a cohort with its first accepted record, which also serves
// as placeholder highlight, worst, most recent and oldest member.
func newCohort(def Definition, params Parameters, key string, center float64, unit string, first Record) Cohort {
	return Cohort{
		Key:               key,
		Center:            center,
		Metric:            def.Type,
		Unit:              unit,
		Title:             def.CohortTitle(center, params.BucketWidth, unit),
		Suffix:            def.Suffix(unit),
		Members:           []Record{first},
		TotalDistance:     first.Distance,
		TotalDuration:     first.Duration,
		TotalElevation:    first.Elevation,
		Highlight:         first,
		Worst:             first,
		MostRecent:        first,
		Oldest:            first,
		GreatestElevation: first,
		LowestElevation:   first,
	}
}

// withMember returns a copy of c with r appended and running totals updated
func (c Cohort) withMember(r Record, metricValue quantity.Quantity) (Cohort, error) {
	if metricValue.Unit != c.Unit {
		return c, fmt.Errorf("workout %s: %w: %q vs %q", r.ID, quantity.ErrUnitMismatch, metricValue.Unit, c.Unit)
	}

	totalDistance, err := quantity.Sum([]quantity.Quantity{c.TotalDistance, r.Distance})
	if err != nil {
		return c, fmt.Errorf("workout %s distance: %w", r.ID, err)
	}
	totalDuration, err := quantity.Sum([]quantity.Quantity{c.TotalDuration, r.Duration})
	if err != nil {
		return c, fmt.Errorf("workout %s duration: %w", r.ID, err)
	}
	totalElevation, err := quantity.Sum([]quantity.Quantity{c.TotalElevation, r.Elevation})
	if err != nil {
		return c, fmt.Errorf("workout %s elevation: %w", r.ID, err)
	}

	next := c
	next.Members = append(slices.Clip(c.Members), r)
	next.TotalDistance = totalDistance
	next.TotalDuration = totalDuration
	next.TotalElevation = totalElevation
	return next, nil
}

// withSections returns a copy of c with sections appended
func (c Cohort) withSections(sections ...StatSection) Cohort {
	next := c
	next.Stats = append(slices.Clip(c.Stats), sections...)
	return next
}

// Section returns the first stat section with the given title
func (c Cohort) Section(title string) (StatSection, bool) {
	for _, s := range c.Stats {
		if s.Title == title {
			return s, true
		}
	}
	return StatSection{}, false
}
