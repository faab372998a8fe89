package grouping

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"runcohorts/internal/analysis"
	"runcohorts/internal/quantity"
)

// Prediction is a forecast of a cohort's performance at TargetDate
type Prediction struct {
	TargetDate time.Time `json:"target_date"`
	WeeksAhead float64   `json:"weeks_ahead"`

	// Axis is the metric the trend was fitted over (pace or duration)
	Axis MetricType `json:"axis"`

	PredictedPace     quantity.Quantity  `json:"predicted_pace"`
	PredictedDuration quantity.Quantity  `json:"predicted_duration"`
	PredictedDistance *quantity.Quantity `json:"predicted_distance,omitempty"`

	Confidence      int                      `json:"confidence"`
	ConfidenceLevel analysis.ConfidenceLevel `json:"confidence_level"`

	// ImprovementPercentage is positive when the projection is faster than
	// the most recent workout
	ImprovementPercentage float64 `json:"improvement_percentage"`

	Momentum   analysis.Momentum `json:"momentum"`
	Volatility float64           `json:"volatility"`
	Slope      float64           `json:"slope_per_day"`

	Basis           analysis.ConfidenceBasis `json:"basis"`
	Recommendations []Recommendation         `json:"recommendations"`
}

// predictionAxis returns the series a metric's cohorts are forecast on
func predictionAxis(metric MetricType) MetricType {
	switch metric {
	case MetricDistance, MetricDuration:
		return MetricDuration
	default:
		return MetricPace
	}
}

// Predict fits a linear trend through the cohort's members ordered by date
// and projects it weeksAhead weeks past now. The result depends only on the
// members, weeksAhead and the calendar day of now.
func Predict(c Cohort, weeksAhead float64, now time.Time) (*Prediction, error) {
	if c.Count() < 2 {
		return nil, fmt.Errorf("%w: cohort %q has %d workouts, need at least 2",
			ErrInsufficientData, c.Key, c.Count())
	}
	if err := validateWeeksAhead(weeksAhead); err != nil {
		return nil, err
	}

	members := chronological(c.Members)

	axis := predictionAxis(c.Metric)
	extract := definitions[axis].Extract

	first := members[0].End
	xs := make([]float64, len(members))
	ys := make([]float64, len(members))
	distances := make([]float64, len(members))
	durations := make([]float64, len(members))
	for i, r := range members {
		xs[i] = daysBetween(first, r.End)
		ys[i] = extract(r).Value
		distances[i] = r.Distance.Value
		durations[i] = r.Duration.Value
	}

	trend := analysis.FitTrend(xs, ys)
	mean := analysis.Mean(ys)
	latest := ys[len(ys)-1]

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	target := today.AddDate(0, 0, int(math.Round(weeksAhead*7)))

	projected := analysis.BoundProjection(trend.At(daysBetween(first, target)), latest, weeksAhead)

	basis := analysis.ConfidenceBasis{
		DataPoints:       len(members),
		TimeSpanDays:     xs[len(xs)-1],
		TrendStrength:    trend.Strength,
		ConsistencyScore: c.Consistency.Score,
	}
	confidence, level := analysis.CalculateConfidence(basis)

	p := &Prediction{
		TargetDate:            target,
		WeeksAhead:            weeksAhead,
		Axis:                  axis,
		Confidence:            confidence,
		ConfidenceLevel:       level,
		ImprovementPercentage: analysis.ImprovementPercentage(latest, projected),
		Momentum:              analysis.ClassifyMomentum(trend, mean),
		Volatility:            analysis.CoefficientOfVariation(ys),
		Slope:                 trend.Slope,
		Basis:                 basis,
	}

	paceUnit := members[0].Pace.Unit
	meanDistance := analysis.Mean(distances)

	var latestPace float64
	switch axis {
	case MetricDuration:
		p.PredictedDuration = quantity.Quantity{Value: projected, Unit: quantity.Seconds}
		p.PredictedPace = quantity.Quantity{Value: safeDiv(projected, meanDistance), Unit: paceUnit}
		latestPace = members[len(members)-1].Pace.Value
	default:
		p.PredictedPace = quantity.Quantity{Value: projected, Unit: paceUnit}
		p.PredictedDuration = quantity.Quantity{Value: projected * meanDistance, Unit: quantity.Seconds}
		latestPace = latest
	}

	if c.Metric == MetricDistance || c.Metric == MetricDuration {
		d := quantity.Quantity{Value: meanDistance, Unit: members[0].Distance.Unit}
		p.PredictedDistance = &d
	}

	p.Recommendations = recommend(p.Momentum, trainingBaseline{
		projectedPace: p.PredictedPace.Value,
		latestPace:    latestPace,
		paceUnit:      paceUnit,
		typicalTime:   analysis.Mean(durations),
		improvement:   p.ImprovementPercentage,
	})

	return p, nil
}

// Summary is a one-line description of the prediction
func (p *Prediction) Summary() string {
	return fmt.Sprintf("%s by %s, %s (%s confidence %d)",
		quantity.Format(p.PredictedPace),
		p.TargetDate.Format("Jan 02"),
		p.Momentum,
		p.ConfidenceLevel,
		p.Confidence,
	)
}

// Series returns the metric a cohort is forecast on and the members' values
// on it, oldest first
func (c Cohort) Series() (MetricType, []float64) {
	axis := predictionAxis(c.Metric)
	extract := definitions[axis].Extract

	members := chronological(c.Members)
	values := make([]float64, len(members))
	for i, r := range members {
		values[i] = extract(r).Value
	}
	return axis, values
}

// chronological returns a copy of members ordered by end time, ties by ID
func chronological(members []Record) []Record {
	out := slices.Clone(members)
	slices.SortStableFunc(out, func(a, b Record) int {
		if n := a.End.Compare(b.End); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func predictionSection(p *Prediction) StatSection {
	items := []StatItem{
		{Label: "Target Date", Value: p.TargetDate.Format("Jan 02, 2006")},
		{Label: "Pace", Value: quantity.Format(p.PredictedPace)},
		{Label: "Time", Value: quantity.Format(p.PredictedDuration)},
	}
	if p.PredictedDistance != nil {
		items = append(items, StatItem{Label: "Distance", Value: quantity.Format(*p.PredictedDistance)})
	}
	items = append(items,
		StatItem{Label: "Momentum", Value: string(p.Momentum)},
		StatItem{Label: "Improvement", Value: fmt.Sprintf("%+.2f%%", p.ImprovementPercentage)},
		StatItem{Label: "Confidence", Value: fmt.Sprintf("%d (%s)", p.Confidence, p.ConfidenceLevel)},
	)
	return StatSection{Title: "Prediction", Items: items}
}
