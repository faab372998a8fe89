package grouping

import (
	"errors"
	"fmt"
	"math"
	"time"

	"runcohorts/internal/analysis"
	"runcohorts/internal/quantity"
)

// calcEnv carries run-wide inputs to the stat calculators
type calcEnv struct {
	def        Definition
	considered int
	skipped    int
	today      time.Time
	weeksAhead float64
}

// Calculator is a per-metric stage that takes a cohort with base statistics
// and returns it with the metric's highlight, worst, variation and sections.
type Calculator func(c Cohort, env calcEnv) (Cohort, error)

// calculate runs the base stage, then the metric's calculator. A failing
// metric calculator is logged and the cohort keeps its base statistics.
func (e *Engine) calculate(c Cohort, env calcEnv) Cohort {
	base, err := baseCalculator(c, env)
	if err != nil {
		e.logger.Warnw("base statistics failed",
			"metric", c.Metric,
			"cohort", c.Key,
			"error", err,
		)
		return c
	}

	out := base
	if calc, ok := e.calculators[c.Metric]; ok {
		out, err = runCalculator(calc, base, env)
		if err != nil {
			e.logger.Warnw("stat calculator failed, keeping base statistics",
				"metric", c.Metric,
				"cohort", c.Key,
				"members", c.Count(),
				"error", err,
			)
			out = base
			out.Prediction = nil
		}
	}

	if e.predictAll && out.Prediction == nil && out.Count() >= 2 {
		prediction, err := Predict(out, env.weeksAhead, env.today)
		if err != nil {
			e.logger.Warnw("prediction failed",
				"metric", c.Metric,
				"cohort", c.Key,
				"error", err,
			)
		} else {
			out.Prediction = prediction
		}
	}

	return out
}

// runCalculator converts errors and panics into ErrCalculatorFailure
func runCalculator(calc Calculator, c Cohort, env calcEnv) (out Cohort, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = c
			err = fmt.Errorf("%w: panic: %v", ErrCalculatorFailure, r)
		}
	}()

	out, err = calc(c, env)
	if err != nil && !errors.Is(err, ErrCalculatorFailure) {
		err = fmt.Errorf("%w: %w", ErrCalculatorFailure, err)
	}
	return out, err
}

// baseCalculator fills the statistics every metric shares: title, share of
// workouts, typical and average values, recency and elevation extremes,
// consistency and the "Most Common" section.
func baseCalculator(c Cohort, env calcEnv) (Cohort, error) {
	out := c
	out.Stats = nil
	out.Skipped = env.skipped
	out.PercentageOfTotal = quantity.PercentageOf(float64(c.Count()), float64(env.considered))

	paces := collect(c.Members, func(r Record) quantity.Quantity { return r.Pace })
	durations := collect(c.Members, func(r Record) quantity.Quantity { return r.Duration })
	distances := collect(c.Members, func(r Record) quantity.Quantity { return r.Distance })
	elevations := collect(c.Members, func(r Record) quantity.Quantity { return r.Elevation })

	var err error
	if out.AveragePace, err = quantity.Average(paces); err != nil {
		return c, fmt.Errorf("average pace: %w", err)
	}
	if out.AverageDuration, err = quantity.Average(durations); err != nil {
		return c, fmt.Errorf("average duration: %w", err)
	}

	out.TypicalPace = typical(paces, definitions[MetricPace].TypicalGranularity)
	out.TypicalDuration = typical(durations, definitions[MetricDuration].TypicalGranularity)
	out.TypicalDistance = typical(distances, definitions[MetricDistance].TypicalGranularity)
	out.TypicalElevation = typical(elevations, definitions[MetricElevation].TypicalGranularity)
	out.TypicalHumidity = typicalOptional(c.Members, func(r Record) *quantity.Quantity { return r.Humidity },
		definitions[MetricHumidity].TypicalGranularity)
	out.TypicalTemperature = typicalOptional(c.Members, func(r Record) *quantity.Quantity { return r.Temperature },
		definitions[MetricTemperature].TypicalGranularity)

	out.MostRecent = pick(c.Members, func(a, b Record) bool { return a.End.After(b.End) })
	out.Oldest = pick(c.Members, func(a, b Record) bool { return a.End.Before(b.End) })
	out.GreatestElevation = pick(c.Members, func(a, b Record) bool { return a.Elevation.Value > b.Elevation.Value })
	out.LowestElevation = pick(c.Members, func(a, b Record) bool { return a.Elevation.Value < b.Elevation.Value })

	axis := definitions[env.def.ConsistencyAxis]
	out.Distribution = make([]float64, len(c.Members))
	for i, r := range c.Members {
		out.Distribution[i] = axis.Extract(r).Value
	}
	out.Consistency = analysis.Consistency(out.Distribution)

	return out.withSections(mostCommonSection(out)), nil
}

func mostCommonSection(c Cohort) StatSection {
	items := []StatItem{
		{Label: "Pace", Value: quantity.Format(c.TypicalPace)},
		{Label: "Time", Value: quantity.Format(c.TypicalDuration)},
		{Label: "Distance", Value: quantity.Format(c.TypicalDistance)},
		{Label: "Elevation", Value: quantity.Format(c.TypicalElevation)},
	}
	if c.TypicalHumidity != nil {
		items = append(items, StatItem{Label: "Humidity", Value: quantity.Format(*c.TypicalHumidity)})
	}
	if c.TypicalTemperature != nil {
		items = append(items, StatItem{Label: "Temperature", Value: quantity.Format(*c.TypicalTemperature)})
	}
	return StatSection{Title: "Most Common", Items: items}
}

func collect(members []Record, get func(Record) quantity.Quantity) []quantity.Quantity {
	qs := make([]quantity.Quantity, len(members))
	for i, r := range members {
		qs[i] = get(r)
	}
	return qs
}

// pick returns the first member for which better holds against every other
func pick(members []Record, better func(a, b Record) bool) Record {
	best := members[0]
	for _, r := range members[1:] {
		if better(r, best) {
			best = r
		}
	}
	return best
}

// typical returns the most frequent value after rounding to granularity.
// Ties resolve to the lower value.
func typical(qs []quantity.Quantity, granularity float64) quantity.Quantity {
	if len(qs) == 0 {
		return quantity.Quantity{}
	}
	values := make([]float64, len(qs))
	for i, q := range qs {
		values[i] = q.Value
	}
	return quantity.Quantity{Value: modalValue(values, granularity), Unit: qs[0].Unit}
}

func typicalOptional(members []Record, get func(Record) *quantity.Quantity, granularity float64) *quantity.Quantity {
	var qs []quantity.Quantity
	for _, r := range members {
		if q := get(r); q != nil {
			qs = append(qs, *q)
		}
	}
	if len(qs) == 0 {
		return nil
	}
	t := typical(qs, granularity)
	return &t
}

func modalValue(values []float64, granularity float64) float64 {
	counts := make(map[float64]int)
	for _, v := range values {
		counts[roundTo(v, granularity)]++
	}

	var best float64
	bestCount := 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

func roundTo(v, granularity float64) float64 {
	if granularity <= 0 {
		return v
	}
	return math.Round(math.Round(v/granularity)*granularity*1e6) / 1e6
}
