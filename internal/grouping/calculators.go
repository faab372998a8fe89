package grouping

import (
	"fmt"
	"strconv"

	"runcohorts/internal/quantity"
)

// standardCalculators maps each metric to the calculator that picks its
// highlight and worst members and adds its stat sections.
func standardCalculators() map[MetricType]Calculator {
	return map[MetricType]Calculator{
		MetricDistance:    distanceCalculator,
		MetricPace:        paceCalculator,
		MetricDuration:    durationCalculator,
		MetricElevation:   elevationCalculator,
		MetricTemperature: conditionsCalculator,
		MetricHumidity:    conditionsCalculator,
	}
}

func fasterPace(a, b Record) bool { return a.Pace.Value < b.Pace.Value }
func slowerPace(a, b Record) bool { return a.Pace.Value > b.Pace.Value }
func furtherDistance(a, b Record) bool { return a.Distance.Value > b.Distance.Value }
func shorterDistance(a, b Record) bool { return a.Distance.Value < b.Distance.Value }
func higherClimb(a, b Record) bool { return a.Elevation.Value > b.Elevation.Value }
func lowerClimb(a, b Record) bool { return a.Elevation.Value < b.Elevation.Value }

// distanceCalculator: fastest and slowest runs over the same distance.
// Variation is the time gap between them.
func distanceCalculator(c Cohort, _ calcEnv) (Cohort, error) {
	out := c
	out.Highlight = pick(c.Members, fasterPace)
	out.Worst = pick(c.Members, slowerPace)

	variation, err := quantity.AbsoluteDifference(out.Worst.Duration, out.Highlight.Duration)
	if err != nil {
		return c, fmt.Errorf("distance variation: %w", err)
	}
	out.TotalVariation = variation

	return out.withSections(
		recordSection("Fastest", out.Highlight),
		recordSection("Slowest", out.Worst),
		recordSection("Most Recent", out.MostRecent),
		variationSection("Time Spread", variation),
	), nil
}

// paceCalculator: fastest and slowest runs at this pace. Variation is the
// distance gap between them.
func paceCalculator(c Cohort, _ calcEnv) (Cohort, error) {
	out := c
	out.Highlight = pick(c.Members, fasterPace)
	out.Worst = pick(c.Members, slowerPace)

	variation, err := quantity.AbsoluteDifference(out.Highlight.Distance, out.Worst.Distance)
	if err != nil {
		return c, fmt.Errorf("pace variation: %w", err)
	}
	out.TotalVariation = variation

	return out.withSections(
		recordSection("Fastest", out.Highlight),
		recordSection("Slowest", out.Worst),
		recordSection("Furthest", pick(c.Members, furtherDistance)),
		recordSection("Most Recent", out.MostRecent),
		variationSection("Distance Spread", variation),
	), nil
}

// durationCalculator: furthest and shortest runs for the time spent.
func durationCalculator(c Cohort, _ calcEnv) (Cohort, error) {
	out := c
	out.Highlight = pick(c.Members, furtherDistance)
	out.Worst = pick(c.Members, shorterDistance)

	variation, err := quantity.Difference(out.Highlight.Distance, out.Worst.Distance)
	if err != nil {
		return c, fmt.Errorf("duration variation: %w", err)
	}
	out.TotalVariation = variation

	return out.withSections(
		recordSection("Furthest", out.Highlight),
		recordSection("Shortest", out.Worst),
		recordSection("Highest Elevation", out.GreatestElevation),
		recordSection("Lowest Elevation", out.LowestElevation),
		recordSection("Most Recent", out.MostRecent),
	), nil
}

// elevationCalculator: biggest and smallest climbs, plus a forecast and
// training recommendations once the cohort has two or more members.
func elevationCalculator(c Cohort, env calcEnv) (Cohort, error) {
	out := c
	out.Highlight = pick(c.Members, higherClimb)
	out.Worst = pick(c.Members, lowerClimb)

	variation, err := quantity.Difference(out.Highlight.Elevation, out.Worst.Elevation)
	if err != nil {
		return c, fmt.Errorf("elevation variation: %w", err)
	}
	out.TotalVariation = variation

	out = out.withSections(
		recordSection("Most Climb", out.Highlight),
		recordSection("Least Climb", out.Worst),
		recordSection("Fastest", pick(c.Members, fasterPace)),
		recordSection("Most Recent", out.MostRecent),
	)

	if c.Count() < 2 {
		return out, nil
	}

	prediction, err := Predict(out, env.weeksAhead, env.today)
	if err != nil {
		return c, fmt.Errorf("elevation prediction: %w", err)
	}
	out.Prediction = prediction

	return out.withSections(
		predictionSection(prediction),
		recommendationSection(prediction.Recommendations),
	), nil
}

// conditionsCalculator handles temperature and humidity cohorts: how fast
// you run in these conditions.
func conditionsCalculator(c Cohort, _ calcEnv) (Cohort, error) {
	out := c
	out.Highlight = pick(c.Members, fasterPace)
	out.Worst = pick(c.Members, slowerPace)

	variation, err := quantity.AbsoluteDifference(out.Worst.Duration, out.Highlight.Duration)
	if err != nil {
		return c, fmt.Errorf("%s variation: %w", c.Metric, err)
	}
	out.TotalVariation = variation

	return out.withSections(
		recordSection("Fastest", out.Highlight),
		recordSection("Slowest", out.Worst),
		recordSection("Most Recent", out.MostRecent),
		cumulativeSection(out),
	), nil
}

func recordSection(title string, r Record) StatSection {
	items := []StatItem{
		{Label: "Date", Value: r.End.Format("Jan 02, 2006")},
		{Label: "Pace", Value: quantity.Format(r.Pace)},
		{Label: "Time", Value: quantity.Format(r.Duration)},
		{Label: "Distance", Value: quantity.Format(r.Distance)},
		{Label: "Elevation", Value: quantity.Format(r.Elevation)},
	}
	if r.Temperature != nil {
		items = append(items, StatItem{Label: "Temperature", Value: quantity.Format(*r.Temperature)})
	}
	if r.Humidity != nil {
		items = append(items, StatItem{Label: "Humidity", Value: quantity.Format(*r.Humidity)})
	}
	return StatSection{Title: title, Items: items}
}

func variationSection(title string, variation quantity.Quantity) StatSection {
	return StatSection{Title: title, Items: []StatItem{
		{Label: "Best to Worst", Value: quantity.Format(variation)},
	}}
}

func cumulativeSection(c Cohort) StatSection {
	return StatSection{Title: "Cumulative", Items: []StatItem{
		{Label: "Workouts", Value: strconv.Itoa(c.Count())},
		{Label: "Distance", Value: quantity.Format(c.TotalDistance)},
		{Label: "Time", Value: quantity.Format(c.TotalDuration)},
		{Label: "Elevation", Value: quantity.Format(c.TotalElevation)},
	}}
}
