package analysis

import "math"

// ConfidenceLevel is the discrete label for a 0-100 confidence score
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Confidence level thresholds. Downstream filtering depends on these values.
const (
	ConfidenceMediumThreshold = 40
	ConfidenceHighThreshold   = 70
)

// Confidence factor weights, summing to 1
const (
	weightDataPoints  = 0.30
	weightTimeSpan    = 0.20
	weightTrend       = 0.20
	weightConsistency = 0.30

	// Saturation scales: ~63% of the factor at these values
	dataPointScale = 5.0
	timeSpanScale  = 30.0 // days
)

// MaxWeeklyChange bounds how far a projection may move from the latest
// observation per week, in either direction.
const MaxWeeklyChange = 0.015

// ConfidenceBasis holds the inputs behind a confidence score
type ConfidenceBasis struct {
	DataPoints       int     `json:"data_points"`
	TimeSpanDays     float64 `json:"time_span_days"`
	TrendStrength    float64 `json:"trend_strength"`
	ConsistencyScore int     `json:"consistency_score"`
}

// CalculateConfidence combines the basis factors into a 0-100 score.
// Each factor is monotonic and saturates, so the score never exceeds 100.
func CalculateConfidence(basis ConfidenceBasis) (int, ConfidenceLevel) {
	points := 1 - math.Exp(-float64(basis.DataPoints)/dataPointScale)
	span := 1 - math.Exp(-math.Max(basis.TimeSpanDays, 0)/timeSpanScale)
	trend := Clamp(basis.TrendStrength, 0, 1)
	consistency := Clamp(float64(basis.ConsistencyScore)/100, 0, 1)

	score := 100 * (weightDataPoints*points +
		weightTimeSpan*span +
		weightTrend*trend +
		weightConsistency*consistency)

	confidence := int(math.Round(Clamp(score, 0, 100)))
	return confidence, LevelForConfidence(confidence)
}

// LevelForConfidence maps a score to low (<40), medium (40-69) or high (>=70)
func LevelForConfidence(confidence int) ConfidenceLevel {
	switch {
	case confidence >= ConfidenceHighThreshold:
		return ConfidenceHigh
	case confidence >= ConfidenceMediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// BoundProjection keeps a projected value within MaxWeeklyChange per week of
// latest. Improvement is floored at half of latest so long horizons stay positive.
func BoundProjection(projected, latest, weeks float64) float64 {
	if latest <= 0 {
		return math.Max(projected, 0)
	}
	weeks = math.Max(weeks, 0)

	lower := latest * math.Max(1-MaxWeeklyChange*weeks, 0.5)
	upper := latest * (1 + MaxWeeklyChange*weeks)
	return Clamp(projected, lower, upper)
}

// ImprovementPercentage returns the percent change from current to projected
// for a lower-is-better metric, rounded to 2 decimals. Positive means faster.
func ImprovementPercentage(current, projected float64) float64 {
	if current == 0 {
		return 0
	}
	return math.Round((current-projected)/current*10000) / 100
}
