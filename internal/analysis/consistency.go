package analysis

import "math"

// consistencyDecay controls how quickly the score falls as variation grows.
// CV 0.1 scores ~37, CV 0.05 scores ~61.
const consistencyDecay = 10.0

// ConsistencyResult summarizes how repeatable a set of observations is
type ConsistencyResult struct {
	Score                  int     `json:"score"` // 0-100
	Mean                   float64 `json:"mean"`
	Median                 float64 `json:"median"`
	StandardDeviation      float64 `json:"standard_deviation"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
}

// Consistency scores a list of observations from 0 to 100.
// No observations score 0 and a single observation scores 100.
func Consistency(values []float64) ConsistencyResult {
	result := ConsistencyResult{
		Mean:                   Mean(values),
		Median:                 Median(values),
		StandardDeviation:      StandardDeviation(values),
		CoefficientOfVariation: CoefficientOfVariation(values),
	}

	switch len(values) {
	case 0:
		result.Score = 0
	case 1:
		result.Score = 100
	default:
		score := 100 * math.Exp(-consistencyDecay*result.CoefficientOfVariation)
		result.Score = int(math.Round(Clamp(score, 0, 100)))
	}

	return result
}

// ConsistencyDescription returns a human-readable consistency assessment
func ConsistencyDescription(score int) string {
	switch {
	case score >= 80:
		return "Very consistent"
	case score >= 60:
		return "Consistent"
	case score >= 40:
		return "Somewhat consistent"
	case score >= 20:
		return "Variable"
	default:
		return "Highly variable"
	}
}
