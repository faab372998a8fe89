package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Momentum describes the direction a performance series is heading
type Momentum string

const (
	MomentumImproving  Momentum = "improving"
	MomentumPlateauing Momentum = "plateauing"
	MomentumDeclining  Momentum = "declining"
)

// MomentumNoiseThreshold is the weekly relative change (as a fraction of the
// series mean) below which a trend is treated as flat.
const MomentumNoiseThreshold = 0.005

// Trend is a least-squares line fitted over (day offset, value) pairs
type Trend struct {
	Slope     float64 // value change per day
	Intercept float64
	Strength  float64 // |r|, 0-1
	Points    int
}

// FitTrend fits y = Intercept + Slope*x. Degenerate inputs (fewer than two
// points, or every x identical) produce a flat line through the mean.
func FitTrend(xs, ys []float64) Trend {
	trend := Trend{Points: len(ys), Intercept: Mean(ys)}
	if len(xs) != len(ys) || len(xs) < 2 {
		return trend
	}
	if StandardDeviation(xs) == 0 {
		return trend
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	trend.Intercept = alpha
	trend.Slope = beta

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		r = 0
	}
	trend.Strength = Clamp(math.Abs(r), 0, 1)

	return trend
}

// At returns the fitted value at x
func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// WeeklyChange returns the fitted weekly change relative to base
func (t Trend) WeeklyChange(base float64) float64 {
	if base == 0 {
		return 0
	}
	return t.Slope * 7 / base
}

// ClassifyMomentum classifies a trend for a metric where lower values are
// better (pace, duration). base is usually the series mean.
func ClassifyMomentum(t Trend, base float64) Momentum {
	weekly := t.WeeklyChange(base)
	switch {
	case weekly < -MomentumNoiseThreshold:
		return MomentumImproving
	case weekly > MomentumNoiseThreshold:
		return MomentumDeclining
	default:
		return MomentumPlateauing
	}
}
