package grouping

import "errors"

var (
	// ErrInvalidConfiguration is returned before any binning when tolerance or
	// bucket width are unusable
	ErrInvalidConfiguration = errors.New("invalid grouping configuration")

	// ErrInsufficientData is returned when a prediction needs more members.
	// Callers should treat it as "no prediction available".
	ErrInsufficientData = errors.New("insufficient data for prediction")

	// ErrCalculatorFailure wraps a per-metric stat calculator failure
	ErrCalculatorFailure = errors.New("stat calculator failed")

	// ErrUnknownMetric is returned for metric names with no definition
	ErrUnknownMetric = errors.New("unknown metric")
)
