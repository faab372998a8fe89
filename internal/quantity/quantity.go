// Package quantity provides unit-tagged numeric values and unit-checked arithmetic.
package quantity

import (
	"errors"
	"fmt"
	"math"
)

// Units used by workout records
const (
	Miles          = "mi"
	Kilometers     = "km"
	Seconds        = "s"
	SecondsPerMile = "s/mi"
	SecondsPerKm   = "s/km"
	Feet           = "ft"
	Meters         = "m"
	Fahrenheit     = "°F"
	Celsius        = "°C"
	Percent        = "%"
)

var (
	// ErrUnitMismatch is returned when a binary operation mixes units
	ErrUnitMismatch = errors.New("unit mismatch")

	// ErrInvalidValue is returned for NaN, infinite or negative magnitudes
	ErrInvalidValue = errors.New("invalid quantity value")

	// ErrNegativeDifference is returned when Difference would go below zero
	ErrNegativeDifference = errors.New("difference would be negative")

	// ErrEmpty is returned when aggregating an empty list
	ErrEmpty = errors.New("no quantities to aggregate")
)

// Quantity is a numeric value tagged with its unit
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// New creates a quantity from any finite value (temperatures may be negative)
func New(value float64, unit string) (Quantity, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Quantity{}, fmt.Errorf("%w: %v %s", ErrInvalidValue, value, unit)
	}
	return Quantity{Value: value, Unit: unit}, nil
}

// NewMagnitude creates a quantity for distances, durations and elevations,
// which must be finite and non-negative.
func NewMagnitude(value float64, unit string) (Quantity, error) {
	if value < 0 {
		return Quantity{}, fmt.Errorf("%w: negative magnitude %v %s", ErrInvalidValue, value, unit)
	}
	return New(value, unit)
}

// Must panics if err is non-nil. Intended for constants and tests.
func Must(q Quantity, err error) Quantity {
	if err != nil {
		panic(err)
	}
	return q
}

// String formats the quantity with two decimals
func (q Quantity) String() string {
	return fmt.Sprintf("%.2f %s", q.Value, q.Unit)
}

func checkUnits(a, b Quantity) error {
	if a.Unit != b.Unit {
		return fmt.Errorf("%w: %q vs %q", ErrUnitMismatch, a.Unit, b.Unit)
	}
	return nil
}

// Sum adds all quantities. All units must match.
func Sum(qs []Quantity) (Quantity, error) {
	if len(qs) == 0 {
		return Quantity{}, ErrEmpty
	}
	total := Quantity{Unit: qs[0].Unit}
	for _, q := range qs {
		if err := checkUnits(total, q); err != nil {
			return Quantity{}, err
		}
		total.Value += q.Value
	}
	return total, nil
}

// Average returns the arithmetic mean of the quantities
func Average(qs []Quantity) (Quantity, error) {
	total, err := Sum(qs)
	if err != nil {
		return Quantity{}, err
	}
	total.Value /= float64(len(qs))
	return total, nil
}

// Difference returns a - b. Callers must order the operands so the result is
// non-negative; use AbsoluteDifference when the order is not known.
func Difference(a, b Quantity) (Quantity, error) {
	if err := checkUnits(a, b); err != nil {
		return Quantity{}, err
	}
	if a.Value < b.Value {
		return Quantity{}, fmt.Errorf("%w: %v - %v", ErrNegativeDifference, a, b)
	}
	return Quantity{Value: a.Value - b.Value, Unit: a.Unit}, nil
}

// AbsoluteDifference returns |a - b|
func AbsoluteDifference(a, b Quantity) (Quantity, error) {
	if err := checkUnits(a, b); err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: math.Abs(a.Value - b.Value), Unit: a.Unit}, nil
}

// Percentage returns part as a percentage of whole, rounded to 2 decimals.
// A zero whole yields 0.
func Percentage(part, whole Quantity) (float64, error) {
	if err := checkUnits(part, whole); err != nil {
		return 0, err
	}
	return PercentageOf(part.Value, whole.Value), nil
}

// PercentageOf is Percentage for plain counts
func PercentageOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*10000) / 100
}
