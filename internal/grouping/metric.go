package grouping

import (
	"fmt"
	"math"

	"runcohorts/internal/quantity"
)

// MetricType identifies what a cohort groups by
type MetricType string

const (
	MetricDistance    MetricType = "distance"
	MetricPace        MetricType = "pace"
	MetricDuration    MetricType = "duration"
	MetricElevation   MetricType = "elevation"
	MetricTemperature MetricType = "temperature"
	MetricHumidity    MetricType = "humidity"
)

// AllMetrics lists every supported metric in display order
var AllMetrics = []MetricType{
	MetricDistance,
	MetricPace,
	MetricDuration,
	MetricElevation,
	MetricTemperature,
	MetricHumidity,
}

// Definition describes how to bucket workouts by one metric
type Definition struct {
	Type  MetricType
	Title string // "Distance", "Pace", ...

	// Extract returns the metric's value for a record
	Extract func(Record) quantity.Quantity

	// Include filters records before binning. Nil includes everything.
	Include func(Record) bool

	DefaultTolerance   float64
	DefaultBucketWidth float64

	// Range buckets display as "lo–hi", point buckets as a single value
	Range bool

	// ConsistencyAxis is the metric whose variation is scored
	ConsistencyAxis MetricType

	// TypicalGranularity is the rounding step used for modal values
	TypicalGranularity float64

	formatValue func(v float64, unit string) string
	phrase      string
}

// DefaultParameters returns the metric's default tolerance and bucket width
func (d Definition) DefaultParameters() Parameters {
	return Parameters{Tolerance: d.DefaultTolerance, BucketWidth: d.DefaultBucketWidth}
}

// Label formats a bucket center for display ("5 mi", "40–50 min")
func (d Definition) Label(center, width float64, unit string) string {
	if d.Range && width > 0 {
		lo := math.Max(center-width/2, 0)
		hi := center + width/2
		return d.formatRange(lo, hi, unit)
	}
	return d.formatValue(center, unit)
}

// CohortTitle is the label plus the metric's phrase ("8:00 /mi pace")
func (d Definition) CohortTitle(center, width float64, unit string) string {
	return d.Label(center, width, unit) + d.phrase
}

// Suffix is the short unit shown after values of this metric
func (d Definition) Suffix(unit string) string {
	switch d.Type {
	case MetricPace:
		return quantity.PaceSuffix(unit)
	case MetricDuration:
		return "min"
	default:
		return unit
	}
}

func (d Definition) formatRange(lo, hi float64, unit string) string {
	if d.Type == MetricDuration {
		return fmt.Sprintf("%s–%s min", quantity.TrimFloat(lo/60, 1), quantity.TrimFloat(hi/60, 1))
	}
	return fmt.Sprintf("%s–%s %s", quantity.TrimFloat(lo, 1), quantity.TrimFloat(hi, 1), unit)
}

func hasHumidity(r Record) bool    { return r.Humidity != nil }
func hasTemperature(r Record) bool { return r.Temperature != nil }
func hasClimb(r Record) bool       { return r.Elevation.Value > 0 }

var definitions = map[MetricType]Definition{
	MetricDistance: {
		Type:               MetricDistance,
		Title:              "Distance",
		Extract:            func(r Record) quantity.Quantity { return r.Distance },
		DefaultTolerance:   0.25,
		DefaultBucketWidth: 1,
		ConsistencyAxis:    MetricDuration,
		TypicalGranularity: 0.1,
		formatValue: func(v float64, unit string) string {
			return quantity.TrimFloat(v, 2) + " " + unit
		},
	},
	MetricPace: {
		Type:               MetricPace,
		Title:              "Pace",
		Extract:            func(r Record) quantity.Quantity { return r.Pace },
		DefaultTolerance:   7.5,
		DefaultBucketWidth: 15,
		ConsistencyAxis:    MetricDistance,
		TypicalGranularity: 5,
		formatValue: func(v float64, unit string) string {
			return quantity.FormatClock(v) + " " + quantity.PaceSuffix(unit)
		},
		phrase: " pace",
	},
	MetricDuration: {
		Type:               MetricDuration,
		Title:              "Duration",
		Extract:            func(r Record) quantity.Quantity { return r.Duration },
		DefaultTolerance:   300,
		DefaultBucketWidth: 600,
		Range:              true,
		ConsistencyAxis:    MetricDistance,
		TypicalGranularity: 60,
		formatValue: func(v float64, unit string) string {
			return quantity.TrimFloat(v/60, 1) + " min"
		},
	},
	MetricElevation: {
		Type:               MetricElevation,
		Title:              "Elevation",
		Extract:            func(r Record) quantity.Quantity { return r.Elevation },
		Include:            hasClimb,
		DefaultTolerance:   25,
		DefaultBucketWidth: 50,
		Range:              true,
		ConsistencyAxis:    MetricDuration,
		TypicalGranularity: 10,
		formatValue: func(v float64, unit string) string {
			return quantity.TrimFloat(v, 1) + " " + unit
		},
		phrase: " of climb",
	},
	MetricTemperature: {
		Type:  MetricTemperature,
		Title: "Temperature",
		Extract: func(r Record) quantity.Quantity {
			return *r.Temperature
		},
		Include:            hasTemperature,
		DefaultTolerance:   2.5,
		DefaultBucketWidth: 5,
		ConsistencyAxis:    MetricPace,
		TypicalGranularity: 1,
		formatValue: func(v float64, unit string) string {
			return quantity.TrimFloat(v, 1) + unit
		},
	},
	MetricHumidity: {
		Type:  MetricHumidity,
		Title: "Humidity",
		Extract: func(r Record) quantity.Quantity {
			return *r.Humidity
		},
		Include:            hasHumidity,
		DefaultTolerance:   5,
		DefaultBucketWidth: 10,
		ConsistencyAxis:    MetricPace,
		TypicalGranularity: 1,
		formatValue: func(v float64, unit string) string {
			return quantity.TrimFloat(v, 1) + "%"
		},
		phrase: " humidity",
	},
}

// Lookup returns the definition for a metric
func Lookup(metric MetricType) (Definition, error) {
	def, ok := definitions[metric]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return def, nil
}

// ParseMetric converts a name like "pace" to a MetricType
func ParseMetric(name string) (MetricType, error) {
	metric := MetricType(name)
	if _, err := Lookup(metric); err != nil {
		return "", err
	}
	return metric, nil
}
