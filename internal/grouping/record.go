package grouping

import (
	"fmt"
	"time"

	"runcohorts/internal/quantity"
)

// Record is a single historical workout. Records are read-only for the
// duration of a grouping run.
type Record struct {
	ID           string             `json:"id"`
	Name         string             `json:"name,omitempty"`
	ActivityType string             `json:"activity_type"`
	Start        time.Time          `json:"start"`
	End          time.Time          `json:"end"`
	Duration     quantity.Quantity  `json:"duration"` // seconds
	Distance     quantity.Quantity  `json:"distance"`
	Pace         quantity.Quantity  `json:"pace"` // seconds per distance unit
	Elevation    quantity.Quantity  `json:"elevation"`
	Humidity     *quantity.Quantity `json:"humidity,omitempty"`
	Temperature  *quantity.Quantity `json:"temperature,omitempty"`
}

// RecordInput holds the raw values used to build a Record
type RecordInput struct {
	ID           string
	Name         string
	ActivityType string
	Start        time.Time
	End          time.Time
	Distance     float64
	Duration     float64 // seconds
	Elevation    float64
	Humidity     *float64
	Temperature  *float64
}

// RecordUnits names the units of a RecordInput's values
type RecordUnits struct {
	Distance    string
	Elevation   string
	Temperature string
}

// NewRecord validates the input and derives pace (duration / distance)
func NewRecord(in RecordInput, units RecordUnits) (Record, error) {
	if in.Distance <= 0 {
		return Record{}, fmt.Errorf("workout %s: %w: distance must be positive", in.ID, quantity.ErrInvalidValue)
	}

	distance, err := quantity.NewMagnitude(in.Distance, units.Distance)
	if err != nil {
		return Record{}, fmt.Errorf("workout %s distance: %w", in.ID, err)
	}
	duration, err := quantity.NewMagnitude(in.Duration, quantity.Seconds)
	if err != nil {
		return Record{}, fmt.Errorf("workout %s duration: %w", in.ID, err)
	}
	elevation, err := quantity.NewMagnitude(in.Elevation, units.Elevation)
	if err != nil {
		return Record{}, fmt.Errorf("workout %s elevation: %w", in.ID, err)
	}
	pace, err := quantity.NewMagnitude(in.Duration/in.Distance, quantity.Seconds+"/"+units.Distance)
	if err != nil {
		return Record{}, fmt.Errorf("workout %s pace: %w", in.ID, err)
	}

	r := Record{
		ID:           in.ID,
		Name:         in.Name,
		ActivityType: in.ActivityType,
		Start:        in.Start,
		End:          in.End,
		Duration:     duration,
		Distance:     distance,
		Pace:         pace,
		Elevation:    elevation,
	}
	if r.End.IsZero() {
		r.End = r.Start.Add(time.Duration(in.Duration * float64(time.Second)))
	}

	if in.Humidity != nil {
		h, err := quantity.NewMagnitude(*in.Humidity, quantity.Percent)
		if err != nil {
			return Record{}, fmt.Errorf("workout %s humidity: %w", in.ID, err)
		}
		r.Humidity = &h
	}
	if in.Temperature != nil {
		t, err := quantity.New(*in.Temperature, units.Temperature)
		if err != nil {
			return Record{}, fmt.Errorf("workout %s temperature: %w", in.ID, err)
		}
		r.Temperature = &t
	}

	return r, nil
}
