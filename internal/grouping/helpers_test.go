package grouping

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"runcohorts/internal/quantity"
)

var baseDate = time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

var imperial = RecordUnits{
	Distance:    quantity.Miles,
	Elevation:   quantity.Feet,
	Temperature: quantity.Fahrenheit,
}

// run builds a record on day offset days after baseDate
func run(t *testing.T, id string, day int, miles, seconds, climb float64) Record {
	t.Helper()
	start := baseDate.AddDate(0, 0, day)
	r, err := NewRecord(RecordInput{
		ID:           id,
		ActivityType: "Run",
		Start:        start,
		Distance:     miles,
		Duration:     seconds,
		Elevation:    climb,
	}, imperial)
	require.NoError(t, err)
	return r
}

func withWeather(t *testing.T, r Record, tempF, humidity float64) Record {
	t.Helper()
	temp, err := quantity.New(tempF, quantity.Fahrenheit)
	require.NoError(t, err)
	hum, err := quantity.NewMagnitude(humidity, quantity.Percent)
	require.NoError(t, err)
	r.Temperature = &temp
	r.Humidity = &hum
	return r
}

func testEngine(opts ...Option) *Engine {
	opts = append([]Option{
		WithLogger(zap.NewNop().Sugar()),
		WithClock(func() time.Time { return baseDate.AddDate(0, 2, 0) }),
	}, opts...)
	return NewEngine(opts...)
}

func memberIDs(c Cohort) []string {
	ids := make([]string, len(c.Members))
	for i, r := range c.Members {
		ids[i] = r.ID
	}
	return ids
}

func cohortByKey(t *testing.T, res *Result, key string) Cohort {
	t.Helper()
	for _, c := range res.Cohorts {
		if c.Key == key {
			return c
		}
	}
	require.FailNow(t, fmt.Sprintf("no cohort with key %q", key))
	return Cohort{}
}
