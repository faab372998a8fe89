package grouping

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runcohorts/internal/analysis"
	"runcohorts/internal/quantity"
)

// weeklyCohort builds a cohort of 5 mile runs one week apart at the given paces
func weeklyCohort(t *testing.T, metric MetricType, paces ...float64) Cohort {
	t.Helper()
	members := make([]Record, len(paces))
	distribution := make([]float64, len(paces))
	for i, pace := range paces {
		members[i] = run(t, fmt.Sprintf("w%d", i), i*7, 5, pace*5, 100)
		distribution[i] = pace * 5
	}
	return Cohort{
		Key:         "test",
		Metric:      metric,
		Members:     members,
		Consistency: analysis.Consistency(distribution),
	}
}

func TestPredictNeedsTwoMembers(t *testing.T) {
	records := []Record{run(t, "first", 0, 5, 2400, 0)}
	e := testEngine()

	res, err := e.Group(records, MetricPace, definitions[MetricPace].DefaultParameters())
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 1)

	_, err = e.Predict(res.Cohorts[0], 4)
	assert.ErrorIs(t, err, ErrInsufficientData)

	records = append(records, run(t, "second", 7, 5, 2390, 0))
	res, err = e.Group(records, MetricPace, definitions[MetricPace].DefaultParameters())
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 1)

	p, err := e.Predict(res.Cohorts[0], 4)
	require.NoError(t, err)
	assert.Equal(t, analysis.LevelForConfidence(p.Confidence), p.ConfidenceLevel)
	assert.GreaterOrEqual(t, p.Confidence, 0)
	assert.LessOrEqual(t, p.Confidence, 100)
	assert.Equal(t, 2, p.Basis.DataPoints)
	assert.InDelta(t, 7, p.Basis.TimeSpanDays, 0.01)
}

func TestPredictIsDeterministic(t *testing.T) {
	c := weeklyCohort(t, MetricPace, 500, 497, 499, 490, 488)
	now := baseDate.AddDate(0, 1, 0)

	first, err := Predict(c, 6, now)
	require.NoError(t, err)
	second, err := Predict(c, 6, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	reversed := c
	reversed.Members = slices.Clone(c.Members)
	slices.Reverse(reversed.Members)
	third, err := Predict(reversed, 6, now)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestPredictTargetDate(t *testing.T) {
	c := weeklyCohort(t, MetricPace, 500, 490)

	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	p, err := Predict(c, 2, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC), p.TargetDate)

	p, err = Predict(c, 0, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), p.TargetDate)
}

func TestPredictRejectsBadHorizon(t *testing.T) {
	c := weeklyCohort(t, MetricPace, 500, 490)
	_, err := Predict(c, -1, baseDate)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestPredictMomentum(t *testing.T) {
	now := baseDate.AddDate(0, 0, 36)

	tests := []struct {
		name      string
		paces     []float64
		momentum  analysis.Momentum
		firstRec  string
		improving bool
	}{
		{
			name:      "improving",
			paces:     []float64{500, 494, 488, 482, 476, 470},
			momentum:  analysis.MomentumImproving,
			firstRec:  "Tempo Run",
			improving: true,
		},
		{
			name:     "plateauing",
			paces:    []float64{480, 480, 480, 480},
			momentum: analysis.MomentumPlateauing,
			firstRec: "Hill Repeats",
		},
		{
			name:     "declining",
			paces:    []float64{460, 468, 476, 484, 492},
			momentum: analysis.MomentumDeclining,
			firstRec: "Recovery Run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Predict(weeklyCohort(t, MetricPace, tt.paces...), 4, now)
			require.NoError(t, err)

			assert.Equal(t, tt.momentum, p.Momentum)
			require.NotEmpty(t, p.Recommendations)
			assert.Equal(t, tt.firstRec, p.Recommendations[0].WorkoutType)
			for _, rec := range p.Recommendations {
				assert.NotEmpty(t, rec.Rationale)
				assert.Positive(t, rec.WeeklyFrequency)
			}

			latest := tt.paces[len(tt.paces)-1]
			assert.GreaterOrEqual(t, p.PredictedPace.Value, latest*(1-analysis.MaxWeeklyChange*4)-1e-9)
			assert.LessOrEqual(t, p.PredictedPace.Value, latest*(1+analysis.MaxWeeklyChange*4)+1e-9)
			if tt.improving {
				assert.Positive(t, p.ImprovementPercentage)
				assert.Less(t, p.PredictedPace.Value, latest)
			}
		})
	}
}

func TestPredictBoundsRunawayTrend(t *testing.T) {
	c := weeklyCohort(t, MetricPace, 600, 500)

	p, err := Predict(c, 4, baseDate.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, analysis.MomentumImproving, p.Momentum)
	assert.InDelta(t, 470, p.PredictedPace.Value, 1e-9)
	assert.InDelta(t, 6, p.ImprovementPercentage, 1e-9)
	assert.InDelta(t, 470*5, p.PredictedDuration.Value, 1e-6)
}

func TestPredictDurationAxis(t *testing.T) {
	c := weeklyCohort(t, MetricDistance, 500, 495, 490)

	p, err := Predict(c, 2, baseDate.AddDate(0, 0, 15))
	require.NoError(t, err)
	assert.Equal(t, MetricDuration, p.Axis)
	assert.Equal(t, quantity.Seconds, p.PredictedDuration.Unit)
	require.NotNil(t, p.PredictedDistance)
	assert.Equal(t, quantity.Quantity{Value: 5, Unit: quantity.Miles}, *p.PredictedDistance)
	assert.InDelta(t, p.PredictedDuration.Value/5, p.PredictedPace.Value, 1e-9)
	assert.Equal(t, quantity.SecondsPerMile, p.PredictedPace.Unit)
}

func TestPredictImprovingRecommendationTargets(t *testing.T) {
	p, err := Predict(weeklyCohort(t, MetricPace, 500, 494, 488, 482), 2, baseDate.AddDate(0, 0, 22))
	require.NoError(t, err)
	require.Equal(t, analysis.MomentumImproving, p.Momentum)

	tempo := p.Recommendations[0]
	require.NotNil(t, tempo.TargetPace)
	assert.Equal(t, p.PredictedPace, *tempo.TargetPace)

	intervals := p.Recommendations[1]
	require.NotNil(t, intervals.TargetPace)
	assert.InDelta(t, p.PredictedPace.Value*0.95, intervals.TargetPace.Value, 1e-9)
	assert.Equal(t, IntensityHard, intervals.Intensity)
}

func TestPredictImprovingBehindLatestRun(t *testing.T) {
	// A flat series with one breakthrough run: the trend points faster but the
	// bounded projection is still slower than the latest workout
	var members []Record
	for i, pt := range []struct {
		day  int
		pace float64
	}{{0, 600}, {30, 600}, {60, 600}, {61, 500}} {
		members = append(members, run(t, fmt.Sprintf("r%d", i), pt.day, 5, pt.pace*5, 0))
	}
	c := Cohort{Key: "600", Metric: MetricPace, Members: members}

	p, err := Predict(c, 4, baseDate.AddDate(0, 0, 60))
	require.NoError(t, err)
	require.Equal(t, analysis.MomentumImproving, p.Momentum)
	require.LessOrEqual(t, p.ImprovementPercentage, 0.0)
	require.Greater(t, p.PredictedPace.Value, 500.0)

	tempo := p.Recommendations[0]
	require.NotNil(t, tempo.TargetPace)
	assert.InDelta(t, 500, tempo.TargetPace.Value, 1e-9, "never target slower than the latest run")
	assert.NotContains(t, tempo.Rationale, "-")
	assert.NotContains(t, tempo.Rationale, "%")
	assert.Contains(t, tempo.Rationale, "8:20")

	intervals := p.Recommendations[1]
	require.NotNil(t, intervals.TargetPace)
	assert.InDelta(t, 500*0.95, intervals.TargetPace.Value, 1e-9)
}

func TestWithPredictionsAttachesToEveryCohort(t *testing.T) {
	records := []Record{
		run(t, "a", 0, 5, 2500, 0),
		run(t, "b", 7, 5, 2450, 0),
		run(t, "solo", 14, 10, 5000, 0),
	}

	res, err := testEngine(WithPredictions(true), WithWeeksAhead(3)).Group(records, MetricDistance,
		Parameters{Tolerance: 0.5, BucketWidth: 1})
	require.NoError(t, err)

	pair := cohortByKey(t, res, "5")
	require.NotNil(t, pair.Prediction)
	assert.Equal(t, 3.0, pair.Prediction.WeeksAhead)
	assert.Nil(t, cohortByKey(t, res, "10").Prediction)
}

func TestPredictionSummary(t *testing.T) {
	p := &Prediction{
		TargetDate:      time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC),
		PredictedPace:   quantity.Quantity{Value: 465, Unit: quantity.SecondsPerMile},
		Momentum:        analysis.MomentumImproving,
		Confidence:      72,
		ConfidenceLevel: analysis.ConfidenceHigh,
	}
	assert.Equal(t, "7:45 /mi by May 04, improving (high confidence 72)", p.Summary())
}

func TestCohortSeries(t *testing.T) {
	c := weeklyCohort(t, MetricPace, 500, 490, 480)
	slices.Reverse(c.Members)

	axis, values := c.Series()
	assert.Equal(t, MetricPace, axis)
	assert.InDeltaSlice(t, []float64{500, 490, 480}, values, 1e-9)

	c.Metric = MetricDuration
	axis, values = c.Series()
	assert.Equal(t, MetricDuration, axis)
	assert.InDeltaSlice(t, []float64{2500, 2450, 2400}, values, 1e-9)
}
