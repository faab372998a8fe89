package grouping

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runcohorts/internal/quantity"
)

func TestGroupFiveMileRuns(t *testing.T) {
	records := []Record{
		run(t, "a", 0, 5.0, 2400, 40),
		run(t, "b", 2, 5.1, 2450, 60),
		run(t, "c", 4, 5.2, 2500, 30),
		run(t, "d", 6, 5.05, 2380, 50),
		run(t, "e", 8, 5.15, 2420, 45),
	}

	res, err := testEngine().Group(records, MetricDistance, Parameters{Tolerance: 0.5, BucketWidth: 1})
	require.NoError(t, err)

	require.Len(t, res.Cohorts, 1)
	c := res.Cohorts[0]
	assert.Equal(t, "5", c.Key)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, memberIDs(c))
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, c.Skipped)
	assert.Equal(t, 5, res.Considered)
	assert.Equal(t, "5 mi", c.Title)
	assert.Equal(t, 1, c.Rank)
	assert.Equal(t, "Most Common", c.RankLabel)
	assert.Equal(t, 100.0, c.PercentageOfTotal)
	assert.InDelta(t, 25.5, c.TotalDistance.Value, 1e-9)
	assert.Equal(t, 12150.0, c.TotalDuration.Value)
	assert.Equal(t, 225.0, c.TotalElevation.Value)
}

func TestGroupToleranceBoundary(t *testing.T) {
	params := Parameters{Tolerance: 0.3, BucketWidth: 1}

	t.Run("within tolerance", func(t *testing.T) {
		res, err := testEngine().Group([]Record{run(t, "near", 0, 5.9, 3000, 0)}, MetricDistance, params)
		require.NoError(t, err)
		require.Len(t, res.Cohorts, 1)
		assert.Equal(t, "6", res.Cohorts[0].Key)
		assert.Equal(t, 0, res.Skipped)
	})

	t.Run("outside tolerance", func(t *testing.T) {
		res, err := testEngine().Group([]Record{run(t, "far", 0, 5.6, 3000, 0)}, MetricDistance, params)
		require.NoError(t, err)
		assert.Empty(t, res.Cohorts)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, 1, res.Considered)
	})
}

func TestGroupMidpointRoundsUp(t *testing.T) {
	res, err := testEngine().Group([]Record{run(t, "mid", 0, 5.5, 3000, 0)}, MetricDistance,
		Parameters{Tolerance: 0.5, BucketWidth: 1})
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 1)
	assert.Equal(t, "6", res.Cohorts[0].Key)
}

func TestGroupEmpty(t *testing.T) {
	res, err := testEngine().Group(nil, MetricPace, definitions[MetricPace].DefaultParameters())
	require.NoError(t, err)
	assert.Empty(t, res.Cohorts)
	assert.Zero(t, res.Skipped)
	assert.Zero(t, res.Considered)
}

func TestGroupZeroWidthAndTolerance(t *testing.T) {
	records := []Record{
		run(t, "a", 0, 3.1, 1500, 0),
		run(t, "b", 1, 3.1, 1490, 0),
		run(t, "c", 2, 6.2, 3100, 0),
	}

	res, err := testEngine().Group(records, MetricDistance, Parameters{})
	require.NoError(t, err)

	require.Len(t, res.Cohorts, 2)
	assert.Equal(t, []string{"a", "b"}, memberIDs(cohortByKey(t, res, "3.1")))
	assert.Equal(t, []string{"c"}, memberIDs(cohortByKey(t, res, "6.2")))
	assert.Zero(t, res.Skipped)
}

func TestGroupZeroToleranceExactMultiplesOnly(t *testing.T) {
	records := []Record{
		run(t, "exact", 0, 5, 2400, 0),
		run(t, "off", 1, 5.01, 2400, 0),
	}

	res, err := testEngine().Group(records, MetricDistance, Parameters{Tolerance: 0, BucketWidth: 1})
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 1)
	assert.Equal(t, []string{"exact"}, memberIDs(res.Cohorts[0]))
	assert.Equal(t, 1, res.Skipped)
}

func TestGroupRejectsInvalidConfiguration(t *testing.T) {
	records := []Record{run(t, "a", 0, 5, 2400, 0)}

	tests := []struct {
		name   string
		params Parameters
	}{
		{"tolerance over half width", Parameters{Tolerance: 0.6, BucketWidth: 1}},
		{"negative tolerance", Parameters{Tolerance: -1, BucketWidth: 1}},
		{"negative width", Parameters{Tolerance: 0, BucketWidth: -2}},
		{"nan tolerance", Parameters{Tolerance: math.NaN(), BucketWidth: 1}},
		{"infinite width", Parameters{Tolerance: 1, BucketWidth: math.Inf(1)}},
		{"tolerance with zero width", Parameters{Tolerance: 0.1, BucketWidth: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testEngine().Group(records, MetricDistance, tt.params)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Nil(t, res)
		})
	}

	t.Run("negative weeks ahead", func(t *testing.T) {
		_, err := testEngine(WithWeeksAhead(-1)).Group(records, MetricDistance, Parameters{Tolerance: 0.5, BucketWidth: 1})
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("unknown metric", func(t *testing.T) {
		_, err := testEngine().Group(records, MetricType("cadence"), Parameters{})
		assert.ErrorIs(t, err, ErrUnknownMetric)
	})
}

func TestGroupUnitMismatch(t *testing.T) {
	mi := run(t, "mi", 0, 5, 2400, 0)
	km, err := NewRecord(RecordInput{ID: "km", Start: baseDate, Distance: 5, Duration: 1500},
		RecordUnits{Distance: quantity.Kilometers, Elevation: quantity.Meters, Temperature: quantity.Celsius})
	require.NoError(t, err)

	_, err = testEngine().Group([]Record{mi, km}, MetricDistance, Parameters{Tolerance: 0.5, BucketWidth: 1})
	assert.ErrorIs(t, err, quantity.ErrUnitMismatch)
}

func TestGroupExclusivityAndCoverage(t *testing.T) {
	var records []Record
	for i := 0; i < 60; i++ {
		miles := 1 + float64((i*37)%90)/10 // 1.0 - 9.9
		seconds := miles * float64(420+(i*13)%120)
		climb := float64((i * 29) % 300)
		r := run(t, fmt.Sprintf("w%02d", i), i, miles, seconds, climb)
		if i%3 != 0 {
			r = withWeather(t, r, float64(30+(i*7)%60), float64((i*11)%100))
		}
		records = append(records, r)
	}

	for _, metric := range AllMetrics {
		def := definitions[metric]
		widths := []float64{0, def.DefaultBucketWidth / 2, def.DefaultBucketWidth, def.DefaultBucketWidth * 3}
		for _, width := range widths {
			for _, tolFraction := range []float64{0, 0.25, 0.5} {
				params := Parameters{Tolerance: width * tolFraction, BucketWidth: width}
				name := fmt.Sprintf("%s/w=%v/tol=%v", metric, width, params.Tolerance)

				t.Run(name, func(t *testing.T) {
					res, err := testEngine().Group(records, metric, params)
					require.NoError(t, err)

					seen := make(map[string]string)
					members := 0
					for _, c := range res.Cohorts {
						for _, r := range c.Members {
							prev, dup := seen[r.ID]
							assert.False(t, dup, "workout %s in cohorts %s and %s", r.ID, prev, c.Key)
							seen[r.ID] = c.Key
						}
						members += c.Count()
						assert.Equal(t, res.Skipped, c.Skipped)
					}

					included := 0
					for _, r := range records {
						if def.Include == nil || def.Include(r) {
							included++
						}
					}
					assert.Equal(t, included, res.Considered)
					assert.Equal(t, included, members+res.Skipped)
				})
			}
		}
	}
}

func TestGroupRanksByMemberCount(t *testing.T) {
	records := []Record{
		run(t, "three-a", 0, 3, 1500, 0),
		run(t, "five-a", 1, 5, 2500, 0),
		run(t, "ten-a", 2, 10, 5000, 0),
		run(t, "five-b", 3, 5, 2500, 0),
		run(t, "five-c", 4, 5, 2500, 0),
		run(t, "ten-b", 5, 10, 5000, 0),
	}

	res, err := testEngine().Group(records, MetricDistance, Parameters{Tolerance: 0.5, BucketWidth: 1})
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 3)

	assert.Equal(t, "5", res.Cohorts[0].Key)
	assert.Equal(t, "Most Common", res.Cohorts[0].RankLabel)
	assert.Equal(t, "10", res.Cohorts[1].Key)
	assert.Equal(t, "2th Most Common", res.Cohorts[1].RankLabel)
	assert.Equal(t, "3", res.Cohorts[2].Key)
	assert.Equal(t, "Least Common", res.Cohorts[2].RankLabel)

	for i, c := range res.Cohorts {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestGroupExcludesRecordsWithoutMetric(t *testing.T) {
	records := []Record{
		withWeather(t, run(t, "warm", 0, 5, 2400, 0), 71, 40),
		run(t, "indoor", 1, 5, 2400, 0),
	}

	res, err := testEngine().Group(records, MetricTemperature, definitions[MetricTemperature].DefaultParameters())
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 1)
	assert.Equal(t, "70", res.Cohorts[0].Key)
	assert.Equal(t, 1, res.Considered)

	res, err = testEngine().Group(records, MetricElevation, definitions[MetricElevation].DefaultParameters())
	require.NoError(t, err)
	assert.Empty(t, res.Cohorts)
	assert.Zero(t, res.Considered)
}

func TestGroupDoesNotModifyInput(t *testing.T) {
	records := []Record{
		run(t, "a", 0, 5, 2400, 0),
		run(t, "b", 1, 5, 2300, 0),
	}
	before := make([]Record, len(records))
	copy(before, records)

	_, err := testEngine(WithPredictions(true)).Group(records, MetricDistance, Parameters{Tolerance: 0.5, BucketWidth: 1})
	require.NoError(t, err)
	assert.Equal(t, before, records)
}

func TestRankLabel(t *testing.T) {
	tests := []struct {
		rank, total int
		want        string
	}{
		{1, 1, "Most Common"},
		{1, 5, "Most Common"},
		{2, 5, "2th Most Common"},
		{3, 5, "3th Most Common"},
		{4, 5, "4th Most Common"},
		{5, 5, "Least Common"},
		{11, 30, "11th Most Common"},
		{12, 30, "12th Most Common"},
		{13, 30, "13th Most Common"},
		{21, 30, "21th Most Common"},
		{22, 30, "22th Most Common"},
	}

	for _, tt := range tests {
		if got := rankLabel(tt.rank, tt.total); got != tt.want {
			t.Errorf("rankLabel(%d, %d) = %q, want %q", tt.rank, tt.total, got, tt.want)
		}
	}
}

func TestGroupDecimalMidpointRoundsUp(t *testing.T) {
	records := []Record{
		run(t, "mid", 0, 5.15, 2500, 0),
		run(t, "below", 1, 5.14, 2500, 0),
	}

	res, err := testEngine().Group(records, MetricDistance, Parameters{Tolerance: 0.05, BucketWidth: 0.1})
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 2)

	keys := map[string][]string{}
	for _, c := range res.Cohorts {
		keys[c.Key] = memberIDs(c)
	}
	assert.Equal(t, map[string][]string{"5.2": {"mid"}, "5.1": {"below"}}, keys)
}

func TestRankLabelsAcrossCohorts(t *testing.T) {
	var records []Record
	day := 0
	for miles, count := range map[float64]int{3: 4, 5: 3, 8: 2, 13: 1} {
		for i := 0; i < count; i++ {
			records = append(records, run(t, fmt.Sprintf("%v-%d", miles, i), day, miles, miles*500, 0))
			day++
		}
	}

	res, err := testEngine().Group(records, MetricDistance, Parameters{Tolerance: 0.25, BucketWidth: 1})
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 4)

	var got []string
	for _, c := range res.Cohorts {
		got = append(got, c.Key+" "+c.RankLabel)
	}
	assert.Equal(t, []string{
		"3 Most Common",
		"5 2th Most Common",
		"8 3th Most Common",
		"13 Least Common",
	}, got)
}

func TestRankTiesKeepDiscoveryOrder(t *testing.T) {
	records := []Record{
		run(t, "ten", 0, 10, 5000, 0),
		run(t, "five", 1, 5, 2500, 0),
		run(t, "three", 2, 3, 1500, 0),
	}

	res, err := testEngine().Group(records, MetricDistance, Parameters{Tolerance: 0.25, BucketWidth: 1})
	require.NoError(t, err)
	require.Len(t, res.Cohorts, 3)
	assert.Equal(t, "10", res.Cohorts[0].Key)
	assert.Equal(t, "5", res.Cohorts[1].Key)
	assert.Equal(t, "2th Most Common", res.Cohorts[1].RankLabel)
	assert.Equal(t, "3", res.Cohorts[2].Key)
}

func TestBucketCenterAndKey(t *testing.T) {
	tests := []struct {
		v, width float64
		key      string
	}{
		{5.49, 1, "5"},
		{5.5, 1, "6"},
		{0.36, 0.1, "0.4"},
		{0.15, 0.1, "0.2"},
		{0.25, 0.1, "0.3"},
		{0.35, 0.1, "0.4"},
		{0.14, 0.1, "0.1"},
		{2.25, 0.5, "2.5"},
		{7.5, 15, "15"},
		{487, 15, "480"},
		{492.5, 15, "495"},
		{3.14159, 0, "3.14159"},
	}

	for _, tt := range tests {
		got := bucketKey(bucketCenter(tt.v, tt.width))
		if got != tt.key {
			t.Errorf("bucketKey(bucketCenter(%v, %v)) = %q, want %q", tt.v, tt.width, got, tt.key)
		}
	}
}
