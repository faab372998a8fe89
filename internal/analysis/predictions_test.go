package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForConfidence(t *testing.T) {
	tests := []struct {
		confidence int
		want       ConfidenceLevel
	}{
		{0, ConfidenceLow},
		{39, ConfidenceLow},
		{40, ConfidenceMedium},
		{69, ConfidenceMedium},
		{70, ConfidenceHigh},
		{100, ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, LevelForConfidence(tt.confidence))
		})
	}
}

func TestCalculateConfidence(t *testing.T) {
	tests := []struct {
		name      string
		basis     ConfidenceBasis
		wantLevel ConfidenceLevel
		wantMin   int
		wantMax   int
	}{
		{
			name:      "two points same week, noisy",
			basis:     ConfidenceBasis{DataPoints: 2, TimeSpanDays: 3, TrendStrength: 0.1, ConsistencyScore: 10},
			wantLevel: ConfidenceLow,
			wantMin:   0,
			wantMax:   39,
		},
		{
			name:      "many points, long span, strong fit",
			basis:     ConfidenceBasis{DataPoints: 30, TimeSpanDays: 180, TrendStrength: 0.9, ConsistencyScore: 90},
			wantLevel: ConfidenceHigh,
			wantMin:   70,
			wantMax:   100,
		},
		{
			name:      "everything saturated",
			basis:     ConfidenceBasis{DataPoints: 10000, TimeSpanDays: 100000, TrendStrength: 1, ConsistencyScore: 100},
			wantLevel: ConfidenceHigh,
			wantMin:   100,
			wantMax:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := CalculateConfidence(tt.basis)
			assert.Equal(t, tt.wantLevel, level)
			assert.GreaterOrEqual(t, score, tt.wantMin)
			assert.LessOrEqual(t, score, tt.wantMax)
		})
	}
}

func TestCalculateConfidenceIsMonotonic(t *testing.T) {
	base := ConfidenceBasis{DataPoints: 4, TimeSpanDays: 20, TrendStrength: 0.5, ConsistencyScore: 50}
	baseScore, _ := CalculateConfidence(base)

	bumps := []ConfidenceBasis{
		{DataPoints: 8, TimeSpanDays: 20, TrendStrength: 0.5, ConsistencyScore: 50},
		{DataPoints: 4, TimeSpanDays: 60, TrendStrength: 0.5, ConsistencyScore: 50},
		{DataPoints: 4, TimeSpanDays: 20, TrendStrength: 0.8, ConsistencyScore: 50},
		{DataPoints: 4, TimeSpanDays: 20, TrendStrength: 0.5, ConsistencyScore: 80},
	}

	for _, b := range bumps {
		score, _ := CalculateConfidence(b)
		assert.Greater(t, score, baseScore, "basis %+v", b)
	}
}

func TestBoundProjection(t *testing.T) {
	// 4 weeks allows at most 6% either way
	assert.InDelta(t, 470, BoundProjection(470, 480, 4), 1e-9)
	assert.InDelta(t, 451.2, BoundProjection(300, 480, 4), 1e-9)
	assert.InDelta(t, 508.8, BoundProjection(900, 480, 4), 1e-9)
	assert.InDelta(t, 480, BoundProjection(400, 480, 0), 1e-9)

	// Improvement never exceeds half, no matter the horizon
	assert.InDelta(t, 240, BoundProjection(1, 480, 500), 1e-9)
}

func TestImprovementPercentage(t *testing.T) {
	assert.Equal(t, 5.0, ImprovementPercentage(500, 475))
	assert.Equal(t, -2.0, ImprovementPercentage(500, 510))
	assert.Equal(t, 0.0, ImprovementPercentage(0, 10))
}
