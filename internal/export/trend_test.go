package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthRates(t *testing.T) {
	rates := GrowthRates([]float64{10, 12, 0, 5, 4})
	require.Len(t, rates, 3)
	assert.InDelta(t, 20, rates[0], 1e-9)
	assert.InDelta(t, -100, rates[1], 1e-9)
	assert.InDelta(t, -20, rates[2], 1e-9)

	assert.Empty(t, GrowthRates([]float64{7}))
	assert.Empty(t, GrowthRates(nil))
}

func TestVolatility(t *testing.T) {
	assert.Zero(t, Volatility([]float64{5, 5, 5}))
	assert.Zero(t, Volatility([]float64{5}))
	// steps of +10% and -10%
	assert.InDelta(t, 10, Volatility([]float64{100, 110, 99}), 1e-9)
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name       string
		points     int
		first      float64
		growth     float64
		volatility float64
		expected   string
	}{
		{"too short", 2, 10, 500, 0, TrendInsufficient},
		{"starts at zero", 5, 0, 0, 0, TrendIncomplete},
		{"surging", 5, 1, 150, 0, TrendSurging},
		{"rising", 5, 1, 40, 0, TrendRising},
		{"collapsing", 5, 1, -60, 0, TrendCollapsing},
		{"falling", 5, 1, -30, 0, TrendFalling},
		{"volatile", 5, 1, 5, 45, TrendVolatile},
		{"stable", 5, 1, 5, 3, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTrend(tt.points, tt.first, tt.growth, tt.volatility))
		})
	}
}

func TestSummarize_Trend(t *testing.T) {
	summaries := Summarize(yearTable(t))
	require.Len(t, summaries, 2)

	assert.Equal(t, TrendInsufficient, summaries[0].Trend)
	assert.Equal(t, 2014, summaries[0].PeakYear)

	china := summaries[1]
	assert.Equal(t, 2014, china.PeakYear)
	assert.InDelta(t, (54.3-31)/31*100, china.Growth, 1e-9)
	assert.Equal(t, TrendRising, china.Trend)
	assert.Positive(t, china.Volatility)
}
