package export

import (
	"github.com/montanaflynn/stats"
)

// Trend labels assigned by ClassifyTrend.
const (
	TrendInsufficient = "insufficient data"
	TrendIncomplete   = "incomplete data"
	TrendSurging      = "surging"
	TrendRising       = "rising"
	TrendFalling      = "falling"
	TrendCollapsing   = "collapsing"
	TrendVolatile     = "volatile"
	TrendStable       = "stable"
)

// GrowthRates returns the percent change between consecutive values.
// Steps starting from zero or below are skipped.
func GrowthRates(values []float64) []float64 {
	var rates []float64
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev <= 0 {
			continue
		}
		rates = append(rates, (values[i]-prev)/prev*100)
	}
	return rates
}

// Volatility is the population standard deviation of the step growth rates.
func Volatility(values []float64) float64 {
	rates := GrowthRates(values)
	if len(rates) == 0 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(rates)
	if err != nil {
		return 0
	}
	return sd
}

// ClassifyTrend labels a series from its length, first value, total growth
// in percent and volatility.
func ClassifyTrend(points int, first, growth, volatility float64) string {
	switch {
	case points < 3:
		return TrendInsufficient
	case first == 0:
		return TrendIncomplete
	case growth > 100:
		return TrendSurging
	case growth > 20:
		return TrendRising
	case growth < -50:
		return TrendCollapsing
	case growth < -20:
		return TrendFalling
	case volatility > 30:
		return TrendVolatile
	}
	return TrendStable
}
