package dashboard

import "math"

// computeTrend derives the change percentage and trend direction between a
// window value and its predecessor. A previous value of zero reads as 100%
// growth when the current value is positive, otherwise no change.
func computeTrend(value, previous int64) (float64, string) {
	if previous == 0 {
		if value > 0 {
			return 100, TrendUp
		}
		return 0, TrendNeutral
	}

	change := round2(float64(value-previous) / float64(previous) * 100)
	switch {
	case change > 0:
		return change, TrendUp
	case change < 0:
		return change, TrendDown
	default:
		return 0, TrendNeutral
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
