// Package pace derives the pace index and race-trend category from sectional
// times.
package pace

import (
	"math"

	"github.com/okian/jvrace/internal/domain/model"
)

// Ladder thresholds.
const (
	longSprintMinRPCI     = 50.0
	sprintFinishMinRPCI   = 51.0
	evenPaceAboveRPCI     = 48.0
	strongFinishMaxLast3F = 35.5
	longSprintTolerance   = 0.05
	furlongsInLast3F      = 3.0
)

// ComputeRPCI returns last3F / (first3F + last3F) * 100 rounded half to even
// at one decimal. It reports false when the sum is not positive.
func ComputeRPCI(first3F, last3F float64) (float64, bool) {
	sum := first3F + last3F
	if sum <= 0 {
		return 0, false
	}
	return round1(last3F / sum * 100), true
}

// ClassifyTrend evaluates the trend ladder in order; the first matching rung
// wins. first4F and last4F may be nil.
func ClassifyTrend(rpci, last3F float64, first4F, last4F *float64) model.TrendCategory {
	switch {
	case rpci >= longSprintMinRPCI && isLongSprint(last3F, first4F, last4F):
		return model.TrendLongSprint
	case rpci >= sprintFinishMinRPCI:
		return model.TrendSprintFinish
	case rpci > evenPaceAboveRPCI:
		return model.TrendEvenPace
	case last3F < strongFinishMaxLast3F:
		return model.TrendFrontLoadedStrong
	default:
		return model.TrendFrontLoaded
	}
}

// isLongSprint reports a sustained finish: the race decelerated between the
// 4F splits and the extra furlong in last-4F ran at the last-3F average.
func isLongSprint(last3F float64, first4F, last4F *float64) bool {
	if first4F == nil || last4F == nil {
		return false
	}
	if *last4F >= *first4F {
		return false
	}
	perFurlong := last3F / furlongsInLast3F
	return math.Abs((*last4F-last3F)-perFurlong) <= longSprintTolerance*perFurlong
}

// round1 rounds to one decimal, sending exact halves to the even digit.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
