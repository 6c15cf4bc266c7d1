// Package classify turns raw block telemetry into display states.
package classify

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tier is the confidence band of an engine recommendation.
type Tier string

const (
	TierOK       Tier = "ok"
	TierWarn     Tier = "warn"
	TierCritical Tier = "critical"
)

const (
	warnBelow     = 80.0
	criticalBelow = 60.0
)

// Placeholder is rendered in place of a missing metric.
const Placeholder = "–"

// ConfidenceValue clamps the score to [0,100]; a missing score counts as 100.
func ConfidenceValue(score *float64) float64 {
	if score == nil || math.IsNaN(*score) {
		return 100
	}
	return math.Max(0, math.Min(100, *score))
}

// Confidence maps a confidence score to its tier.
func Confidence(score *float64) Tier {
	v := ConfidenceValue(score)
	switch {
	case v >= warnBelow:
		return TierOK
	case v >= criticalBelow:
		return TierWarn
	default:
		return TierCritical
	}
}

// SkippedForRain reports that the engine recommended nothing because rain fell.
func SkippedForRain(recommendedMM, rainMM float64) bool {
	return recommendedMM == 0 && rainMM > 0
}

// FormatMetric renders value with one decimal place followed by unit.
func FormatMetric(value *float64, unit string) string {
	return FormatMetricPrecision(value, 1, unit)
}

// FormatMetricPrecision is FormatMetric with a caller-chosen number of decimals.
// Missing or non-finite values render as Placeholder.
func FormatMetricPrecision(value *float64, places int32, unit string) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return Placeholder
	}
	return decimal.NewFromFloat(*value).StringFixed(places) + unit
}
