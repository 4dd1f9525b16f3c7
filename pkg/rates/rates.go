// Package rates converts between cumulative rates expressed over several
// months and the equivalent monthly compounding rate.
package rates

import (
	"math"

	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

// PeriodsFor returns the number of monthly compounding periods for p.
func PeriodsFor(p levers.TimePeriod) int {
	return p.Periods()
}

// ToMonthlyRate decompounds a cumulative rate over the given number of
// periods: monthly = 1 - (1 - cumulative)^(1/periods).
//
// Rates at or above 100% are clamped to constants.MaxCumulativeRate since a
// full rate has no finite monthly equivalent. Non-positive input returns 0.
func ToMonthlyRate(cumulative float64, periods int) float64 {
	c, ok := clampRate(cumulative)
	if !ok {
		return 0
	}
	if periods <= 1 {
		return c
	}
	return 1 - math.Pow(1-c, 1/float64(periods))
}

// ToCumulativeRate compounds a monthly rate over the given number of periods:
// cumulative = 1 - (1 - monthly)^periods. It applies the same guards as
// ToMonthlyRate.
func ToCumulativeRate(monthly float64, periods int) float64 {
	m, ok := clampRate(monthly)
	if !ok {
		return 0
	}
	if periods <= 1 {
		return m
	}
	return 1 - math.Pow(1-m, float64(periods))
}

// ToMonthly converts a cumulative rate expressed over period p.
func ToMonthly(cumulative float64, p levers.TimePeriod) float64 {
	return ToMonthlyRate(cumulative, PeriodsFor(p))
}

// ToCumulative converts a monthly rate into its cumulative value over period p.
func ToCumulative(monthly float64, p levers.TimePeriod) float64 {
	return ToCumulativeRate(monthly, PeriodsFor(p))
}

func clampRate(r float64) (float64, bool) {
	if math.IsNaN(r) || r <= 0 {
		return 0, false
	}
	if r >= 1 {
		return constants.MaxCumulativeRate, true
	}
	return r, true
}
