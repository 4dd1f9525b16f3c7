package rates

import (
	"math"
	"testing"

	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
	"github.com/iwvelando/lever-planner/pkg/mathutil"
)

func TestRoundTrip(t *testing.T) {
	for _, periods := range []int{1, 6, 12} {
		for r := 0.0; r <= 0.99; r += 0.0025 {
			monthly := ToMonthlyRate(r, periods)
			back := ToCumulativeRate(monthly, periods)
			if !mathutil.WithinTolerance(back, r, constants.RateTolerance) {
				t.Fatalf("round trip failed for r=%v periods=%d: got %v", r, periods, back)
			}
		}
	}
}

func TestToMonthlyRate(t *testing.T) {
	tests := []struct {
		name       string
		cumulative float64
		periods    int
		expected   float64
	}{
		{"Yearly 8%", 0.08, 12, 0.006924},
		{"Half-year 10%", 0.10, 6, 0.017407},
		{"Monthly is identity", 0.05, 1, 0.05},
		{"Zero", 0, 12, 0},
		{"Negative short-circuits", -0.2, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMonthlyRate(tt.cumulative, tt.periods)
			if !mathutil.WithinTolerance(got, tt.expected, 1e-6) {
				t.Errorf("ToMonthlyRate(%v, %d) = %v, expected %v", tt.cumulative, tt.periods, got, tt.expected)
			}
		})
	}
}

func TestClamping(t *testing.T) {
	for _, input := range []float64{1, 1.5, math.Inf(1)} {
		got := ToMonthlyRate(input, 12)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("ToMonthlyRate(%v, 12) produced non-finite %v", input, got)
		}
		if got >= 1 {
			t.Fatalf("ToMonthlyRate(%v, 12) = %v, expected < 1", input, got)
		}
	}
	if got := ToMonthlyRate(math.NaN(), 6); got != 0 {
		t.Fatalf("ToMonthlyRate(NaN) = %v, expected 0", got)
	}
}

func TestPeriodHelpers(t *testing.T) {
	if PeriodsFor(levers.Yearly) != 12 || PeriodsFor(levers.HalfYearly) != 6 || PeriodsFor(levers.Monthly) != 1 {
		t.Fatal("unexpected period counts")
	}
	monthly := ToMonthly(0.3, levers.HalfYearly)
	if !mathutil.WithinTolerance(ToCumulative(monthly, levers.HalfYearly), 0.3, constants.RateTolerance) {
		t.Fatal("ToMonthly/ToCumulative are not inverse")
	}
}
