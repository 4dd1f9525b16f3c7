package testutil

import (
	"testing"

	"github.com/iwvelando/lever-planner/internal/offices"
	"github.com/iwvelando/lever-planner/internal/overrides"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

func TestSampleOffices(t *testing.T) {
	list := SampleOffices(t)
	if len(list) != 3 {
		t.Fatalf("expected 3 offices, got %d", len(list))
	}

	want := map[string]levers.OfficeJourney{
		"Stockholm": levers.MatureOffice,
		"Munich":    levers.EstablishedOffice,
		"Oslo":      levers.EmergingOffice,
	}
	for _, s := range offices.Summaries(list) {
		if got := levers.Classify(s.TotalFTE); got != want[s.Name] {
			t.Errorf("office %s with %.0f FTE classified as %s, want %s", s.Name, s.TotalFTE, got, want[s.Name])
		}
	}
}

func TestFindChange(t *testing.T) {
	summary := overrides.Summary{
		{LeverType: levers.Recruitment, Rate: 0.01},
		{LeverType: levers.Churn, Rate: 0.02},
		{LeverType: levers.Churn, Rate: 0.03},
	}

	tests := []struct {
		name     string
		lever    levers.LeverType
		wantRate float64
		wantNil  bool
	}{
		{name: "Find recruitment", lever: levers.Recruitment, wantRate: 0.01},
		{name: "First churn wins", lever: levers.Churn, wantRate: 0.02},
		{name: "Missing lever", lever: levers.UTR, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindChange(summary, tt.lever)
			if tt.wantNil {
				if got != nil {
					t.Errorf("FindChange() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("FindChange() returned nil")
			}
			if got.Rate != tt.wantRate {
				t.Errorf("FindChange() rate = %v, want %v", got.Rate, tt.wantRate)
			}
		})
	}

	// Returned pointer refers to the summary element.
	FindChange(summary, levers.Recruitment).Rate = 0.5
	if summary[0].Rate != 0.5 {
		t.Errorf("FindChange() should return a pointer into the summary")
	}
}
