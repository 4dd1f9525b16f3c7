// Package testutil provides common fixtures and helpers for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/lever-planner/internal/offices"
	"github.com/iwvelando/lever-planner/internal/overrides"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

// OfficesConfigJSON is an /offices/config payload with one office per
// journey except New.
const OfficesConfigJSON = `[
  {
    "name": "Stockholm",
    "roles": {
      "Consultant": {"A": {"fte": 300}, "AC": {"fte": 250}, "C": {"fte": 200}, "PiP": {"fte": 20}},
      "Operations": {"fte": 80}
    }
  },
  {
    "name": "Munich",
    "roles": {
      "Consultant": {"A": {"fte": 120}, "AC": {"fte": 100}, "SrC": {"fte": 60}},
      "Sales": {"levels": {"M": {"fte": 20}}},
      "Operations": {"fte": 20}
    }
  },
  {
    "name": "Oslo",
    "roles": {
      "Consultant": {"A": {"fte": 20}, "C": {"fte": 10}}
    }
  }
]`

// LevelFirstBaselineJSON is a tagged level-first baseline payload.
const LevelFirstBaselineJSON = `{
  "shape": "level_first",
  "recruitment": {
    "Consultant": {
      "A":  {"202501": 0.03, "202502": 0.025},
      "AC": {"202501": 0.02}
    }
  },
  "churn": {
    "Consultant": {
      "A": {"202501": 0.014}
    }
  }
}`

// MonthFirstBaselineJSON is the untagged month-first rendition of
// LevelFirstBaselineJSON.
const MonthFirstBaselineJSON = `{
  "recruitment": {
    "Consultant": {
      "202501": {"A": 0.03, "AC": 0.02},
      "202502": {"A": 0.025}
    }
  },
  "churn": {
    "Consultant": {
      "202501": {"A": 0.014}
    }
  }
}`

// SampleOffices parses OfficesConfigJSON, failing the test on error.
func SampleOffices(t testing.TB) []offices.Office {
	t.Helper()
	list, err := offices.Parse([]byte(OfficesConfigJSON))
	if err != nil {
		t.Fatalf("failed to parse sample offices: %v", err)
	}
	return list
}

// FindChange finds the first change for the lever type in a summary.
// Returns a pointer to the change if found, nil otherwise.
func FindChange(summary overrides.Summary, t levers.LeverType) *overrides.Change {
	for i := range summary {
		if summary[i].LeverType == t {
			return &summary[i]
		}
	}
	return nil
}
