package overrides

import (
	"fmt"
	"strings"

	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
	"github.com/iwvelando/lever-planner/pkg/mathutil"
)

// Change describes one group of identical writes: a lever type set to the
// same monthly rate across levels, months and offices.
type Change struct {
	LeverType levers.LeverType `json:"leverType" yaml:"leverType"`
	Rate      float64          `json:"effectiveMonthlyRate" yaml:"effectiveMonthlyRate"`
	Levels    []levers.Level   `json:"levels" yaml:"levels"`
	Months    []levers.Month   `json:"months" yaml:"months"`
	Offices   []string         `json:"offices" yaml:"offices"`
}

// String renders the change for the audit list, e.g.
// "Recruitment for levels A, AC set to 2.51% for months 1–12 in Stockholm, Munich".
func (c Change) String() string {
	levelNames := make([]string, len(c.Levels))
	for i, l := range c.Levels {
		levelNames[i] = string(l)
	}
	return fmt.Sprintf("%s for %s %s set to %s for %s %s in %s",
		c.LeverType.DisplayName(),
		plural("level", len(c.Levels)), strings.Join(levelNames, ", "),
		FormatRate(c.Rate),
		plural("month", len(c.Months)), FormatMonths(c.Months),
		strings.Join(c.Offices, ", "),
	)
}

// Summary is the ordered list of changes produced by one apply. It is for
// display and audit only; state is never re-derived from it.
type Summary []Change

// Empty reports whether nothing was applied.
func (s Summary) Empty() bool {
	return len(s) == 0
}

// Lines renders every change. An empty summary renders as a single
// "No levers applied." line.
func (s Summary) Lines() []string {
	if s.Empty() {
		return []string{constants.NoLeversApplied}
	}
	lines := make([]string, len(s))
	for i, c := range s {
		lines[i] = c.String()
	}
	return lines
}

// FormatRate renders a decimal rate as a percentage.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.*f%%", constants.SummaryRateDecimals, mathutil.ToPercentage(rate))
}

// FormatMonths compresses ascending months into ranges: 1–6, 9, 11–12.
func FormatMonths(months []levers.Month) string {
	var parts []string
	for i := 0; i < len(months); {
		j := i
		for j+1 < len(months) && months[j+1] == months[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, fmt.Sprintf("%d–%d", months[i], months[j]))
		} else {
			parts = append(parts, fmt.Sprintf("%d", months[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
