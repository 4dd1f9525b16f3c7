// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"

	"github.com/iwvelando/lever-planner/pkg/levers"
)

// RequestInfo is the plan-file view of a targeting request, before
// conversion.
type RequestInfo struct {
	Name            string
	LeverTypes      []string
	Levels          []string
	CumulativeValue float64
	Period          string
	ReferenceMonth  int
	OfficeNames     []string
}

// ValidateRequest returns warnings for a request that would convert but
// probably not do what its author intended. knownOffices may be nil when
// office names are not known yet.
func ValidateRequest(req RequestInfo, knownOffices []string) []string {
	var warnings []string

	if len(req.LeverTypes) == 0 {
		warnings = append(warnings, fmt.Sprintf("Request '%s' selects no lever types - it will apply nothing", req.Name))
	}
	if len(req.Levels) == 0 {
		warnings = append(warnings, fmt.Sprintf("Request '%s' selects no levels - it will apply nothing", req.Name))
	}

	if w := ValidateCumulativeValue(req.Name, req.CumulativeValue); w != "" {
		warnings = append(warnings, w)
	}

	if req.Period == "" || req.Period == string(levers.Monthly) || req.Period == string(levers.HalfYearly) {
		if req.ReferenceMonth != 0 && !levers.Month(req.ReferenceMonth).Valid() {
			warnings = append(warnings, fmt.Sprintf("Request '%s' reference month %d is outside 1-12 - no months will be selected",
				req.Name, req.ReferenceMonth))
		}
	}

	warnings = append(warnings, ValidateOfficeNames(req.Name, req.OfficeNames, knownOffices)...)
	return warnings
}

// ValidateCumulativeValue warns when a cumulative rate will be clamped.
func ValidateCumulativeValue(name string, value float64) string {
	switch {
	case math.IsNaN(value):
		return fmt.Sprintf("Request '%s' cumulative value is not a number - it will be treated as 0", name)
	case value < 0:
		return fmt.Sprintf("Request '%s' cumulative value %.4f is negative - it will be treated as 0", name, value)
	case value >= 1:
		return fmt.Sprintf("Request '%s' cumulative value %.4f is 100%% or more - it will be clamped", name, value)
	}
	return ""
}

// ValidateOfficeNames warns about explicitly named offices that are not
// known. Unknown names are dropped silently at apply time.
func ValidateOfficeNames(name string, names, knownOffices []string) []string {
	if knownOffices == nil {
		return nil
	}
	known := make(map[string]bool, len(knownOffices))
	for _, o := range knownOffices {
		known[o] = true
	}

	var warnings []string
	for _, n := range names {
		if !known[n] {
			warnings = append(warnings, fmt.Sprintf("Request '%s' names unknown office '%s' - it will be ignored", name, n))
		}
	}
	return warnings
}
