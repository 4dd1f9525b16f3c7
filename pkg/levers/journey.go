package levers

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/lever-planner/pkg/constants"
)

// OfficeJourney is the maturity band of an office. It is always derived from
// total FTE and never stored on an office record.
type OfficeJourney string

const (
	NewOffice         OfficeJourney = "new"
	EmergingOffice    OfficeJourney = "emerging"
	EstablishedOffice OfficeJourney = "established"
	MatureOffice      OfficeJourney = "mature"
)

var journeyNameReplacer = strings.NewReplacer("_", "", "-", "", " ", "")

// ParseOfficeJourney accepts both the short names ("emerging") and the
// long form ("EmergingOffice", "emerging_office").
func ParseOfficeJourney(s string) (OfficeJourney, error) {
	switch journeyNameReplacer.Replace(strings.ToLower(strings.TrimSpace(s))) {
	case "new", "newoffice":
		return NewOffice, nil
	case "emerging", "emergingoffice":
		return EmergingOffice, nil
	case "established", "establishedoffice":
		return EstablishedOffice, nil
	case "mature", "matureoffice":
		return MatureOffice, nil
	}
	return "", fmt.Errorf("unknown office journey %q", s)
}

// Classify maps total FTE to a journey band. Lower bounds are inclusive.
// Negative or NaN input is treated as zero.
func Classify(totalFTE float64) OfficeJourney {
	if math.IsNaN(totalFTE) {
		return NewOffice
	}
	switch {
	case totalFTE >= constants.MatureOfficeMinFTE:
		return MatureOffice
	case totalFTE >= constants.EstablishedOfficeMinFTE:
		return EstablishedOffice
	case totalFTE >= constants.EmergingOfficeMinFTE:
		return EmergingOffice
	default:
		return NewOffice
	}
}
