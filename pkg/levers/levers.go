// Package levers defines the vocabulary of the lever matrix: lever types,
// seniority levels, calendar months, lever keys, time periods and office
// journeys.
package levers

import (
	"fmt"
	"strings"
)

// LeverType is a tunable monthly rate applied per level.
type LeverType string

const (
	Recruitment LeverType = "recruitment"
	Churn       LeverType = "churn"
	Progression LeverType = "progression"
	UTR         LeverType = "utr"
)

var leverTypes = []LeverType{Recruitment, Churn, Progression, UTR}

var leverDisplayNames = map[LeverType]string{
	Recruitment: "Recruitment",
	Churn:       "Churn",
	Progression: "Progression",
	UTR:         "UTR",
}

// AllLeverTypes returns every lever type in display order.
func AllLeverTypes() []LeverType {
	return append([]LeverType(nil), leverTypes...)
}

// ParseLeverType parses a lever type name, case-insensitively.
func ParseLeverType(s string) (LeverType, error) {
	candidate := LeverType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := leverDisplayNames[candidate]; !ok {
		return "", fmt.Errorf("unknown lever type %q", s)
	}
	return candidate, nil
}

// Valid reports whether t is a known lever type.
func (t LeverType) Valid() bool {
	_, ok := leverDisplayNames[t]
	return ok
}

// DisplayName returns the human readable name used in summaries.
func (t LeverType) DisplayName() string {
	if name, ok := leverDisplayNames[t]; ok {
		return name
	}
	return string(t)
}

// Index returns the display order of t, or -1 for unknown types.
func (t LeverType) Index() int {
	for i, lt := range leverTypes {
		if lt == t {
			return i
		}
	}
	return -1
}

// AppliesTo reports whether the lever exists for the given level. PiP is the
// terminal level, so it has nothing to progress to.
func (t LeverType) AppliesTo(level Level) bool {
	if t == Progression && level == PiP {
		return false
	}
	return t.Valid() && level.Valid()
}

// Level is a seniority level. Levels are ordered from A (most junior) to PiP.
type Level string

const (
	A   Level = "A"
	AC  Level = "AC"
	C   Level = "C"
	SrC Level = "SrC"
	AM  Level = "AM"
	M   Level = "M"
	SrM Level = "SrM"
	PiP Level = "PiP"
)

var levels = []Level{A, AC, C, SrC, AM, M, SrM, PiP}

// AllLevels returns every level in seniority order.
func AllLevels() []Level {
	return append([]Level(nil), levels...)
}

// ParseLevel parses a level name. Matching is exact first, then
// case-insensitive.
func ParseLevel(s string) (Level, error) {
	trimmed := strings.TrimSpace(s)
	for _, l := range levels {
		if string(l) == trimmed {
			return l, nil
		}
	}
	for _, l := range levels {
		if strings.EqualFold(string(l), trimmed) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l.Index() >= 0
}

// Index returns the seniority order of l, or -1 for unknown levels.
func (l Level) Index() int {
	for i, candidate := range levels {
		if candidate == l {
			return i
		}
	}
	return -1
}
