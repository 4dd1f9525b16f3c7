package levers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/lever-planner/pkg/constants"
)

// Month is a calendar month (1-12) within the single simulated year.
type Month int

// Valid reports whether m is within 1..12.
func (m Month) Valid() bool {
	return m >= 1 && m <= constants.MonthsPerYear
}

// AllMonths returns months 1 through 12.
func AllMonths() []Month {
	return monthRange(1, constants.MonthsPerYear)
}

// HalfYear returns the half-year window containing ref: 1..6 when ref <= 6,
// otherwise 7..12.
func HalfYear(ref Month) []Month {
	if ref <= constants.MonthsPerHalfYear {
		return monthRange(1, constants.MonthsPerHalfYear)
	}
	return monthRange(constants.MonthsPerHalfYear+1, constants.MonthsPerYear)
}

func monthRange(from, to int) []Month {
	months := make([]Month, 0, to-from+1)
	for m := from; m <= to; m++ {
		months = append(months, Month(m))
	}
	return months
}

// LeverKey is the atomic unit of matrix storage: a lever type in a month.
type LeverKey struct {
	Type  LeverType
	Month Month
}

// NewLeverKey builds a validated key.
func NewLeverKey(t LeverType, m Month) (LeverKey, error) {
	if !t.Valid() {
		return LeverKey{}, fmt.Errorf("unknown lever type %q", t)
	}
	if !m.Valid() {
		return LeverKey{}, fmt.Errorf("month %d out of range 1-%d", m, constants.MonthsPerYear)
	}
	return LeverKey{Type: t, Month: m}, nil
}

// ParseLeverKey parses keys of the form "recruitment_5".
func ParseLeverKey(s string) (LeverKey, error) {
	idx := strings.LastIndex(s, "_")
	if idx <= 0 || idx == len(s)-1 {
		return LeverKey{}, fmt.Errorf("malformed lever key %q", s)
	}
	t, err := ParseLeverType(s[:idx])
	if err != nil {
		return LeverKey{}, fmt.Errorf("malformed lever key %q: %w", s, err)
	}
	month, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return LeverKey{}, fmt.Errorf("malformed lever key %q: month is not numeric", s)
	}
	return NewLeverKey(t, Month(month))
}

// String renders the key as "<type>_<month>".
func (k LeverKey) String() string {
	return fmt.Sprintf("%s_%d", k.Type, k.Month)
}

// MarshalText lets keys be used directly as JSON/YAML map keys.
func (k LeverKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a key, rejecting malformed input.
func (k *LeverKey) UnmarshalText(text []byte) error {
	parsed, err := ParseLeverKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// KeysForLevel returns exactly the lever keys applicable to a level, ordered
// by lever type and then month.
func KeysForLevel(level Level) []LeverKey {
	var keys []LeverKey
	for _, t := range leverTypes {
		if !t.AppliesTo(level) {
			continue
		}
		for _, m := range AllMonths() {
			keys = append(keys, LeverKey{Type: t, Month: m})
		}
	}
	return keys
}

// TimePeriod describes how a user expressed a cumulative rate.
type TimePeriod string

const (
	Monthly    TimePeriod = "monthly"
	HalfYearly TimePeriod = "half_year"
	Yearly     TimePeriod = "yearly"
)

// ParseTimePeriod parses a period name. "half-year" and "halfyear" are
// accepted for half_year.
func ParseTimePeriod(s string) (TimePeriod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month":
		return Monthly, nil
	case "half_year", "half-year", "halfyear":
		return HalfYearly, nil
	case "yearly", "year", "annual":
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown time period %q", s)
}

// Periods returns the number of monthly compounding periods in p.
func (p TimePeriod) Periods() int {
	switch p {
	case Yearly:
		return constants.MonthsPerYear
	case HalfYearly:
		return constants.MonthsPerHalfYear
	default:
		return 1
	}
}
