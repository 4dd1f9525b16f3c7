// Package scope resolves a user's targeting intent into the concrete offices
// and months a lever override is written to.
package scope

import (
	"sort"

	"github.com/iwvelando/lever-planner/internal/offices"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

// OfficeMode selects which offices a request targets. Exactly one mode is
// active per request; the variants are AllOffices, ByJourney and Explicit.
type OfficeMode interface {
	resolveOffices(all []offices.Summary) []string
}

// AllOffices targets every known office.
type AllOffices struct{}

// ByJourney targets offices whose FTE currently classifies into Journey.
type ByJourney struct {
	Journey levers.OfficeJourney
}

// Explicit targets the named offices that are known; unknown names are
// dropped.
type Explicit struct {
	Names []string
}

func (AllOffices) resolveOffices(all []offices.Summary) []string {
	names := make([]string, 0, len(all))
	for _, o := range all {
		names = append(names, o.Name)
	}
	return dedupe(names)
}

func (m ByJourney) resolveOffices(all []offices.Summary) []string {
	var names []string
	for _, o := range all {
		if levers.Classify(o.TotalFTE) == m.Journey {
			names = append(names, o.Name)
		}
	}
	return dedupe(names)
}

func (m Explicit) resolveOffices(all []offices.Summary) []string {
	wanted := make(map[string]struct{}, len(m.Names))
	for _, name := range m.Names {
		wanted[name] = struct{}{}
	}
	var names []string
	for _, o := range all {
		if _, ok := wanted[o.Name]; ok {
			names = append(names, o.Name)
		}
	}
	return dedupe(names)
}

// Request is a user-declared lever override.
type Request struct {
	LeverTypes       []levers.LeverType
	Levels           []levers.Level
	CumulativeValue  float64
	Period           levers.TimePeriod
	ReferenceMonth   levers.Month
	ApplyToAllMonths bool
	OfficeMode       OfficeMode
}

// Result holds the resolved targets. Offices keep the order of the known
// office list; months are ascending.
type Result struct {
	Offices []string
	Months  []levers.Month
}

// Empty reports whether nothing was selected.
func (r Result) Empty() bool {
	return len(r.Offices) == 0 || len(r.Months) == 0
}

// Resolve computes the target offices and months for req. An empty result is
// not an error; callers surface it as "nothing selected".
func Resolve(req Request, all []offices.Summary) Result {
	mode := req.OfficeMode
	if mode == nil {
		mode = AllOffices{}
	}
	return Result{
		Offices: mode.resolveOffices(all),
		Months:  ResolveMonths(req),
	}
}

// ResolveMonths returns the months targeted by req's period settings.
func ResolveMonths(req Request) []levers.Month {
	switch req.Period {
	case levers.Yearly:
		return levers.AllMonths()
	case levers.HalfYearly:
		if !req.ReferenceMonth.Valid() {
			return nil
		}
		return levers.HalfYear(req.ReferenceMonth)
	default:
		if req.ApplyToAllMonths {
			return levers.AllMonths()
		}
		if !req.ReferenceMonth.Valid() {
			return nil
		}
		return []levers.Month{req.ReferenceMonth}
	}
}

// SortedLevels returns the requested levels deduplicated in seniority order,
// dropping unknown levels.
func SortedLevels(in []levers.Level) []levers.Level {
	seen := make(map[levers.Level]struct{}, len(in))
	out := make([]levers.Level, 0, len(in))
	for _, l := range in {
		if !l.Valid() {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// SortedLeverTypes returns the requested lever types deduplicated in display
// order, dropping unknown types.
func SortedLeverTypes(in []levers.LeverType) []levers.LeverType {
	seen := make(map[levers.LeverType]struct{}, len(in))
	out := make([]levers.LeverType, 0, len(in))
	for _, t := range in {
		if !t.Valid() {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
