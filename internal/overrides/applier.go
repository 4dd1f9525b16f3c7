// Package overrides applies targeting requests to the lever matrix and
// reports what changed.
package overrides

import (
	"errors"

	"go.uber.org/zap"

	"github.com/iwvelando/lever-planner/internal/matrix"
	"github.com/iwvelando/lever-planner/internal/offices"
	"github.com/iwvelando/lever-planner/internal/scope"
	"github.com/iwvelando/lever-planner/pkg/levers"
	"github.com/iwvelando/lever-planner/pkg/rates"
)

// Applier writes targeting requests into a matrix.
type Applier struct {
	logger *zap.Logger
}

// NewApplier creates an Applier. A nil logger disables logging.
func NewApplier(logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{logger: logger}
}

type groupKey struct {
	leverType levers.LeverType
	rate      float64
}

type group struct {
	levels     []levers.Level
	months     []levers.Month
	offices    []string
	seenLevel  map[levers.Level]bool
	seenMonth  map[levers.Month]bool
	seenOffice map[string]bool
}

func newGroup() *group {
	return &group{
		seenLevel:  make(map[levers.Level]bool),
		seenMonth:  make(map[levers.Month]bool),
		seenOffice: make(map[string]bool),
	}
}

// add records a write. Callers iterate levels, offices and months in order,
// so first-seen order is already the display order.
func (g *group) add(office string, level levers.Level, month levers.Month) {
	if !g.seenOffice[office] {
		g.seenOffice[office] = true
		g.offices = append(g.offices, office)
	}
	if !g.seenLevel[level] {
		g.seenLevel[level] = true
		g.levels = append(g.levels, level)
	}
	if !g.seenMonth[month] {
		g.seenMonth[month] = true
		g.months = append(g.months, month)
	}
}

// Apply resolves req against the known offices, converts the cumulative
// value to a monthly rate and writes it to every targeted cell. Progression
// is skipped for PiP. The returned bool is false when nothing was written;
// the summary is then empty.
//
// Applying the same request twice yields the same matrix state and summary.
func (a *Applier) Apply(req scope.Request, m *matrix.Matrix, all []offices.Summary) (Summary, bool) {
	res := scope.Resolve(req, all)
	leverTypes := scope.SortedLeverTypes(req.LeverTypes)
	levels := scope.SortedLevels(req.Levels)
	if res.Empty() || len(leverTypes) == 0 || len(levels) == 0 {
		a.logger.Debug("targeting request selected nothing",
			zap.String("op", "overrides.Apply"),
			zap.Int("offices", len(res.Offices)),
			zap.Int("months", len(res.Months)),
			zap.Int("levels", len(levels)),
			zap.Int("leverTypes", len(leverTypes)),
		)
		return Summary{}, false
	}

	rate := rates.ToMonthly(req.CumulativeValue, req.Period)

	var order []groupKey
	groups := make(map[groupKey]*group)
	writes := 0

	for _, t := range leverTypes {
		for _, level := range levels {
			if !t.AppliesTo(level) {
				continue
			}
			for _, office := range res.Offices {
				for _, month := range res.Months {
					if err := m.Set(office, level, t, month, rate); err != nil {
						if !errors.Is(err, matrix.ErrNotApplicable) {
							a.logger.Warn("failed to write lever",
								zap.String("op", "overrides.Apply"),
								zap.String("office", office),
								zap.Error(err),
							)
						}
						continue
					}
					writes++
					key := groupKey{leverType: t, rate: rate}
					g, ok := groups[key]
					if !ok {
						g = newGroup()
						groups[key] = g
						order = append(order, key)
					}
					g.add(office, level, month)
				}
			}
		}
	}

	if writes == 0 {
		return Summary{}, false
	}

	summary := make(Summary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		summary = append(summary, Change{
			LeverType: key.leverType,
			Rate:      key.rate,
			Levels:    g.levels,
			Months:    g.months,
			Offices:   g.offices,
		})
	}

	a.logger.Info("applied lever override",
		zap.String("op", "overrides.Apply"),
		zap.Int("writes", writes),
		zap.Int("groups", len(summary)),
		zap.Float64("monthlyRate", rate),
	)
	return summary, true
}
