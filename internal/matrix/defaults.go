package matrix

import (
	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

// Default returns the documented default monthly rate for a cell. It depends
// only on its arguments, never on matrix contents, so unmodified cells are
// reproducible.
func Default(t levers.LeverType, level levers.Level, month levers.Month) float64 {
	switch t {
	case levers.Recruitment:
		if level == levers.A {
			return constants.DefaultRecruitmentRateLevelA
		}
		return constants.DefaultRecruitmentRate
	case levers.Churn:
		return constants.DefaultChurnRate
	case levers.Progression:
		for _, m := range constants.ProgressionMonths {
			if int(month) == m {
				return constants.DefaultProgressionRate
			}
		}
		return 0
	case levers.UTR:
		return constants.DefaultUTR
	}
	return 0
}
