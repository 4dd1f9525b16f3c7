package matrix

import (
	"github.com/iwvelando/lever-planner/pkg/levers"
)

// OfficeOverrides is the per-office body of the simulation request:
// role -> level -> lever key -> monthly rate.
type OfficeOverrides struct {
	Roles map[string]map[string]map[string]float64 `json:"roles" yaml:"roles"`
}

// Overrides is the "office_overrides" payload consumed by the simulation.
type Overrides map[string]OfficeOverrides

// Export walks the full matrix, defaults included, for every office and
// leveled role. Every level carries exactly its applicable lever keys.
func (m *Matrix) Export(offices []string, roles []string) Overrides {
	out := make(Overrides, len(offices))
	for _, office := range offices {
		oo := OfficeOverrides{Roles: make(map[string]map[string]map[string]float64, len(roles))}
		for _, role := range roles {
			byLevel := make(map[string]map[string]float64)
			for _, level := range levers.AllLevels() {
				keys := levers.KeysForLevel(level)
				values := make(map[string]float64, len(keys))
				for _, k := range keys {
					// Keys come from KeysForLevel, so Get cannot fail here.
					v, _ := m.Get(office, level, k.Type, k.Month)
					values[k.String()] = v
				}
				byLevel[string(level)] = values
			}
			oo.Roles[role] = byLevel
		}
		out[office] = oo
	}
	return out
}
