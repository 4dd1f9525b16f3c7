// Package offices ingests office configuration returned by the backend and
// resolves each role once into either leveled or flat data.
package offices

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/iwvelando/lever-planner/pkg/levers"
)

// RoleKind distinguishes roles staffed per level from roles with a single
// headcount figure.
type RoleKind int

const (
	// Leveled roles carry one entry per seniority level.
	Leveled RoleKind = iota
	// Flat roles carry a single FTE figure.
	Flat
)

func (k RoleKind) String() string {
	if k == Leveled {
		return "leveled"
	}
	return "flat"
}

// LevelData is the per-level staffing of a leveled role.
type LevelData struct {
	FTE float64 `json:"fte"`
}

// Role is the staffing of one role in an office.
type Role struct {
	Name   string
	Kind   RoleKind
	Levels map[levers.Level]LevelData
	FTE    float64
}

// TotalFTE returns the role headcount across levels.
func (r Role) TotalFTE() float64 {
	if r.Kind == Flat {
		return r.FTE
	}
	total := 0.0
	for _, data := range r.Levels {
		total += data.FTE
	}
	return total
}

// Office is a single office and its roles, ordered by role name.
type Office struct {
	Name  string
	Roles []Role
}

// TotalFTE returns the office headcount across all roles.
func (o Office) TotalFTE() float64 {
	total := 0.0
	for _, role := range o.Roles {
		total += role.TotalFTE()
	}
	return total
}

// Summary is the slice of office data scope resolution needs.
type Summary struct {
	Name     string  `json:"name" yaml:"name"`
	TotalFTE float64 `json:"totalFte" yaml:"totalFte"`
}

// Summaries returns name and total FTE for each office, preserving order.
func Summaries(list []Office) []Summary {
	out := make([]Summary, 0, len(list))
	for _, o := range list {
		out = append(out, Summary{Name: o.Name, TotalFTE: o.TotalFTE()})
	}
	return out
}

// LeveledRoles returns the sorted union of leveled role names across offices.
func LeveledRoles(list []Office) []string {
	seen := make(map[string]struct{})
	for _, o := range list {
		for _, role := range o.Roles {
			if role.Kind == Leveled {
				seen[role.Name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type rawOffice struct {
	Name  string                     `json:"name"`
	Roles map[string]json.RawMessage `json:"roles"`
}

// Parse decodes the /offices/config payload: a list of
// {name, roles: {RoleName: {LevelName: {...}}}} objects.
func Parse(data []byte) ([]Office, error) {
	var raw []rawOffice
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode offices config: %w", err)
	}

	list := make([]Office, 0, len(raw))
	for _, ro := range raw {
		if ro.Name == "" {
			return nil, fmt.Errorf("office without a name in offices config")
		}
		office := Office{Name: ro.Name}

		roleNames := make([]string, 0, len(ro.Roles))
		for name := range ro.Roles {
			roleNames = append(roleNames, name)
		}
		sort.Strings(roleNames)

		for _, name := range roleNames {
			role, err := parseRole(name, ro.Roles[name])
			if err != nil {
				return nil, fmt.Errorf("office %s: %w", ro.Name, err)
			}
			office.Roles = append(office.Roles, role)
		}
		list = append(list, office)
	}
	return list, nil
}

// parseRole resolves the role shape once. An explicit "levels" object or any
// key naming a known level makes the role leveled; anything else is flat.
func parseRole(name string, data json.RawMessage) (Role, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Role{}, fmt.Errorf("role %s: expected object: %w", name, err)
	}

	if nested, ok := fields["levels"]; ok {
		var levelFields map[string]json.RawMessage
		if err := json.Unmarshal(nested, &levelFields); err != nil {
			return Role{}, fmt.Errorf("role %s: levels: expected object: %w", name, err)
		}
		return leveledRole(name, levelFields)
	}

	for key := range fields {
		if _, err := levers.ParseLevel(key); err == nil {
			return leveledRole(name, fields)
		}
	}

	role := Role{Name: name, Kind: Flat}
	if fte, ok := fields["fte"]; ok {
		if err := json.Unmarshal(fte, &role.FTE); err != nil {
			return Role{}, fmt.Errorf("role %s: fte: %w", name, err)
		}
	}
	return role, nil
}

func leveledRole(name string, fields map[string]json.RawMessage) (Role, error) {
	role := Role{Name: name, Kind: Leveled, Levels: make(map[levers.Level]LevelData)}
	for key, value := range fields {
		level, err := levers.ParseLevel(key)
		if err != nil {
			// Non-level metadata on a leveled role is ignored.
			continue
		}
		var data LevelData
		if err := json.Unmarshal(value, &data); err != nil {
			return Role{}, fmt.Errorf("role %s level %s: %w", name, key, err)
		}
		role.Levels[level] = data
	}
	return role, nil
}
