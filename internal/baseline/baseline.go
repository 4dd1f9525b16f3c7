// Package baseline normalizes baseline payloads returned by different backend
// versions into a single level-first shape.
//
// Two layouts exist for the per-role data of each lever:
//
//	level-first: {"A": {"202501": 0.02, ...}, ...}
//	month-first: {"202501": {"A": 0.02, ...}, ...}
//
// Payloads may carry an explicit top-level "shape" tag; untagged payloads fall
// back to sniffing the keys, which exists for legacy data only.
package baseline

import (
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

// Shape identifies the nesting order of per-role baseline data.
type Shape string

const (
	ShapeUnknown    Shape = ""
	ShapeLevelFirst Shape = "level_first"
	ShapeMonthFirst Shape = "month_first"
)

const (
	shapeField       = "shape"
	recruitmentField = "recruitment"
	churnField       = "churn"
)

// LevelFirst maps level name -> month key (YYYYMM) -> value.
type LevelFirst map[string]map[string]float64

// Baseline is the canonical, level-first form of a baseline payload keyed by
// role name. Its maps are never nil.
type Baseline struct {
	Recruitment map[string]LevelFirst `json:"recruitment" yaml:"recruitment"`
	Churn       map[string]LevelFirst `json:"churn" yaml:"churn"`
}

// Empty returns a valid baseline with no data.
func Empty() Baseline {
	return Baseline{
		Recruitment: make(map[string]LevelFirst),
		Churn:       make(map[string]LevelFirst),
	}
}

// Section returns the per-role data for a lever type. Only recruitment and
// churn are carried by baselines.
func (b Baseline) Section(t levers.LeverType) (map[string]LevelFirst, bool) {
	switch t {
	case levers.Recruitment:
		return b.Recruitment, true
	case levers.Churn:
		return b.Churn, true
	}
	return nil, false
}

// Normalize converts raw into a level-first Baseline. raw may be nil, a
// Baseline, a decoded JSON object, or JSON bytes. It never fails: malformed
// role data is replaced with an empty object and anything unrecognized
// yields Empty(). The input is never mutated.
func Normalize(raw any) Baseline {
	switch v := raw.(type) {
	case nil:
		return Empty()
	case Baseline:
		return v.clone()
	case *Baseline:
		if v == nil {
			return Empty()
		}
		return v.clone()
	case []byte:
		return normalizeBytes(v)
	case json.RawMessage:
		return normalizeBytes(v)
	case string:
		return normalizeBytes([]byte(v))
	case map[string]any:
		return normalizeObject(v)
	}
	return Empty()
}

func normalizeBytes(data []byte) Baseline {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Empty()
	}
	if obj, ok := decoded.(map[string]any); ok {
		return normalizeObject(obj)
	}
	return Empty()
}

func normalizeObject(obj map[string]any) Baseline {
	shape := ShapeUnknown
	if tag, ok := obj[shapeField].(string); ok {
		shape = ParseShape(tag)
	}
	return Baseline{
		Recruitment: normalizeSection(obj[recruitmentField], shape),
		Churn:       normalizeSection(obj[churnField], shape),
	}
}

func normalizeSection(section any, shape Shape) map[string]LevelFirst {
	out := make(map[string]LevelFirst)
	roles, ok := section.(map[string]any)
	if !ok {
		return out
	}
	for role, data := range roles {
		out[role] = NormalizeRole(data, shape)
	}
	return out
}

// ParseShape maps a shape tag to a Shape, returning ShapeUnknown for
// anything unrecognized so detection takes over.
func ParseShape(tag string) Shape {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "-", "_")) {
	case string(ShapeLevelFirst):
		return ShapeLevelFirst
	case string(ShapeMonthFirst):
		return ShapeMonthFirst
	}
	return ShapeUnknown
}

// NormalizeRole converts one role's data into level-first form. When shape
// is ShapeUnknown it is detected from the keys.
func NormalizeRole(data any, shape Shape) LevelFirst {
	obj, ok := data.(map[string]any)
	if !ok {
		return LevelFirst{}
	}
	if shape == ShapeUnknown {
		shape = Detect(obj)
	}
	if shape == ShapeMonthFirst {
		return transpose(obj)
	}
	return passThrough(obj)
}

// Detect sniffs the shape of a role's data: if its first key (in sorted
// order) looks like a YYYYMM month key the data is month-first.
func Detect(obj map[string]any) Shape {
	if len(obj) == 0 {
		return ShapeLevelFirst
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if IsMonthKey(keys[0]) {
		return ShapeMonthFirst
	}
	return ShapeLevelFirst
}

// IsMonthKey reports whether key is a six digit YYYYMM month key.
func IsMonthKey(key string) bool {
	_, ok := MonthFromKey(key)
	return ok
}

// MonthFromKey extracts the calendar month from a YYYYMM key.
func MonthFromKey(key string) (levers.Month, bool) {
	if len(key) != constants.BaselineMonthKeyLength {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	month, err := strconv.Atoi(key[4:])
	if err != nil {
		return 0, false
	}
	m := levers.Month(month)
	if !m.Valid() {
		return 0, false
	}
	return m, true
}

// transpose turns {month: {level: v}} into {level: {month: v}}. Level keys
// are unioned across months first; months a level lacks are omitted.
func transpose(obj map[string]any) LevelFirst {
	levelSet := make(map[string]struct{})
	for _, inner := range obj {
		levelsObj, ok := inner.(map[string]any)
		if !ok {
			continue
		}
		for level := range levelsObj {
			levelSet[level] = struct{}{}
		}
	}

	out := make(LevelFirst, len(levelSet))
	for level := range levelSet {
		out[level] = make(map[string]float64)
	}
	for month, inner := range obj {
		levelsObj, ok := inner.(map[string]any)
		if !ok {
			continue
		}
		for level, value := range levelsObj {
			if f, ok := toFloat(value); ok {
				out[level][month] = f
			}
		}
	}
	return out
}

func passThrough(obj map[string]any) LevelFirst {
	out := make(LevelFirst, len(obj))
	for level, inner := range obj {
		monthsObj, ok := inner.(map[string]any)
		if !ok {
			continue
		}
		months := make(map[string]float64, len(monthsObj))
		for month, value := range monthsObj {
			if f, ok := toFloat(value); ok {
				months[month] = f
			}
		}
		out[level] = months
	}
	return out
}

type float64er interface {
	Float64() (float64, error)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case float64er:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func (b Baseline) clone() Baseline {
	return Baseline{
		Recruitment: cloneSection(b.Recruitment),
		Churn:       cloneSection(b.Churn),
	}
}

func cloneSection(in map[string]LevelFirst) map[string]LevelFirst {
	out := make(map[string]LevelFirst, len(in))
	for role, data := range in {
		lf := make(LevelFirst, len(data))
		for level, months := range data {
			m := make(map[string]float64, len(months))
			for k, v := range months {
				m[k] = v
			}
			lf[level] = m
		}
		out[role] = lf
	}
	return out
}

// Normalizer normalizes payloads and fills missing roles and levels with
// empty skeletons so consumers can index them without probing.
type Normalizer struct {
	Roles  []string
	Levels []levers.Level
}

// Normalize normalizes raw and fills skeletons for the configured roles and
// levels.
func (n Normalizer) Normalize(raw any) Baseline {
	b := Normalize(raw)
	n.fill(b.Recruitment)
	n.fill(b.Churn)
	return b
}

func (n Normalizer) fill(section map[string]LevelFirst) {
	for _, role := range n.Roles {
		if _, ok := section[role]; !ok {
			section[role] = LevelFirst{}
		}
	}
	for _, data := range section {
		for _, level := range n.Levels {
			if _, ok := data[string(level)]; !ok {
				data[string(level)] = map[string]float64{}
			}
		}
	}
}
