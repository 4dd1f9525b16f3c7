// Package matrix holds the per-office lever override matrix. Cells are keyed
// by office, level and a validated lever key, and always hold monthly rates
// in [0,1].
package matrix

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iwvelando/lever-planner/internal/baseline"
	"github.com/iwvelando/lever-planner/pkg/levers"
	"github.com/iwvelando/lever-planner/pkg/mathutil"
)

var (
	// ErrNotApplicable is returned for lever keys a level does not carry,
	// i.e. progression on PiP.
	ErrNotApplicable = errors.New("lever does not apply to level")

	// ErrInvalidKey is returned for unknown levels, lever types or months.
	ErrInvalidKey = errors.New("invalid matrix key")
)

type cell struct {
	office string
	level  levers.Level
	key    levers.LeverKey
}

// Matrix maps office -> level -> lever key -> monthly rate.
//
// The first write to an (office, level) pair fills every lever key that
// applies to the level with its default, so a touched pair always holds
// exactly its applicable key set.
type Matrix struct {
	cells  map[string]map[levers.Level]map[levers.LeverKey]float64
	edited map[cell]struct{}
}

// New returns an empty matrix that reads as pure defaults.
func New() *Matrix {
	return &Matrix{
		cells:  make(map[string]map[levers.Level]map[levers.LeverKey]float64),
		edited: make(map[cell]struct{}),
	}
}

func validate(level levers.Level, t levers.LeverType, month levers.Month) (levers.LeverKey, error) {
	if !level.Valid() {
		return levers.LeverKey{}, fmt.Errorf("%w: unknown level %q", ErrInvalidKey, level)
	}
	key, err := levers.NewLeverKey(t, month)
	if err != nil {
		return levers.LeverKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if !t.AppliesTo(level) {
		return levers.LeverKey{}, fmt.Errorf("%w: %s on %s", ErrNotApplicable, t, level)
	}
	return key, nil
}

// Get returns the stored monthly rate for a cell, or its default when the
// cell has never been written.
func (m *Matrix) Get(office string, level levers.Level, t levers.LeverType, month levers.Month) (float64, error) {
	key, err := validate(level, t, month)
	if err != nil {
		return 0, err
	}
	if v, ok := m.cells[office][level][key]; ok {
		return v, nil
	}
	return Default(t, level, month), nil
}

// Set overwrites a cell with a monthly rate; the last write wins. Values are
// clamped into [0,1].
func (m *Matrix) Set(office string, level levers.Level, t levers.LeverType, month levers.Month, value float64) error {
	key, err := validate(level, t, month)
	if err != nil {
		return err
	}
	m.write(office, level, key, value)
	m.edited[cell{office: office, level: level, key: key}] = struct{}{}
	return nil
}

func (m *Matrix) write(office string, level levers.Level, key levers.LeverKey, value float64) {
	m.ensure(office, level)[key] = mathutil.Clamp(value, 0, 1)
}

func (m *Matrix) ensure(office string, level levers.Level) map[levers.LeverKey]float64 {
	byLevel, ok := m.cells[office]
	if !ok {
		byLevel = make(map[levers.Level]map[levers.LeverKey]float64)
		m.cells[office] = byLevel
	}
	keys, ok := byLevel[level]
	if !ok {
		applicable := levers.KeysForLevel(level)
		keys = make(map[levers.LeverKey]float64, len(applicable))
		for _, k := range applicable {
			keys[k] = Default(k.Type, level, k.Month)
		}
		byLevel[level] = keys
	}
	return keys
}

// Edited reports whether a cell was explicitly set during this session.
func (m *Matrix) Edited(office string, level levers.Level, t levers.LeverType, month levers.Month) bool {
	_, ok := m.edited[cell{office: office, level: level, key: levers.LeverKey{Type: t, Month: month}}]
	return ok
}

// SeedFromBaseline writes recruitment and churn rates for role from a
// normalized baseline into every listed office. Cells set explicitly during
// the session are left alone. Unknown levels and malformed month keys are
// skipped. When the baseline spans several years the latest YYYYMM key for a
// calendar month wins. It returns the number of cells written.
func (m *Matrix) SeedFromBaseline(offices []string, b baseline.Baseline, role string) int {
	seeded := 0
	for _, t := range []levers.LeverType{levers.Recruitment, levers.Churn} {
		section, _ := b.Section(t)
		data, ok := section[role]
		if !ok {
			continue
		}
		for levelName, months := range data {
			level, err := levers.ParseLevel(levelName)
			if err != nil {
				continue
			}
			for month, value := range latestPerMonth(months) {
				key := levers.LeverKey{Type: t, Month: month}
				for _, office := range offices {
					if _, edited := m.edited[cell{office: office, level: level, key: key}]; edited {
						continue
					}
					m.write(office, level, key, value)
					seeded++
				}
			}
		}
	}
	return seeded
}

// latestPerMonth folds YYYYMM keys onto calendar months, keeping the value
// of the latest key for each month.
func latestPerMonth(months map[string]float64) map[levers.Month]float64 {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[levers.Month]float64, len(keys))
	for _, k := range keys {
		month, ok := baseline.MonthFromKey(k)
		if !ok {
			continue
		}
		out[month] = months[k]
	}
	return out
}

// Reset discards every entry, returning the matrix to defaults.
func (m *Matrix) Reset() {
	m.cells = make(map[string]map[levers.Level]map[levers.LeverKey]float64)
	m.edited = make(map[cell]struct{})
}

// Offices returns the offices holding stored entries, sorted.
func (m *Matrix) Offices() []string {
	names := make([]string, 0, len(m.cells))
	for name := range m.cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Touched returns the levels of office holding stored entries, in seniority
// order.
func (m *Matrix) Touched(office string) []levers.Level {
	var out []levers.Level
	for _, level := range levers.AllLevels() {
		if _, ok := m.cells[office][level]; ok {
			out = append(out, level)
		}
	}
	return out
}

// Entries returns a copy of the stored entries for an (office, level) pair,
// or nil if the pair was never touched.
func (m *Matrix) Entries(office string, level levers.Level) map[levers.LeverKey]float64 {
	keys, ok := m.cells[office][level]
	if !ok {
		return nil
	}
	out := make(map[levers.LeverKey]float64, len(keys))
	for k, v := range keys {
		out[k] = v
	}
	return out
}

// Len returns the number of stored cells.
func (m *Matrix) Len() int {
	n := 0
	for _, byLevel := range m.cells {
		for _, keys := range byLevel {
			n += len(keys)
		}
	}
	return n
}
