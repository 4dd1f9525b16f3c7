// Package output provides utilities for formatting and displaying lever
// plans: applied change summaries, the audit trail and exported overrides.
package output

import (
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/lever-planner/internal/matrix"
	"github.com/iwvelando/lever-planner/internal/overrides"
	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
	"github.com/iwvelando/lever-planner/pkg/mathutil"
)

// Report is everything a plan run can display.
type Report struct {
	Summary   []string          `json:"summary" yaml:"summary"`
	Changes   overrides.Summary `json:"changes,omitempty" yaml:"changes,omitempty"`
	Overrides matrix.Overrides  `json:"office_overrides,omitempty" yaml:"office_overrides,omitempty"`
}

// Render writes report to w in the named format.
func Render(w io.Writer, format string, report Report) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, report)
	}
	return fmt.Errorf("unsupported output format %s", format)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, report Report) error {
	p := message.NewPrinter(language.English)

	summary := report.Summary
	if len(summary) == 0 {
		summary = []string{constants.NoLeversApplied}
	}
	if _, err := fmt.Fprintf(w, "--- Applied levers ---\n"); err != nil {
		return err
	}
	for _, line := range summary {
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}

	for _, office := range sortedKeys(report.Overrides) {
		if _, err := fmt.Fprintf(w, "\n--- Overrides for office %s ---\n", office); err != nil {
			return err
		}
		fmt.Fprintf(w, "Role | Level | Lever | Rate\n")
		fmt.Fprintf(w, "____ | _____ | _____ | ____\n")
		roles := report.Overrides[office].Roles
		for _, role := range sortedKeys(roles) {
			for _, level := range levers.AllLevels() {
				values, ok := roles[role][string(level)]
				if !ok {
					continue
				}
				for _, key := range orderedLeverKeys(values) {
					_, err := p.Fprintf(w, "%s | %s | %s | %.2f%%\n",
						role, level, key, mathutil.ToPercentage(values[key]))
					if err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// YAMLFormat outputs the report as YAML.
func YAMLFormat(w io.Writer, report Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// orderedLeverKeys orders lever keys by lever type then month. Keys that do
// not parse sort last, alphabetically.
func orderedLeverKeys(values map[string]float64) []string {
	keys := sortedKeys(values)
	sort.SliceStable(keys, func(i, j int) bool {
		ki, erri := levers.ParseLeverKey(keys[i])
		kj, errj := levers.ParseLeverKey(keys[j])
		switch {
		case erri != nil || errj != nil:
			return erri == nil && errj != nil
		case ki.Type != kj.Type:
			return ki.Type.Index() < kj.Type.Index()
		}
		return ki.Month < kj.Month
	})
	return keys
}
