package output

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/lever-planner/internal/matrix"
	"github.com/iwvelando/lever-planner/internal/overrides"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

func sampleReport() Report {
	changes := overrides.Summary{{
		LeverType: levers.Recruitment,
		Rate:      0.0251,
		Levels:    []levers.Level{levers.A, levers.AC},
		Months:    []levers.Month{1, 2, 3},
		Offices:   []string{"Stockholm"},
	}}
	return Report{
		Summary: changes.Lines(),
		Changes: changes,
		Overrides: matrix.Overrides{
			"Stockholm": {Roles: map[string]map[string]map[string]float64{
				"Consultant": {
					"A": {"utr_1": 0.9, "recruitment_12": 0.025, "recruitment_2": 0.0251},
				},
			}},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyFormat(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Recruitment for levels A, AC set to 2.51% for months 1–3 in Stockholm")
	assert.Contains(t, out, "--- Overrides for office Stockholm ---")
	assert.Contains(t, out, "Consultant | A | utr_1 | 90.00%")

	// Lever type order first, then ascending month.
	first := strings.Index(out, "recruitment_2")
	second := strings.Index(out, "recruitment_12")
	third := strings.Index(out, "utr_1")
	assert.True(t, first < second && second < third, "unexpected key order:\n%s", out)
}

func TestPrettyFormatEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyFormat(&buf, Report{}))
	assert.Equal(t, "--- Applied levers ---\nNo levers applied.\n", buf.String())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONFormat(&buf, sampleReport()))

	var decoded struct {
		Summary   []string `json:"summary"`
		Changes   []map[string]any
		Overrides map[string]struct {
			Roles map[string]map[string]map[string]float64 `json:"roles"`
		} `json:"office_overrides"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Summary, 1)
	require.Len(t, decoded.Changes, 1)
	assert.Equal(t, "recruitment", decoded.Changes[0]["leverType"])
	assert.InDelta(t, 0.0251, decoded.Changes[0]["effectiveMonthlyRate"], 1e-12)
	assert.InDelta(t, 0.9, decoded.Overrides["Stockholm"].Roles["Consultant"]["A"]["utr_1"], 1e-12)
}

func TestYAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAMLFormat(&buf, sampleReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, decoded, "office_overrides")
	assert.Contains(t, buf.String(), "effectiveMonthlyRate: 0.0251")
}

func TestRender(t *testing.T) {
	for _, format := range []string{"pretty", "json", "yaml"} {
		var buf bytes.Buffer
		assert.NoError(t, Render(&buf, format, sampleReport()), format)
		assert.NotZero(t, buf.Len(), format)
	}

	var buf bytes.Buffer
	assert.Error(t, Render(&buf, "csv", sampleReport()))
}
