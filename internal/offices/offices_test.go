package offices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/lever-planner/pkg/levers"
)

const officesPayload = `[
  {
    "name": "Stockholm",
    "roles": {
      "Consultant": {"A": {"fte": 40}, "AC": {"fte": 35.5}, "PiP": {"fte": 4}},
      "Sales": {"levels": {"M": {"fte": 6}}},
      "Operations": {"fte": 12}
    }
  },
  {
    "name": "Oslo",
    "roles": {
      "Consultant": {"A": {"fte": 10}, "C": {"fte": 8}},
      "Operations": {"fte": 3}
    }
  }
]`

func TestParse(t *testing.T) {
	list, err := Parse([]byte(officesPayload))
	require.NoError(t, err)
	require.Len(t, list, 2)

	stockholm := list[0]
	assert.Equal(t, "Stockholm", stockholm.Name)
	require.Len(t, stockholm.Roles, 3)

	// Roles are sorted by name.
	assert.Equal(t, "Consultant", stockholm.Roles[0].Name)
	assert.Equal(t, Leveled, stockholm.Roles[0].Kind)
	assert.Equal(t, 35.5, stockholm.Roles[0].Levels[levers.AC].FTE)

	assert.Equal(t, "Operations", stockholm.Roles[1].Name)
	assert.Equal(t, Flat, stockholm.Roles[1].Kind)
	assert.Equal(t, 12.0, stockholm.Roles[1].FTE)

	assert.Equal(t, "Sales", stockholm.Roles[2].Name)
	assert.Equal(t, Leveled, stockholm.Roles[2].Kind)
	assert.Equal(t, 6.0, stockholm.Roles[2].Levels[levers.M].FTE)

	assert.InDelta(t, 40+35.5+4+6+12, stockholm.TotalFTE(), 1e-9)
}

func TestSummariesAndLeveledRoles(t *testing.T) {
	list, err := Parse([]byte(officesPayload))
	require.NoError(t, err)

	summaries := Summaries(list)
	require.Len(t, summaries, 2)
	assert.Equal(t, Summary{Name: "Oslo", TotalFTE: 21}, summaries[1])

	assert.Equal(t, []string{"Consultant", "Sales"}, LeveledRoles(list))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"name": "not a list"}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[{"roles": {}}]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[{"name": "Munich", "roles": {"Consultant": 7}}]`))
	assert.Error(t, err)
}

func TestRoleKindString(t *testing.T) {
	assert.Equal(t, "leveled", Leveled.String())
	assert.Equal(t, "flat", Flat.String())
}
