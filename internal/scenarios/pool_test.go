package scenarios

import (
	"strings"
	"testing"

	"iso-games-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPoolsAreValid(t *testing.T) {
	pools, err := Embedded()
	require.NoError(t, err)

	for _, game := range []string{QualityQuest, RequirementRally, UsabilityUniverse} {
		pool, ok := pools[game]
		require.True(t, ok, "missing pool %s", game)
		assert.GreaterOrEqual(t, len(pool), 5, game)

		v := Validate(pool)
		assert.True(t, v.Valid, "%s: %v", game, v.Errors)

		st := Describe(pool)
		assert.Equal(t, len(pool), st.Total)
		assert.Equal(t, []string{"en", "es"}, st.Languages)
	}
}

func TestParseRequiresGame(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"scenarios": []}`))
	require.Error(t, err)

	f, err := Parse(strings.NewReader(`{"game": "g", "scenarios": [{"id": "s1"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "g", f.Game)
	assert.Len(t, f.Scenarios, 1)
}

func TestValidateReportsProblems(t *testing.T) {
	pool := []domain.Scenario{
		{
			ID:            "a",
			Category:      "X",
			Difficulty:    "extreme",
			Content:       map[string]string{"en": "short"},
			Options:       map[string][]domain.Option{"en": {{Label: "A", Text: "one"}, {Label: "B", Text: "two"}}},
			CorrectOption: "C",
			Explanation:   map[string]string{"en": "because"},
		},
		{ID: "a"},
	}

	v := Validate(pool)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Errors, `a: correctOption "C" not among en options`)
	assert.Contains(t, v.Errors, "a: duplicate id")
	assert.Contains(t, v.Warnings, `a: unknown difficulty "extreme"`)
	assert.Contains(t, v.Warnings, "a: en content seems too short")
}

func TestDescribeCountsUnknown(t *testing.T) {
	st := Describe([]domain.Scenario{{ID: "x"}, {ID: "y", Category: "C", Difficulty: "easy"}})
	assert.Equal(t, 1, st.Categories["Unknown"])
	assert.Equal(t, 1, st.Categories["C"])
	assert.Equal(t, 1, st.Difficulties["easy"])
	assert.Empty(t, st.Languages)
}
