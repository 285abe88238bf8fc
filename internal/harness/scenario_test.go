package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/compose-commit.yaml")
	require.NoError(t, err)
	assert.Equal(t, "compose-commit", s.Name)
	assert.Len(t, s.Population, 2)
	assert.Len(t, s.Collisions, 1)
	require.NotNil(t, s.Collisions[0].Expect)
	assert.Equal(t, OutcomeCommit, s.Collisions[0].Expect.Outcome)
	assert.Len(t, s.Assertions, 5)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: unknown field must fail loudly
population:
  - term: '\x.x'
asertions:
  - type: population_count
    count: 1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asertions")
}

func TestLoadScenario_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "no name",
			text: "description: d\npopulation: [{term: '\\x.x'}]\nassertions: [{type: population_count, count: 1}]\n",
			want: "name is required",
		},
		{
			name: "no description",
			text: "name: n\npopulation: [{term: '\\x.x'}]\nassertions: [{type: population_count, count: 1}]\n",
			want: "description is required",
		},
		{
			name: "empty population",
			text: "name: n\ndescription: d\npopulation: []\nassertions: [{type: population_count, count: 1}]\n",
			want: "population is required",
		},
		{
			name: "no assertions",
			text: "name: n\ndescription: d\npopulation: [{term: '\\x.x'}]\n",
			want: "assertions list is required",
		},
		{
			name: "unknown assertion type",
			text: "name: n\ndescription: d\npopulation: [{term: '\\x.x'}]\nassertions: [{type: nonsense}]\n",
			want: "unknown assertion type",
		},
		{
			name: "bad outcome",
			text: "name: n\ndescription: d\npopulation: [{term: '\\x.x'}]\ncollisions: [{left: '\\x.x', right: '\\x.x', expect: {outcome: explode}}]\nassertions: [{type: population_count, count: 1}]\n",
			want: "outcome must be",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
