package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeConfig = `
name: smoke
runs: 2
run_length: 10
poll_interval: 5
seed: 7
seed_population: 4
soup:
  reduction_limit: 100
  discard_identity: false
  discard_copy_actions: false
  discard_free_variables: false
  maintain_population_size: false
gen:
  size: 1
  freevar_probability: 1
  max_free_vars: 3
probes:
  entropy: true
`

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadExperimentConfig_Valid(t *testing.T) {
	cfg, err := LoadExperimentConfig(writeConfig(t, smokeConfig))
	require.NoError(t, err)
	assert.Equal(t, "smoke", cfg.Name)
	assert.Equal(t, 2, cfg.Runs)
	assert.Equal(t, uint64(7), cfg.Seed)

	params := cfg.Params()
	require.NoError(t, params.Validate())
	assert.Equal(t, 100, params.Soup.ReductionLimit)
	assert.False(t, params.Soup.DiscardIdentity)
	assert.False(t, params.Soup.MaintainConstantPopulationSize)
	// Unset overlay fields keep the classic defaults.
	assert.Equal(t, []string{`\x.\y.x y`}, params.Soup.Rules)
	assert.False(t, params.Soup.DiscardParents)
	assert.Equal(t, 1, params.Gen.Size)
}

func TestLoadExperimentConfig_UnknownField(t *testing.T) {
	_, err := LoadExperimentConfig(writeConfig(t, "name: x\nruns: 1\nrun_lenght: 5\npoll_interval: 1\nseed_population: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_lenght")
}

func TestLoadExperimentConfig_SchemaViolation(t *testing.T) {
	cases := []string{
		// runs below range
		"name: x\nruns: 0\nrun_length: 5\npoll_interval: 1\nseed_population: 2\n",
		// empty name
		"name: ''\nruns: 1\nrun_length: 5\npoll_interval: 1\nseed_population: 2\n",
		// probability out of range
		"name: x\nruns: 1\nrun_length: 5\npoll_interval: 1\nseed_population: 2\ngen:\n  freevar_probability: 1.5\n",
	}

	for _, text := range cases {
		_, err := LoadExperimentConfig(writeConfig(t, text))
		assert.Error(t, err, text)
	}
}

func TestLoadExperimentConfig_MissingFile(t *testing.T) {
	_, err := LoadExperimentConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExperimentConfig_ProbeDefaultsToEntropy(t *testing.T) {
	cfg := &ExperimentConfig{Name: "x"}
	_, columns, err := cfg.Probe()
	require.NoError(t, err)
	assert.Equal(t, []string{"entropy", "unique", "population"}, columns)
}

func TestExperimentConfig_ProbeComposition(t *testing.T) {
	cfg := &ExperimentConfig{
		Probes: ProbesConfig{
			Entropy: true,
			TopK:    3,
			Track:   []TrackSpec{{Label: "id", Term: `\x.x`}},
			Motif:   &MotifSpec{Label: "motif", Term: `\x.x x`, Threshold: 5},
		},
	}
	_, columns, err := cfg.Probe()
	require.NoError(t, err)
	assert.Equal(t, []string{"entropy", "unique", "population", "top", "id", "motif"}, columns)
}

func TestExperimentConfig_ProbeBadTerm(t *testing.T) {
	cfg := &ExperimentConfig{
		Probes: ProbesConfig{Track: []TrackSpec{{Label: "bad", Term: `((`}}},
	}
	_, _, err := cfg.Probe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
