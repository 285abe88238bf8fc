package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akratos/alchemy/internal/results"
)

func seedResultsDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := results.Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.CreateRun(ctx, results.Run{
		Token: "run-a", Experiment: "sweep", Seed: "00",
		Config: map[string]any{"runs": 1},
	}))
	require.NoError(t, store.AppendSamples(ctx, "run-a", []results.Sample{
		{Index: 0, Attempts: 5, Payload: map[string]any{"entropy": 0.5}},
	}))
	return path
}

func TestRunsCommand_List(t *testing.T) {
	path := seedResultsDB(t)
	out, err := execute(t, NewRootCommand(), "runs", "sweep", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "run-a seed=00")
	assert.Contains(t, out, "1 runs")
}

func TestRunsCommand_Samples(t *testing.T) {
	path := seedResultsDB(t)
	out, err := execute(t, NewRootCommand(), "runs", "sweep", "--db", path, "--samples", "run-a")
	require.NoError(t, err)
	assert.Contains(t, out, `{"entropy":0.5}`)
}

func TestRunsCommand_MissingDB(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "runs", "sweep")
	require.Error(t, err)
}
