package experiment

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akratos/alchemy/internal/gen"
	"github.com/akratos/alchemy/internal/results"
	"github.com/akratos/alchemy/internal/soup"
)

// flatParams describes a sweep whose every attempt deterministically
// succeeds: the population holds only free variables and applications
// of free variables, so rule(a)(b) reduces to the redex-free a b in
// two steps and no discard filter is armed.
func flatParams(runs int) Params {
	return Params{
		Name: "flat",
		Soup: soup.Config{
			Rules:          []string{`\x.\y.x y`},
			ReductionLimit: 100,
			Seed:           soup.SeedFromUint64(11),
		},
		Gen: gen.Config{
			Size:               1,
			FreeVarProbability: 1,
			MaxFreeVars:        3,
			Standardization:    gen.StandardizationPrefix,
			Seed:               soup.SeedFromUint64(23),
		},
		SeedPopulation: 4,
		Runs:           runs,
		RunLength:      10,
		PollInterval:   4,
	}
}

func populationProbe(v *soup.PopulationView) (map[string]any, bool) {
	return map[string]any{"population": v.Len()}, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestDeriveSeed(t *testing.T) {
	base := soup.SeedFromUint64(42)

	assert.Equal(t, base, DeriveSeed(base, 0), "run zero keeps the base seed")
	assert.Equal(t, DeriveSeed(base, 3), DeriveSeed(base, 3))

	seen := map[soup.Seed]bool{}
	for i := uint64(0); i < 16; i++ {
		seen[DeriveSeed(base, i)] = true
	}
	assert.Len(t, seen, 16, "derived seeds are pairwise distinct")
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestParamsValidate(t *testing.T) {
	p := flatParams(2)
	require.NoError(t, p.Validate())

	bad := p
	bad.Name = ""
	assert.Error(t, bad.Validate())

	bad = p
	bad.Runs = 0
	assert.Error(t, bad.Validate())

	bad = p
	bad.RunLength = 0
	assert.Error(t, bad.Validate())

	bad = p
	bad.PollInterval = 0
	assert.Error(t, bad.Validate())

	bad = p
	bad.SeedPopulation = 1
	assert.Error(t, bad.Validate())
}

func TestSweep_DeterministicSeries(t *testing.T) {
	r := &Runner{Tokens: NewFixedGenerator("t0", "t1", "t2"), Logger: discardLogger()}
	p := flatParams(3)

	runs, err := r.Sweep(context.Background(), p, populationProbe)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	tokens := map[string]bool{}
	for _, run := range runs {
		require.NoError(t, run.Err)
		tokens[run.Token] = true

		// Every attempt succeeds and grows the population by one, so
		// the series is fixed: polls at attempts 4, 8, and the trailing
		// 10 see populations 8, 12, 14.
		require.Len(t, run.Samples, 3)
		wantAttempts := []int64{4, 8, 10}
		wantPopulation := []int{8, 12, 14}
		for i, sample := range run.Samples {
			assert.Equal(t, i, sample.Index)
			assert.Equal(t, wantAttempts[i], sample.Attempts)
			assert.Equal(t, wantPopulation[i], sample.Payload["population"])
		}
		assert.Equal(t, int64(10), run.Attempts)
	}
	// Token-to-run assignment depends on goroutine scheduling; only the
	// set is fixed.
	assert.Equal(t, map[string]bool{"t0": true, "t1": true, "t2": true}, tokens)
}

func TestSweep_RunsAreIndependent(t *testing.T) {
	r := &Runner{Tokens: UUIDv7Generator{}, Logger: discardLogger()}
	p := flatParams(2)

	first, err := r.Sweep(context.Background(), p, populationProbe)
	require.NoError(t, err)
	second, err := r.Sweep(context.Background(), p, populationProbe)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Seed, second[i].Seed, "run %d seed is a pure function of (base, index)", i)
		assert.Equal(t, first[i].Samples[0].Payload, second[i].Samples[0].Payload)
	}
	assert.NotEqual(t, first[0].Seed, first[1].Seed)
}

func TestSweep_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Tokens: UUIDv7Generator{}, Logger: discardLogger()}
	runs, err := r.Sweep(ctx, flatParams(2), populationProbe)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.ErrorIs(t, run.Err, context.Canceled)
		assert.Empty(t, run.Token)
	}
}

func TestSweep_KillerStopsEarly(t *testing.T) {
	r := &Runner{Tokens: UUIDv7Generator{}, Logger: discardLogger()}
	p := flatParams(1)

	// The stop flag trips at the first poll boundary.
	probe := func(v *soup.PopulationView) (map[string]any, bool) {
		return map[string]any{"population": v.Len()}, true
	}
	runs, err := r.Sweep(context.Background(), p, probe)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NoError(t, runs[0].Err)
	require.Len(t, runs[0].Samples, 1, "flag-raising sample is kept, the rest abandoned")
	assert.Equal(t, int64(4), runs[0].Samples[0].Attempts)
}

func TestFailureRates(t *testing.T) {
	r := &Runner{Tokens: UUIDv7Generator{}, Logger: discardLogger()}

	p := flatParams(2)
	runs, err := r.FailureRates(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		require.NoError(t, run.Err)
		assert.Equal(t, 10, run.Successes)
		assert.Equal(t, int64(10), run.Attempts)
		assert.Equal(t, 0.0, run.FailureRate())
	}

	// Arming the free-variable filter against an all-free-variable
	// population rejects every collision.
	p.Soup.DiscardFreeVariableExpressions = true
	runs, err = r.FailureRates(context.Background(), p)
	require.NoError(t, err)
	for _, run := range runs {
		require.NoError(t, run.Err)
		assert.Equal(t, 0, run.Successes)
		assert.Equal(t, int64(10), run.Attempts)
		assert.Equal(t, 1.0, run.FailureRate())
	}
}

func TestFailureRate_EmptyRun(t *testing.T) {
	assert.Equal(t, 0.0, RunResult{}.FailureRate())
}

func TestPersist_RoundTrip(t *testing.T) {
	store, err := results.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	r := &Runner{Tokens: NewFixedGenerator("run-0", "run-1"), Logger: discardLogger()}
	p := flatParams(2)
	runs, err := r.Sweep(context.Background(), p, populationProbe)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Persist(ctx, store, p, runs))
	// Persisting again is idempotent.
	require.NoError(t, Persist(ctx, store, p, runs))

	stored, err := store.ListRuns(ctx, "flat")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "run-0", stored[0].Token)
	assert.Equal(t, "run-1", stored[1].Token)
	assert.Equal(t, []any{`\x.\y.x y`}, stored[0].Config["rules"])

	samples, err := store.ReadSamples(ctx, "run-0")
	require.NoError(t, err)
	require.Len(t, samples, 3)
	// JSON round trip turns numbers into float64.
	assert.Equal(t, float64(8), samples[0].Payload["population"])
	assert.Equal(t, int64(10), samples[2].Attempts)
}
