// Package experiment drives fleets of independent soups: fan-out across
// goroutines, per-run derived seeds, polling probes, and delivery of
// the collected series to CSV or the results store.
//
// Parallelism lives entirely at this layer. Each run owns its soup and
// its generator; nothing is shared, and results are gathered only after
// a run finishes, so a sweep of K runs is exactly as reproducible as
// one run.
package experiment

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/akratos/alchemy/internal/gen"
	"github.com/akratos/alchemy/internal/results"
	"github.com/akratos/alchemy/internal/soup"
)

// Probe builds one sample payload from the population view, plus a stop
// flag checked at poll boundaries. Payload values must be canonical-JSON
// encodable (strings, ints, float64, bools, nested maps/arrays).
type Probe func(v *soup.PopulationView) (payload map[string]any, stop bool)

// Params describes one sweep: a base soup config fanned out over Runs
// independent instances.
type Params struct {
	// Name labels the sweep in logs and the results store.
	Name string

	// Soup is the base configuration. Run i derives its own seed from
	// Soup.Seed and i, so runs never share a random stream.
	Soup soup.Config

	// Gen configures the seeding generator. Each run gets its own
	// generator, derived the same way.
	Gen gen.Config

	// SeedPopulation is the number of generated terms inserted into
	// each run's soup before simulation.
	SeedPopulation int

	// Runs is the fan-out width.
	Runs int

	// RunLength is the number of collision attempts per run.
	RunLength int

	// PollInterval is the probe schedule; one sample per interval plus
	// the trailing partial interval.
	PollInterval int
}

// Validate checks sweep-level invariants. Soup and Gen configs validate
// themselves at construction time.
func (p Params) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("experiment: name is required")
	}
	if p.Runs < 1 {
		return fmt.Errorf("experiment: runs must be >= 1, got %d", p.Runs)
	}
	if p.RunLength < 1 {
		return fmt.Errorf("experiment: run length must be >= 1, got %d", p.RunLength)
	}
	if p.PollInterval < 1 {
		return fmt.Errorf("experiment: poll interval must be >= 1, got %d", p.PollInterval)
	}
	if p.SeedPopulation < 2 {
		return fmt.Errorf("experiment: seed population must be >= 2, got %d", p.SeedPopulation)
	}
	return nil
}

// RunResult is one run's collected series.
type RunResult struct {
	Token   string
	Seed    soup.Seed
	Samples []results.Sample

	// Successes and Attempts summarize the run; the failure rate is
	// 1 - Successes/Attempts.
	Successes int
	Attempts  int64

	// Err carries a fatal engine error. Soft reaction failures are
	// never errors; they only lower Successes.
	Err error
}

// Runner executes sweeps.
type Runner struct {
	Tokens RunTokenGenerator
	Logger *slog.Logger
}

// NewRunner wires a runner with UUIDv7 tokens and the default logger.
func NewRunner() *Runner {
	return &Runner{Tokens: UUIDv7Generator{}, Logger: slog.Default()}
}

// DeriveSeed gives run i its own seed: the base seed with the run index
// folded into the first eight bytes. Distinct runs always get distinct
// streams; the same (base, i) pair always gets the same one.
func DeriveSeed(base soup.Seed, i uint64) soup.Seed {
	derived := base
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], i)
	for b := 0; b < 8; b++ {
		derived[b] ^= idx[b]
	}
	return derived
}

// Sweep fans p out over p.Runs independent soups and gathers every
// run's polled series. Results arrive indexed by run, regardless of
// goroutine completion order. ctx cancellation is cooperative at run
// granularity: runs already in flight complete, queued ones are
// skipped.
func (r *Runner) Sweep(ctx context.Context, p Params, probe Probe) ([]RunResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make([]RunResult, p.Runs)
	var wg sync.WaitGroup
	for i := 0; i < p.Runs; i++ {
		if ctx.Err() != nil {
			out[i] = RunResult{Err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = r.runOne(p, uint64(i), probe)
		}(i)
	}
	wg.Wait()
	return out, nil
}

func (r *Runner) runOne(p Params, i uint64, probe Probe) RunResult {
	token := r.Tokens.Generate()
	logger := r.Logger.With("experiment", p.Name, "run", token)

	cfg := p.Soup
	cfg.Seed = DeriveSeed(p.Soup.Seed, i)
	s, err := soup.FromConfig(cfg)
	if err != nil {
		return RunResult{Token: token, Seed: cfg.Seed, Err: err}
	}

	gcfg := p.Gen
	gcfg.Seed = DeriveSeed(p.Gen.Seed, i)
	g, err := gen.FromConfig(gcfg)
	if err != nil {
		return RunResult{Token: token, Seed: cfg.Seed, Err: err}
	}
	s.Perturb(g.GenerateN(p.SeedPopulation)...)

	logger.Debug("run started", "population", s.Len(), "attempts", p.RunLength)

	samples, err := soup.SimulateAndPollWithKiller(s, p.RunLength, p.PollInterval,
		func(v *soup.PopulationView) (results.Sample, bool) {
			payload, stop := probe(v)
			return results.Sample{Attempts: v.Collisions(), Payload: payload}, stop
		})
	for idx := range samples {
		samples[idx].Index = idx
	}
	if err != nil {
		logger.Error("run aborted", "error", err)
		return RunResult{Token: token, Seed: cfg.Seed, Samples: samples, Err: err}
	}

	logger.Debug("run finished", "samples", len(samples), "collisions", s.Collisions())
	return RunResult{
		Token:    token,
		Seed:     cfg.Seed,
		Samples:  samples,
		Attempts: s.Collisions(),
	}
}

// FailureRates runs p without polling: each run is p.RunLength plain
// attempts, summarized as a success count. Fatal errors land in the
// run's Err.
func (r *Runner) FailureRates(ctx context.Context, p Params) ([]RunResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make([]RunResult, p.Runs)
	var wg sync.WaitGroup
	for i := 0; i < p.Runs; i++ {
		if ctx.Err() != nil {
			out[i] = RunResult{Err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := r.Tokens.Generate()
			cfg := p.Soup
			cfg.Seed = DeriveSeed(p.Soup.Seed, uint64(i))
			s, err := soup.FromConfig(cfg)
			if err != nil {
				out[i] = RunResult{Token: token, Seed: cfg.Seed, Err: err}
				return
			}
			gcfg := p.Gen
			gcfg.Seed = DeriveSeed(p.Gen.Seed, uint64(i))
			g, err := gen.FromConfig(gcfg)
			if err != nil {
				out[i] = RunResult{Token: token, Seed: cfg.Seed, Err: err}
				return
			}
			s.Perturb(g.GenerateN(p.SeedPopulation)...)
			successes, err := s.SimulateFor(p.RunLength)
			out[i] = RunResult{
				Token:     token,
				Seed:      cfg.Seed,
				Successes: successes,
				Attempts:  s.Collisions(),
				Err:       err,
			}
		}(i)
	}
	wg.Wait()
	return out, nil
}

// FailureRate is 1 - successes/attempts; zero for an empty run.
func (r RunResult) FailureRate() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return 1 - float64(r.Successes)/float64(r.Attempts)
}

// SeedHex renders the run's seed for storage.
func (r RunResult) SeedHex() string {
	return hex.EncodeToString(r.Seed[:])
}

// Persist registers every completed run and its samples under p.Name.
// Runs that failed before producing a token are skipped.
func Persist(ctx context.Context, store *results.Store, p Params, runs []RunResult) error {
	for _, run := range runs {
		if run.Token == "" {
			continue
		}
		err := store.CreateRun(ctx, results.Run{
			Token:      run.Token,
			Experiment: p.Name,
			Seed:       run.SeedHex(),
			Config: map[string]any{
				"rules":           toAnySlice(p.Soup.Rules),
				"reduction_limit": p.Soup.ReductionLimit,
				"run_length":      p.RunLength,
				"poll_interval":   p.PollInterval,
				"seed_population": p.SeedPopulation,
			},
		})
		if err != nil {
			return err
		}
		if err := store.AppendSamples(ctx, run.Token, run.Samples); err != nil {
			return err
		}
	}
	return nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
