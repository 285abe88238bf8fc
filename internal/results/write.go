package results

import (
	"context"
	"fmt"
	"time"
)

// Run identifies one independent soup run within an experiment.
type Run struct {
	// Token is the caller-supplied unique run identifier.
	Token string

	// Experiment names the experiment this run belongs to.
	Experiment string

	// Seed is the hex rendering of the soup's 32-byte seed.
	Seed string

	// Config carries the run's effective configuration for later
	// inspection. Stored as canonical JSON.
	Config map[string]any
}

// Sample is one poll of a run's series.
type Sample struct {
	// Index is the zero-based poll index within the run.
	Index int

	// Attempts is the soup's collision counter at sample time.
	Attempts int64

	// Payload is the probe's result. Stored as canonical JSON.
	Payload map[string]any
}

// CreateRun registers a run. Duplicate tokens are silently ignored so
// re-running an aggregation over an existing database is idempotent.
func (s *Store) CreateRun(ctx context.Context, run Run) error {
	configJSON, err := MarshalCanonical(run.Config)
	if err != nil {
		return fmt.Errorf("create run %s: %w", run.Token, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (token, experiment, seed, config, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, run.Token, run.Experiment, run.Seed, string(configJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("create run %s: %w", run.Token, err)
	}
	return nil
}

// AppendSamples writes a run's samples in one transaction. Duplicate
// (run, idx) pairs are silently ignored, keeping retried fan-ins
// idempotent.
func (s *Store) AppendSamples(ctx context.Context, runToken string, samples []Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append samples for %s: %w", runToken, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_token, idx, attempts, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_token, idx) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("append samples for %s: %w", runToken, err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		payloadJSON, err := MarshalCanonical(sample.Payload)
		if err != nil {
			return fmt.Errorf("append sample %d for %s: %w", sample.Index, runToken, err)
		}
		if _, err := stmt.ExecContext(ctx, runToken, sample.Index, sample.Attempts, string(payloadJSON)); err != nil {
			return fmt.Errorf("append sample %d for %s: %w", sample.Index, runToken, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append samples for %s: %w", runToken, err)
	}
	return nil
}
