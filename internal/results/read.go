package results

import (
	"context"
	"encoding/json"
	"fmt"
)

// ReadSamples returns a run's series ordered by poll index. The empty
// series is a non-nil empty slice.
func (s *Store) ReadSamples(ctx context.Context, runToken string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, attempts, payload
		FROM samples
		WHERE run_token = ?
		ORDER BY idx ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read samples for %s: %w", runToken, err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var sample Sample
		var payloadJSON string
		if err := rows.Scan(&sample.Index, &sample.Attempts, &payloadJSON); err != nil {
			return nil, fmt.Errorf("scan sample for %s: %w", runToken, err)
		}
		if err := json.Unmarshal([]byte(payloadJSON), &sample.Payload); err != nil {
			return nil, fmt.Errorf("decode sample %d for %s: %w", sample.Index, runToken, err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples for %s: %w", runToken, err)
	}
	return samples, nil
}

// ListRuns returns the registered runs of an experiment, ordered by
// token for deterministic aggregation.
func (s *Store) ListRuns(ctx context.Context, experiment string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, experiment, seed, config
		FROM runs
		WHERE experiment = ?
		ORDER BY token COLLATE BINARY ASC
	`, experiment)
	if err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", experiment, err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var configJSON string
		if err := rows.Scan(&run.Token, &run.Experiment, &run.Seed, &configJSON); err != nil {
			return nil, fmt.Errorf("scan run for %s: %w", experiment, err)
		}
		if err := json.Unmarshal([]byte(configJSON), &run.Config); err != nil {
			return nil, fmt.Errorf("decode config for run %s: %w", run.Token, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs for %s: %w", experiment, err)
	}
	return runs, nil
}
