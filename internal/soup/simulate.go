package soup

import "fmt"

// SimulateFor performs exactly n React attempts and returns the number
// of successes. Soft failures count against n; the failure rate of a
// run is 1 - successes/n. A fatal React error aborts immediately.
func (s *Soup) SimulateFor(n int) (int, error) {
	successes := 0
	for i := 0; i < n; i++ {
		outcome, err := s.React()
		if err != nil {
			return successes, err
		}
		if outcome != nil {
			successes++
		}
	}
	return successes, nil
}

// SimulateAndPoll performs n React attempts on s, invoking the
// read-only probe after every interval-th attempt and always after the
// final one. It returns the collected samples in order: exactly
// ceil(n/interval) of them, the trailing partial interval included.
//
// Probes receive a PopulationView and must not retain it past the
// call.
func SimulateAndPoll[T any](s *Soup, n, interval int, probe func(*PopulationView) T) ([]T, error) {
	return poll(s, n, interval, func(v *PopulationView) (T, bool) {
		return probe(v), false
	})
}

// SimulateAndPollWithKiller is SimulateAndPoll with cooperative early
// stop: each probe also returns a stop flag, checked only at poll
// boundaries. The sample that raised the flag is kept; remaining
// attempts are abandoned. In-flight collisions always run to completion
// or to the step-budget cutoff, so cancellation granularity is the
// polling interval.
func SimulateAndPollWithKiller[T any](s *Soup, n, interval int, probe func(*PopulationView) (T, bool)) ([]T, error) {
	return poll(s, n, interval, probe)
}

func poll[T any](s *Soup, n, interval int, probe func(*PopulationView) (T, bool)) ([]T, error) {
	if interval < 1 {
		return nil, &EngineError{
			Code:    ErrCodeBadConfig,
			Message: fmt.Sprintf("polling interval must be >= 1, got %d", interval),
		}
	}
	var samples []T
	if n > 0 {
		samples = make([]T, 0, (n+interval-1)/interval)
	}
	view := s.View()
	for i := 1; i <= n; i++ {
		if _, err := s.React(); err != nil {
			return samples, err
		}
		if i%interval == 0 || i == n {
			sample, stop := probe(view)
			samples = append(samples, sample)
			if stop {
				break
			}
		}
	}
	return samples, nil
}
