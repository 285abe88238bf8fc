package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Report renders the result as a deterministic text block for golden
// comparison. Entropy is fixed to six decimals; everything else is
// exact.
func (r *Result) Report(name string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)

	total := 0
	for _, line := range r.Population {
		total += line.Count
	}
	fmt.Fprintf(&b, "population: %d members, %d classes\n", total, len(r.Population))
	for _, line := range r.Population {
		fmt.Fprintf(&b, "  %d x %s\n", line.Count, line.Term)
	}
	fmt.Fprintf(&b, "entropy: %.6f\n", r.Entropy)

	if len(r.Trace) > 0 {
		fmt.Fprintf(&b, "collisions:\n")
		for i, c := range r.Trace {
			fmt.Fprintf(&b, "  [%d] %s + %s -> %s\n", i, c.Left, c.Right, outcomeName(c.Committed))
			for j, out := range c.Outputs {
				fmt.Fprintf(&b, "      output %d: %s (%d steps)\n", j, out, c.Steps[j])
			}
		}
	}

	fmt.Fprintf(&b, "pass: %t\n", r.Pass)
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its report against
// testdata/golden/{scenario.Name}.golden. Regenerate golden files with
// `go test ./internal/harness -update`.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, result.Report(scenario.Name))
	return nil
}
