package harness

import (
	"fmt"
	"math"

	"github.com/akratos/alchemy/internal/lambda"
	"github.com/akratos/alchemy/internal/soup"
)

// defaultEntropyTolerance absorbs decimal-literal rounding in scenario
// files; entropy computation itself is deterministic.
const defaultEntropyTolerance = 1e-9

// evaluateAssertions checks every assertion against the final
// population, recording failures on the result.
func evaluateAssertions(assertions []Assertion, v *soup.PopulationView, result *Result) {
	for i, a := range assertions {
		switch a.Type {
		case AssertPopulationCount:
			if got := v.Len(); got != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: population size is %d, expected %d", i, got, a.Count))
			}

		case AssertUniqueCount:
			if got := len(v.UniqueExpressions()); got != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: %d distinct classes, expected %d", i, got, a.Count))
			}

		case AssertEntropy:
			tolerance := a.Tolerance
			if tolerance == 0 {
				tolerance = defaultEntropyTolerance
			}
			if got := v.PopulationEntropy(); math.Abs(got-a.Value) > tolerance {
				result.AddError(fmt.Sprintf("assertions[%d]: entropy is %g, expected %g within %g", i, got, a.Value, tolerance))
			}

		case AssertPopulationOf:
			ref, err := lambda.Parse(a.Term)
			if err != nil {
				result.AddError(fmt.Sprintf("assertions[%d].term (%q): %v", i, a.Term, err))
				continue
			}
			if got := v.PopulationOf(ref); got != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: class of %s has multiplicity %d, expected %d", i, ref, got, a.Count))
			}

		case AssertTopK:
			checkTopK(i, a, v, result)
		}
	}
}

func checkTopK(i int, a Assertion, v *soup.PopulationView, result *Result) {
	top := v.KMostFrequentExprs(a.K)
	if len(top) != len(a.Terms) {
		result.AddError(fmt.Sprintf("assertions[%d]: top-%d has %d classes, expected %d", i, a.K, len(top), len(a.Terms)))
		return
	}
	for j, text := range a.Terms {
		want, err := lambda.Parse(text)
		if err != nil {
			result.AddError(fmt.Sprintf("assertions[%d].terms[%d] (%q): %v", i, j, text, err))
			continue
		}
		if !lambda.AlphaEq(top[j], want) {
			result.AddError(fmt.Sprintf("assertions[%d]: top-%d rank %d is %s, expected %s", i, a.K, j, top[j], want))
		}
	}
}
