package experiment

import (
	"github.com/akratos/alchemy/internal/lambda"
	"github.com/akratos/alchemy/internal/soup"
)

// Stock probes. Each returns a Probe closed over its parameters; probes
// compose with And when a sweep needs more than one series.

// EntropyProbe samples the diversity trio: base-10 population entropy,
// distinct-class count, and population size.
func EntropyProbe() Probe {
	return func(v *soup.PopulationView) (map[string]any, bool) {
		return map[string]any{
			"entropy":    v.PopulationEntropy(),
			"unique":     len(v.UniqueExpressions()),
			"population": v.Len(),
		}, false
	}
}

// PopulationOfProbe samples the multiplicity of the alpha-equivalence
// class of ref under the given column label. The classic use is
// tracking the Church-addition combinator through a perturbed soup.
func PopulationOfProbe(label string, ref *lambda.Term) Probe {
	return func(v *soup.PopulationView) (map[string]any, bool) {
		return map[string]any{label: v.PopulationOf(ref)}, false
	}
}

// RecursiveCountProbe samples how many members are self-applications,
// the syntactic shape that precedes divergent collisions.
func RecursiveCountProbe() Probe {
	return func(v *soup.PopulationView) (map[string]any, bool) {
		count := 0
		for e := range v.Expressions() {
			if e.IsRecursive() {
				count++
			}
		}
		return map[string]any{"recursive": count}, false
	}
}

// TopKProbe samples the k most frequent classes as printed terms,
// most frequent first.
func TopKProbe(k int) Probe {
	return func(v *soup.PopulationView) (map[string]any, bool) {
		top := v.KMostFrequentExprs(k)
		printed := make([]any, len(top))
		for i, e := range top {
			printed[i] = e.String()
		}
		return map[string]any{"top": printed}, false
	}
}

// MotifSearchProbe samples the multiplicity of ref's class and raises
// the stop flag once it reaches threshold, ending the run early with
// the flag-raising sample kept. Used to hunt for self-reproducing
// motifs without paying for the full run length.
func MotifSearchProbe(label string, ref *lambda.Term, threshold int) Probe {
	return func(v *soup.PopulationView) (map[string]any, bool) {
		count := v.PopulationOf(ref)
		return map[string]any{label: count}, count >= threshold
	}
}

// And merges several probes into one: payloads are merged left to
// right (later probes win key collisions) and the stop flag is the OR
// of the parts.
func And(probes ...Probe) Probe {
	return func(v *soup.PopulationView) (map[string]any, bool) {
		merged := make(map[string]any)
		stop := false
		for _, p := range probes {
			payload, s := p(v)
			for k, val := range payload {
				merged[k] = val
			}
			stop = stop || s
		}
		return merged, stop
	}
}
