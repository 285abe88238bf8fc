package soup

import (
	"iter"
	"math"
	"sort"

	"github.com/akratos/alchemy/internal/lambda"
)

// PopulationView is a read-only window onto a soup's population, handed
// to polling probes and backing the statistics layer. It carries no
// snapshot: under the single-owner model nothing mutates the soup while
// a probe runs.
type PopulationView struct {
	s *Soup
}

// View returns the soup's read-only population view.
func (s *Soup) View() *PopulationView {
	return &PopulationView{s: s}
}

// Len returns the population size.
func (v *PopulationView) Len() int { return v.s.Len() }

// Expressions iterates over the population members.
func (v *PopulationView) Expressions() iter.Seq[*lambda.Term] { return v.s.Expressions() }

// Collisions returns the soup's attempt counter.
func (v *PopulationView) Collisions() int64 { return v.s.Collisions() }

// ExpressionCount pairs a distinct expression (one representative per
// alpha-equivalence class) with its multiplicity.
type ExpressionCount struct {
	Term  *lambda.Term
	Count int
}

// ExpressionCounts returns the multiplicity of every distinct
// expression, in first-encountered population order. Counts always sum
// to exactly the population size.
func (v *PopulationView) ExpressionCounts() []ExpressionCount {
	index := make(map[string]int)
	var counts []ExpressionCount
	for _, e := range v.s.expressions {
		key := e.Key()
		if i, ok := index[key]; ok {
			counts[i].Count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, ExpressionCount{Term: e, Count: 1})
	}
	return counts
}

// UniqueExpressions returns one representative per alpha-equivalence
// class present, in first-encountered order.
func (v *PopulationView) UniqueExpressions() []*lambda.Term {
	counts := v.ExpressionCounts()
	out := make([]*lambda.Term, len(counts))
	for i, c := range counts {
		out[i] = c.Term
	}
	return out
}

// PopulationEntropy returns the base-10 Shannon entropy of the
// empirical class distribution: -sum p_i log10 p_i with p_i the class
// share. Zero for an empty population and for a single-class one.
func (v *PopulationView) PopulationEntropy() float64 {
	n := float64(v.s.Len())
	if n == 0 {
		return 0
	}
	entropy := 0.0
	for _, c := range v.ExpressionCounts() {
		p := float64(c.Count) / n
		entropy -= p * math.Log10(p)
	}
	// A single class gives p=1, log10(1)=0; clamp the -0.0 that
	// floating subtraction can leave behind.
	if entropy == 0 {
		return 0
	}
	return entropy
}

// KMostFrequentExprs returns the up-to-k distinct expressions with the
// highest multiplicity, descending. Ties break by first-encountered
// population order, so results are reproducible.
func (v *PopulationView) KMostFrequentExprs(k int) []*lambda.Term {
	counts := v.ExpressionCounts()
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if k > len(counts) {
		k = len(counts)
	}
	if k < 0 {
		k = 0
	}
	out := make([]*lambda.Term, k)
	for i := 0; i < k; i++ {
		out[i] = counts[i].Term
	}
	return out
}

// PopulationOf counts the members alpha-equivalent to ref. This is the
// isomorphism predicate, the same comparison the collision filters use,
// not a pointer or exact-syntax lookup.
func (v *PopulationView) PopulationOf(ref *lambda.Term) int {
	count := 0
	for _, e := range v.s.expressions {
		if lambda.AlphaEq(e, ref) {
			count++
		}
	}
	return count
}

// Statistics conveniences on Soup itself, delegating to the view.

// ExpressionCounts is shorthand for View().ExpressionCounts.
func (s *Soup) ExpressionCounts() []ExpressionCount { return s.View().ExpressionCounts() }

// UniqueExpressions is shorthand for View().UniqueExpressions.
func (s *Soup) UniqueExpressions() []*lambda.Term { return s.View().UniqueExpressions() }

// PopulationEntropy is shorthand for View().PopulationEntropy.
func (s *Soup) PopulationEntropy() float64 { return s.View().PopulationEntropy() }

// KMostFrequentExprs is shorthand for View().KMostFrequentExprs.
func (s *Soup) KMostFrequentExprs(k int) []*lambda.Term { return s.View().KMostFrequentExprs(k) }

// PopulationOf is shorthand for View().PopulationOf.
func (s *Soup) PopulationOf(ref *lambda.Term) int { return s.View().PopulationOf(ref) }
