package soup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akratos/alchemy/internal/lambda"
)

func TestExpressionCounts_SumToPopulationSize(t *testing.T) {
	s := New()
	a := lambda.MustParse(`\x.\y.x`)
	b := lambda.MustParse(`\x.\y.y`)
	s.Perturb(a, a, b)

	counts := s.ExpressionCounts()
	require.Len(t, counts, 2)
	assert.True(t, lambda.AlphaEq(a, counts[0].Term))
	assert.Equal(t, 2, counts[0].Count)
	assert.True(t, lambda.AlphaEq(b, counts[1].Term))
	assert.Equal(t, 1, counts[1].Count)

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	assert.Equal(t, s.Len(), total)
}

func TestExpressionCounts_AlphaEquivalentMembersCollapse(t *testing.T) {
	s := New()
	s.Perturb(lambda.MustParse(`\x.x`), lambda.MustParse(`\y.y`))
	counts := s.ExpressionCounts()
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Count)
}

func TestUniqueExpressions_FirstEncounteredOrder(t *testing.T) {
	s := New()
	a := lambda.MustParse(`\x.\y.x`)
	b := lambda.MustParse(`\x.\y.y`)
	c := lambda.MustParse(`\x.x`)
	s.Perturb(b, a, b, c, a)

	unique := s.UniqueExpressions()
	require.Len(t, unique, 3)
	assert.True(t, lambda.AlphaEq(b, unique[0]))
	assert.True(t, lambda.AlphaEq(a, unique[1]))
	assert.True(t, lambda.AlphaEq(c, unique[2]))
}

func TestPopulationEntropy_Degenerate(t *testing.T) {
	s := New()
	assert.Zero(t, s.PopulationEntropy(), "empty population")

	s.Perturb(identities(7)...)
	assert.Zero(t, s.PopulationEntropy(), "single-class population")
}

func TestPopulationEntropy_TwoOneSplit(t *testing.T) {
	s := New()
	a := lambda.MustParse(`\x.\y.x`)
	b := lambda.MustParse(`\x.\y.y`)
	s.Perturb(a, a, b)

	// -(2/3)log10(2/3) - (1/3)log10(1/3)
	assert.InDelta(t, 0.2764346, s.PopulationEntropy(), 1e-6)
}

func TestPopulationEntropy_UniformDistribution(t *testing.T) {
	s := New()
	s.Perturb(
		lambda.MustParse(`\x.x`),
		lambda.MustParse(`\x.\y.x`),
		lambda.MustParse(`\x.\y.y`),
		lambda.MustParse(`\x.\y.x y`),
		lambda.MustParse(`\x.\y.y x`),
		lambda.MustParse(`\x. x x`),
		lambda.MustParse(`\x.\y.\z. x z y`),
		lambda.MustParse(`\x.\y.\z. y x z`),
		lambda.MustParse(`\x.\y.\z. z x y`),
		lambda.MustParse(`\f.\x. f (f x)`),
	)
	require.Equal(t, 10, len(s.UniqueExpressions()))
	// Ten equiprobable classes: exactly one decade of entropy.
	assert.InDelta(t, 1.0, s.PopulationEntropy(), 1e-12)
}

func TestKMostFrequentExprs(t *testing.T) {
	s := New()
	a := lambda.MustParse(`\x.\y.x`)
	b := lambda.MustParse(`\x.\y.y`)
	c := lambda.MustParse(`\x.x`)
	// b first encountered, then a (x2), then c (x2).
	s.Perturb(b, a, c, a, c)

	t.Run("descending with first-encountered tie break", func(t *testing.T) {
		top := s.KMostFrequentExprs(2)
		require.Len(t, top, 2)
		assert.True(t, lambda.AlphaEq(a, top[0]), "a and c tie at 2; a was seen first")
		assert.True(t, lambda.AlphaEq(c, top[1]))
	})

	t.Run("k beyond unique count is clamped", func(t *testing.T) {
		top := s.KMostFrequentExprs(10)
		require.Len(t, top, 3)
		assert.True(t, lambda.AlphaEq(b, top[2]))
	})

	t.Run("non-increasing counts", func(t *testing.T) {
		top := s.KMostFrequentExprs(3)
		prev := s.Len() + 1
		for _, term := range top {
			n := s.PopulationOf(term)
			assert.LessOrEqual(t, n, prev)
			prev = n
		}
	})

	t.Run("empty and zero k", func(t *testing.T) {
		assert.Empty(t, New().KMostFrequentExprs(5))
		assert.Empty(t, s.KMostFrequentExprs(0))
	})
}

func TestPopulationOf_UsesIsomorphism(t *testing.T) {
	s := New()
	s.Perturb(lambda.MustParse(`\x.x`), lambda.MustParse(`\y.y`), lambda.MustParse(`\x.\y.x`))
	assert.Equal(t, 2, s.PopulationOf(lambda.Identity()),
		"differently named copies are the same class")
	assert.Equal(t, 0, s.PopulationOf(lambda.MustParse(`\x.\y.y`)))
}

func TestStats_ThroughPollingProbe(t *testing.T) {
	s := pollSoup(t, 9)
	samples, err := SimulateAndPoll(s, 30, 10, func(v *PopulationView) float64 {
		return v.PopulationEntropy()
	})
	require.NoError(t, err)
	require.Len(t, samples, 3)
	for _, h := range samples {
		assert.Zero(t, h, "identity soup never diversifies")
	}
}
