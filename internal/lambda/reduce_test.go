package lambda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_SingleStep(t *testing.T) {
	term := App(Identity(), Var(1))
	got, steps := Reduce(term, 100)
	assert.Equal(t, 1, steps)
	assert.True(t, AlphaEq(Var(1), got))
}

func TestReduce_NormalFormIsFixed(t *testing.T) {
	got, steps := Reduce(Identity(), 100)
	assert.Equal(t, 0, steps)
	assert.True(t, AlphaEq(Identity(), got))
}

func TestReduce_ChurchArithmetic(t *testing.T) {
	sum, steps := Reduce(Apply(Add(), Church(2), Church(3)), 1000)
	require.Less(t, steps, 1000)
	assert.True(t, AlphaEq(Church(5), sum), "2+3 should reduce to Church 5, got %s", sum)

	three, steps := Reduce(Apply(Succ(), Church(2)), 1000)
	require.Less(t, steps, 1000)
	assert.True(t, AlphaEq(Church(3), three))
}

func TestReduce_BudgetExhaustion(t *testing.T) {
	omega := App(MustParse(`\x. x x`), MustParse(`\x. x x`))
	_, steps := Reduce(omega, 25)
	assert.Equal(t, 25, steps, "a diverging term must consume the whole budget")
}

func TestReduce_ExactBudgetIsIndistinguishableFromFailure(t *testing.T) {
	// Reaching normal form in exactly limit steps still reports
	// steps == limit; callers treat that as failure. The collision
	// path inherits this conservative contract.
	_, steps := Reduce(App(Identity(), Var(1)), 1)
	assert.Equal(t, 1, steps)
}

func TestReduce_CompositionRule(t *testing.T) {
	// ((\x.\y.x y) i) i with i the identity reduces to the identity.
	rule := MustParse(`\x.\y.x y`)
	got, steps := Reduce(Apply(rule, Identity(), Identity()), 100)
	require.Less(t, steps, 100)
	assert.True(t, AlphaEq(Identity(), got))
}

func TestReduce_SubstitutionShiftsFreeVariables(t *testing.T) {
	// (\x.\y.x) u must not capture u under the remaining binder:
	// the result is \y.u with u still pointing outside.
	k := MustParse(`\x.\y.x`)
	got, _ := Reduce(App(k, Var(1)), 100)
	want := Abs(Var(2))
	assert.True(t, AlphaEq(want, got), "got %s", got)
}
