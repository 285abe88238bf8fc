// Package gen synthesizes random lambda terms for seeding soup
// populations. Terms are grown as random binary trees over a node
// budget, with leaves resolved to bound or free variables.
//
// A BTreeGen owns its random source, seeded at construction, so two
// generators with the same config produce the same term sequence.
package gen

import (
	"fmt"
	"math/rand/v2"

	"github.com/akratos/alchemy/internal/lambda"
)

// Standardization fixes the free-variable numbering convention of
// generated terms.
type Standardization string

const (
	// StandardizationPrefix renumbers free variables to consecutive
	// slots in order of first appearance, the same convention the
	// parser uses. This makes generated terms canonical across
	// generators.
	StandardizationPrefix Standardization = "prefix"

	// StandardizationNone leaves the raw random free indices in place.
	StandardizationNone Standardization = "none"
)

// Config describes the shape distribution of generated terms.
type Config struct {
	// Size is the node budget per term. Must be >= 1.
	Size int

	// FreeVarProbability is the chance that a variable leaf becomes a
	// free variable instead of referencing an enclosing binder.
	FreeVarProbability float64

	// MaxFreeVars bounds the pool of distinct free slots a term can
	// draw from. Must be >= 1 when FreeVarProbability > 0.
	MaxFreeVars int

	// Standardization selects the free-variable numbering convention.
	Standardization Standardization

	// Seed is the 32-byte generator seed.
	Seed [32]byte
}

// Validate checks config invariants once, before construction.
func (c Config) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("gen: size must be >= 1, got %d", c.Size)
	}
	if c.FreeVarProbability < 0 || c.FreeVarProbability > 1 {
		return fmt.Errorf("gen: free-variable probability must be in [0,1], got %g", c.FreeVarProbability)
	}
	if c.MaxFreeVars < 1 {
		// Even with a zero probability, leaves outside any binder can
		// only be free variables, so the pool must be non-empty.
		return fmt.Errorf("gen: max free vars must be >= 1, got %d", c.MaxFreeVars)
	}
	switch c.Standardization {
	case StandardizationPrefix, StandardizationNone:
	default:
		return fmt.Errorf("gen: unknown standardization %q", c.Standardization)
	}
	return nil
}

// BTreeGen generates random binary-tree terms. Single-owner, not safe
// for concurrent use; give each goroutine its own generator.
type BTreeGen struct {
	cfg Config
	rng *rand.Rand
}

// FromConfig validates cfg and constructs a generator with its own
// ChaCha8 source seeded from cfg.Seed.
func FromConfig(cfg Config) (*BTreeGen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BTreeGen{
		cfg: cfg,
		rng: rand.New(rand.NewChaCha8(cfg.Seed)),
	}, nil
}

// Generate produces one random term.
func (g *BTreeGen) Generate() *lambda.Term {
	t := g.grow(0, g.cfg.Size)
	if g.cfg.Standardization == StandardizationPrefix {
		t = standardizePrefix(t)
	}
	return t
}

// GenerateN produces count fresh terms.
func (g *BTreeGen) GenerateN(count int) []*lambda.Term {
	out := make([]*lambda.Term, count)
	for i := range out {
		out[i] = g.Generate()
	}
	return out
}

// grow builds a subtree at the given binder depth with at most budget
// nodes. Applications split the remaining budget at a random point.
func (g *BTreeGen) grow(depth, budget int) *lambda.Term {
	if budget <= 1 {
		return g.leaf(depth)
	}
	if budget == 2 || g.rng.IntN(2) == 0 {
		return lambda.Abs(g.grow(depth+1, budget-1))
	}
	// Leave at least one node for each side.
	left := 1 + g.rng.IntN(budget-2)
	return lambda.App(g.grow(depth, left), g.grow(depth, budget-1-left))
}

// leaf resolves to a variable. At depth zero every leaf is free.
func (g *BTreeGen) leaf(depth int) *lambda.Term {
	free := depth == 0 || g.rng.Float64() < g.cfg.FreeVarProbability
	if free {
		return lambda.Var(depth + 1 + g.rng.IntN(g.cfg.MaxFreeVars))
	}
	return lambda.Var(1 + g.rng.IntN(depth))
}

// standardizePrefix renumbers free variables to consecutive slots past
// the binder depth, in order of first appearance, matching the parser's
// convention.
func standardizePrefix(t *lambda.Term) *lambda.Term {
	var order []int // free slot (index - depth) by first appearance
	slot := func(excess int) int {
		for i, e := range order {
			if e == excess {
				return i + 1
			}
		}
		order = append(order, excess)
		return len(order)
	}
	var walk func(t *lambda.Term, depth int) *lambda.Term
	walk = func(t *lambda.Term, depth int) *lambda.Term {
		switch t.Kind() {
		case lambda.KindVar:
			if t.Index() <= depth {
				return t
			}
			return lambda.Var(depth + slot(t.Index()-depth))
		case lambda.KindAbs:
			return lambda.Abs(walk(t.Body(), depth+1))
		default:
			return lambda.App(walk(t.Fn(), depth), walk(t.Arg(), depth))
		}
	}
	return walk(t, 0)
}
