// Package soup implements the reaction/population engine: a multiset of
// lambda terms colliding pairwise under a fixed rule set, with
// configurable filters, a polling simulation controller, and a
// statistics layer over the population.
//
// A Soup is single-owner and single-threaded: all mutation happens
// synchronously inside React and the Simulate functions on the
// goroutine that holds the instance, and the random source is
// instance-local. Two soups built from identical configs, fed identical
// insertion sequences, and driven by identical call sequences produce
// identical trajectories. Parallel experimentation runs many
// independent soups, never one soup from many goroutines.
package soup

import (
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/akratos/alchemy/internal/lambda"
)

// Soup holds the population and the fixed reaction machinery.
//
// INVARIANTS:
//   - rules never change after construction
//   - population size never goes negative
//   - with MaintainConstantPopulationSize on, size is restored after
//     every successful reaction
//   - a failed collision leaves the population exactly as it found it
type Soup struct {
	expressions []*lambda.Term
	rules       []*lambda.Term
	cfg         Config
	rng         *rand.Rand
	identity    *lambda.Term
	collisions  int64
}

// CollisionRecord captures one rule's output in a successful reaction:
// the output's maximum nesting depth and the reduction steps spent.
type CollisionRecord struct {
	Size       int
	Reductions int
}

// ReactionOutcome describes one successful collision. It exists for
// observability only and never influences subsequent control flow.
type ReactionOutcome struct {
	// LeftSize and RightSize are the parents' maximum nesting depths.
	LeftSize  int
	RightSize int

	// Collisions holds one record per reaction rule, in rule order.
	Collisions []CollisionRecord
}

// New constructs a soup from DefaultConfig. The default rule text is a
// constant, so this cannot fail.
func New() *Soup {
	s, err := FromConfig(DefaultConfig())
	if err != nil {
		panic(err) // unreachable: default config is well-formed
	}
	return s
}

// FromConfig validates cfg, parses its rule texts, and returns an empty
// soup with its own seeded random source. A rule parse failure is fatal
// and produces no partial engine.
func FromConfig(cfg Config) (*Soup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules := make([]*lambda.Term, len(cfg.Rules))
	for i, text := range cfg.Rules {
		t, err := lambda.Parse(text)
		if err != nil {
			return nil, &EngineError{
				Code:    ErrCodeRuleParse,
				Message: fmt.Sprintf("rule %d (%q)", i, text),
				Err:     err,
			}
		}
		rules[i] = t
	}
	return &Soup{
		rules:    rules,
		cfg:      cfg,
		rng:      rand.New(rand.NewChaCha8(cfg.Seed)),
		identity: lambda.Identity(),
	}, nil
}

// Perturb appends terms to the population unchanged: no reduction, no
// filtering, no deduplication. This is the single insertion primitive;
// callers tag semantic intent (seed expressions, test expressions, ...)
// on their side.
func (s *Soup) Perturb(terms ...*lambda.Term) {
	s.expressions = append(s.expressions, terms...)
}

// Len returns the current population size.
func (s *Soup) Len() int {
	return len(s.expressions)
}

// Expressions iterates over the current population members. Read-only;
// callers must not drive the soup while iterating.
func (s *Soup) Expressions() iter.Seq[*lambda.Term] {
	return func(yield func(*lambda.Term) bool) {
		for _, e := range s.expressions {
			if !yield(e) {
				return
			}
		}
	}
}

// Collisions returns the number of React attempts (successes and soft
// failures both) since construction.
func (s *Soup) Collisions() int64 {
	return s.collisions
}

// Rules returns the parsed reaction rules, in configuration order.
func (s *Soup) Rules() []*lambda.Term {
	out := make([]*lambda.Term, len(s.rules))
	copy(out, s.rules)
	return out
}

// React performs one atomic collision.
//
// Two distinct members are drawn uniformly without replacement (draw
// from [0,n), remove, draw from [0,n-1), remove). Every rule's
// candidate rule(left)(right) is reduced and filtered speculatively;
// only if every rule succeeds are the outputs committed. On any abort
// the parents go back and the population is untouched.
//
// Returns (outcome, nil) on success, (nil, nil) on a soft failure, and
// a fatal *EngineError when the population holds fewer than two
// members.
func (s *Soup) React() (*ReactionOutcome, error) {
	n := len(s.expressions)
	if n < 2 {
		return nil, &EngineError{
			Code:    ErrCodeUnderpopulated,
			Message: fmt.Sprintf("cannot react a population of %d members", n),
		}
	}
	s.collisions++

	left := s.swapRemove(s.rng.IntN(n))
	right := s.swapRemove(s.rng.IntN(n - 1))

	res, ok := s.Collide(left, right)
	if !ok {
		// All-or-nothing: restore the parents, keep nothing.
		s.expressions = append(s.expressions, left, right)
		return nil, nil
	}

	s.expressions = append(s.expressions, res.Outputs...)
	if !s.cfg.DiscardParents {
		s.expressions = append(s.expressions, left, right)
	}
	if s.cfg.MaintainConstantPopulationSize {
		// The compensating removal is coupled to the rule count, not
		// to the net size change. Exact rule, preserve it.
		for range s.rules {
			s.swapRemove(s.rng.IntN(len(s.expressions)))
		}
	}

	return &ReactionOutcome{
		LeftSize:   left.MaxDepth(),
		RightSize:  right.MaxDepth(),
		Collisions: res.Records,
	}, nil
}

// CollisionResult groups the outputs of evaluating every rule against
// one parent pair, in rule order.
type CollisionResult struct {
	Outputs []*lambda.Term
	Records []CollisionRecord
}

// Collide runs the speculative collision pipeline against an explicit
// parent pair, without sampling and without committing anything to the
// population. ok reports whether every rule succeeded; on failure the
// partial outputs are discarded, matching React's all-or-nothing
// contract.
//
// React uses this internally; callers use it to script deterministic
// collisions against fixture populations.
func (s *Soup) Collide(left, right *lambda.Term) (*CollisionResult, bool) {
	res := &CollisionResult{
		Outputs: make([]*lambda.Term, 0, len(s.rules)),
		Records: make([]CollisionRecord, 0, len(s.rules)),
	}
	for _, rule := range s.rules {
		result, steps, ok := s.collide(rule, left, right)
		if !ok {
			return nil, false
		}
		res.Outputs = append(res.Outputs, result)
		res.Records = append(res.Records, CollisionRecord{Size: result.MaxDepth(), Reductions: steps})
	}
	return res, true
}

// collide evaluates one rule against the parents: reduce
// rule(left)(right) under the step budget, then apply the filters in
// precedence order (identity, copy action, free variables). Reports
// ok=false on budget exhaustion or any filter hit.
func (s *Soup) collide(rule, left, right *lambda.Term) (*lambda.Term, int, bool) {
	candidate := lambda.Apply(rule, left, right)
	reduced, steps := lambda.Reduce(candidate, s.cfg.ReductionLimit)
	if steps == s.cfg.ReductionLimit {
		return nil, 0, false
	}

	if s.cfg.DiscardIdentity && lambda.AlphaEq(reduced, s.identity) {
		return nil, 0, false
	}
	isCopy := lambda.AlphaEq(reduced, left) || lambda.AlphaEq(reduced, right)
	if s.cfg.DiscardCopyActions && isCopy {
		return nil, 0, false
	}
	if s.cfg.DiscardFreeVariableExpressions && reduced.HasFreeVariables() {
		return nil, 0, false
	}
	return reduced, steps, true
}

// swapRemove removes and returns the i-th member in O(1), replacing it
// with the last one. Order is irrelevant to population semantics; this
// keeps the two-draw sampling protocol exactly uniform.
func (s *Soup) swapRemove(i int) *lambda.Term {
	last := len(s.expressions) - 1
	t := s.expressions[i]
	s.expressions[i] = s.expressions[last]
	s.expressions[last] = nil
	s.expressions = s.expressions[:last]
	return t
}
