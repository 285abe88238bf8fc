package soup

import (
	"encoding/binary"
	"fmt"
)

// Seed is the 32-byte seed for a soup's instance-local random source.
type Seed = [32]byte

// SeedFromUint64 spreads a small integer over a full seed. Handy for
// experiment fan-out where run i gets a derived seed.
func SeedFromUint64(v uint64) Seed {
	var s Seed
	binary.LittleEndian.PutUint64(s[:8], v)
	return s
}

// Config describes a soup. Immutable after FromConfig: the engine
// copies what it needs and never reads the caller's value again.
type Config struct {
	// Rules are the reaction rules in classic notation. Each rule is a
	// binary combinator applied as rule(left)(right). Parse failure is
	// fatal at construction.
	Rules []string

	// ReductionLimit bounds beta reduction per collision candidate.
	// Hitting the limit aborts the whole collision.
	ReductionLimit int

	// SizeCutoff is the configured candidate-size budget. It is
	// carried and validated but not enforced in the collision path;
	// see DESIGN.md for the status of this knob.
	SizeCutoff int

	// DiscardIdentity drops collisions whose result is the identity
	// combinator.
	DiscardIdentity bool

	// DiscardCopyActions drops collisions whose result reproduces
	// either parent.
	DiscardCopyActions bool

	// DiscardFreeVariableExpressions drops collisions whose result
	// still contains free variables.
	DiscardFreeVariableExpressions bool

	// DiscardParents controls whether the two sampled parents are
	// consumed by a successful collision. When false they return to
	// the population alongside the rule outputs.
	DiscardParents bool

	// MaintainConstantPopulationSize removes one uniform random member
	// per reaction rule after a successful commit, so population size
	// is invariant across successful reactions.
	MaintainConstantPopulationSize bool

	// Seed seeds the soup's own ChaCha8 source.
	Seed Seed
}

// DefaultConfig mirrors the classic setup: the single composition rule
// \x.\y.x y, a generous reduction budget, constant population size, and
// all discard filters on except parent discarding.
func DefaultConfig() Config {
	return Config{
		Rules:                          []string{`\x.\y.x y`},
		ReductionLimit:                 100000,
		SizeCutoff:                     1000,
		DiscardIdentity:                true,
		DiscardCopyActions:             true,
		DiscardFreeVariableExpressions: true,
		DiscardParents:                 false,
		MaintainConstantPopulationSize: true,
	}
}

// Validate checks everything that can be checked without parsing.
func (c Config) Validate() error {
	if len(c.Rules) == 0 {
		return &EngineError{Code: ErrCodeBadConfig, Message: "at least one reaction rule is required"}
	}
	if c.ReductionLimit < 1 {
		return &EngineError{Code: ErrCodeBadConfig, Message: fmt.Sprintf("reduction limit must be >= 1, got %d", c.ReductionLimit)}
	}
	if c.SizeCutoff < 0 {
		return &EngineError{Code: ErrCodeBadConfig, Message: fmt.Sprintf("size cutoff must be >= 0, got %d", c.SizeCutoff)}
	}
	return nil
}
