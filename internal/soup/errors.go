package soup

import (
	"errors"
	"fmt"
)

// EngineError represents a fatal engine error. Soft reaction failures
// (budget exhaustion, filter rejection) are NOT errors; they surface as
// a nil outcome from React and only ever show up in aggregate counts.
//
// Fatal errors are either construction failures (unparsable rule text)
// or caller bugs (reacting an underpopulated soup). They terminate the
// owning run and must never be swallowed.
type EngineError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any (e.g. a lambda.ParseError).
	Err error
}

// ErrorCode categorizes fatal engine errors.
type ErrorCode string

const (
	// ErrCodeRuleParse indicates a reaction-rule text failed to parse
	// at construction. No partial engine is produced.
	ErrCodeRuleParse ErrorCode = "RULE_PARSE"

	// ErrCodeUnderpopulated indicates React was called with fewer than
	// two population members. This is a controller or configuration
	// defect, distinct from a soft reaction failure.
	ErrCodeUnderpopulated ErrorCode = "UNDERPOPULATED"

	// ErrCodeBadConfig indicates an invalid configuration value.
	ErrCodeBadConfig ErrorCode = "BAD_CONFIG"
)

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsUnderpopulated reports whether err is an underpopulation fault.
// Handles wrapped errors via errors.As.
func IsUnderpopulated(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Code == ErrCodeUnderpopulated
}
