package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure in the question-answer cycle.
// Every error surfaced to a caller carries exactly one kind so that
// transports can map failures to a stable taxonomy.
type ErrorKind string

const (
	// KindIntrospection indicates the graph store could not be introspected.
	KindIntrospection ErrorKind = "introspection_error"

	// KindGeneration indicates the generation engine failed, timed out,
	// or returned no extractable query.
	KindGeneration ErrorKind = "generation_error"

	// KindValidationRejected indicates a candidate query failed static
	// acceptance checks. Recoverable by rephrasing the question.
	KindValidationRejected ErrorKind = "validation_rejected"

	// KindExecution indicates the graph store rejected the query.
	KindExecution ErrorKind = "execution_error"

	// KindTimeout indicates an outbound call exceeded its deadline.
	KindTimeout ErrorKind = "timeout_error"

	// KindResultTooLarge indicates the row ceiling was exceeded even
	// after limit injection. Surfaced, never silently truncated.
	KindResultTooLarge ErrorKind = "result_too_large"

	// KindNormalization indicates a malformed record could not be
	// converted to encoding-neutral primitives.
	KindNormalization ErrorKind = "normalization_error"
)

// TaxonomyError is a structured failure carrying the taxonomy kind and a
// human-readable reason. It wraps the underlying cause when one exists.
type TaxonomyError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *TaxonomyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *TaxonomyError) Unwrap() error {
	return e.Err
}

// NewTaxonomyError creates a structured failure of the given kind.
func NewTaxonomyError(kind ErrorKind, reason string, err error) *TaxonomyError {
	return &TaxonomyError{Kind: kind, Reason: reason, Err: err}
}

// KindOf returns the taxonomy kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var te *TaxonomyError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCacheMiss indicates no live cache entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrNotCacheable indicates a question must not be cached because its
	// correct answer depends on the instant it is asked.
	ErrNotCacheable = errors.New("question is not cacheable")

	// ErrGeneratorUnavailable indicates the generation engine is not
	// configured. Natural-language querying is disabled without it.
	ErrGeneratorUnavailable = errors.New("query generator unavailable")

	// ErrStoreUnavailable indicates the graph store is not configured.
	ErrStoreUnavailable = errors.New("graph store unavailable")
)
