package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyError_Error(t *testing.T) {
	err := NewTaxonomyError(KindValidationRejected, "mutating keyword", nil)
	assert.Equal(t, "validation_rejected: mutating keyword", err.Error())

	wrapped := NewTaxonomyError(KindExecution, "query failed", errors.New("connection reset"))
	assert.Equal(t, "execution_error: query failed: connection reset", wrapped.Error())
}

func TestTaxonomyError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTaxonomyError(KindGeneration, "engine call failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(NewTaxonomyError(KindTimeout, "deadline", nil)))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))

	// Kind survives wrapping.
	wrapped := fmt.Errorf("outer: %w", NewTaxonomyError(KindResultTooLarge, "too many rows", nil))
	assert.Equal(t, KindResultTooLarge, KindOf(wrapped))
}
