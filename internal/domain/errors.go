package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOrdering signals an ordering with duplicate or empty ids.
	ErrInvalidOrdering = errors.New("invalid ordering")
	// ErrInvalidMatrix signals a malformed pairwise matrix document.
	ErrInvalidMatrix = errors.New("invalid matrix")
	// ErrUnknownCriterion signals a criterion tag outside the four supported kinds.
	ErrUnknownCriterion = errors.New("unknown criterion")
	// ErrNoCriterion signals that the outcome holds no result for a criterion.
	ErrNoCriterion = errors.New("criterion not in outcome")
	// ErrIndexOutOfRange signals a tied-solution index outside the solution list.
	ErrIndexOutOfRange = errors.New("solution index out of range")
	// ErrNoOutcome signals that no search result has been received yet.
	ErrNoOutcome = errors.New("no search outcome")
	// ErrSearchInProgress signals a second search started while one is active.
	ErrSearchInProgress = errors.New("search already in progress")
	// ErrSearchIncomplete signals a stream that ended before its result event.
	ErrSearchIncomplete = errors.New("search incomplete")
	// ErrEngineError signals a failure reported by the search engine transport.
	ErrEngineError = errors.New("search engine error")
	// ErrValidation signals an invalid request.
	ErrValidation = errors.New("validation failed")
)

// IncompleteError wraps ErrSearchIncomplete with the cause that ended the stream.
// Cause is nil when the stream ended cleanly without a result.
type IncompleteError struct {
	SearchID string
	Cause    error
}

func (e *IncompleteError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: search %s: stream ended without result", ErrSearchIncomplete.Error(), e.SearchID)
	}
	return fmt.Sprintf("%s: search %s: %v", ErrSearchIncomplete.Error(), e.SearchID, e.Cause)
}

// Unwrap exposes both the sentinel and the transport cause to errors.Is.
func (e *IncompleteError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrSearchIncomplete}
	}
	return []error{ErrSearchIncomplete, e.Cause}
}

// NewIncomplete creates an incomplete-search error.
func NewIncomplete(searchID string, cause error) error {
	return &IncompleteError{SearchID: searchID, Cause: cause}
}
