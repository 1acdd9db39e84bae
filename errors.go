package concord

import "github.com/kailas-cloud/concord/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrInvalidOrdering  = domain.ErrInvalidOrdering
	ErrInvalidMatrix    = domain.ErrInvalidMatrix
	ErrUnknownCriterion = domain.ErrUnknownCriterion
	ErrNoCriterion      = domain.ErrNoCriterion
	ErrIndexOutOfRange  = domain.ErrIndexOutOfRange
	ErrNoOutcome        = domain.ErrNoOutcome
	ErrSearchInProgress = domain.ErrSearchInProgress
	ErrSearchIncomplete = domain.ErrSearchIncomplete
	ErrEngineError      = domain.ErrEngineError
	ErrValidation       = domain.ErrValidation
)

// IncompleteError is returned by Search when the stream ends before its result.
type IncompleteError = domain.IncompleteError
