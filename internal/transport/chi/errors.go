package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/concord/internal/domain"
)

// ErrorCode is a machine-readable error code in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeInvalidMatrix    ErrorCode = "invalid_matrix"
	CodeUnknownCriterion ErrorCode = "unknown_criterion"
	CodeNotFound         ErrorCode = "not_found"
	CodeNoOutcome        ErrorCode = "no_outcome"
	CodeIndexOutOfRange  ErrorCode = "index_out_of_range"
	CodeSearchInProgress ErrorCode = "search_in_progress"
	CodeSearchIncomplete ErrorCode = "search_incomplete"
	CodeEngineError      ErrorCode = "engine_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidOrdering, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidMatrix, http.StatusBadRequest, CodeInvalidMatrix),
		sentinelHandler(domain.ErrUnknownCriterion, http.StatusBadRequest, CodeUnknownCriterion),
		sentinelHandler(domain.ErrIndexOutOfRange, http.StatusUnprocessableEntity, CodeIndexOutOfRange),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrNoCriterion, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrNoOutcome, http.StatusConflict, CodeNoOutcome),
		sentinelHandler(domain.ErrSearchInProgress, http.StatusConflict, CodeSearchInProgress),
		sentinelHandler(domain.ErrSearchIncomplete, http.StatusBadGateway, CodeSearchIncomplete),
		sentinelHandler(domain.ErrEngineError, http.StatusBadGateway, CodeEngineError),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage keeps client-facing detail for request-shaped errors
// and hides transport internals behind the sentinel text.
func safeDomainMessage(err error) string {
	detailed := []error{
		domain.ErrValidation,
		domain.ErrInvalidOrdering,
		domain.ErrInvalidMatrix,
		domain.ErrUnknownCriterion,
		domain.ErrIndexOutOfRange,
		domain.ErrNoCriterion,
	}
	for _, s := range detailed {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	opaque := []error{
		domain.ErrNotFound,
		domain.ErrNoOutcome,
		domain.ErrSearchInProgress,
		domain.ErrSearchIncomplete,
		domain.ErrEngineError,
	}
	for _, s := range opaque {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
