// Package errors provides the closed error taxonomy of the apartment search pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Startup errors. A missing credential is fatal before any network call.
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"

	// Per-search pipeline errors. Each aborts exactly one search.
	ErrCodeCriteriaSynthesisFailed ErrorCode = "CRITERIA_SYNTHESIS_FAILED"
	ErrCodeMatchingFailed          ErrorCode = "MATCHING_FAILED"
	ErrCodeChannelRetrievalFailed  ErrorCode = "CHANNEL_RETRIEVAL_FAILED"

	// Inference transport errors, wrapped into a pipeline error by the caller.
	ErrCodeInferenceFailed  ErrorCode = "INFERENCE_FAILED"
	ErrCodeInferenceTimeout ErrorCode = "INFERENCE_TIMEOUT"

	// User errors reported back on the command surface without running the pipeline.
	ErrCodeEmptySearchQuery ErrorCode = "EMPTY_SEARCH_QUERY"

	ErrCodeUnknown ErrorCode = "UNKNOWN_ERROR"
)

// A message that fails listing extraction is not an error at all: promotional
// and off-format messages are expected in source channels and are skipped
// silently, so there is no extraction code in this taxonomy.

// ==========================
// 2. SearchError
// ==========================

// SearchError is the structured application error carried through the pipeline.
type SearchError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *SearchError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("SearchError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("SearchError[%s]: %s", e.Code, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error while keeping the taxonomy code.
func (e *SearchError) WithCause(err error) *SearchError {
	e.cause = err
	if e.Details == "" && err != nil {
		e.Details = err.Error()
	}
	return e
}

// ==========================
// 3. Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *SearchError {
	return &SearchError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigMissingError creates a fatal startup error for an unset credential.
func NewConfigMissingError(name string) *SearchError {
	return newError(ErrCodeConfigMissing, fmt.Sprintf("%s must be set in the environment", name), "", false)
}

// NewCriteriaSynthesisError signals that the criteria inference call failed or
// returned unparseable content.
func NewCriteriaSynthesisError(details string) *SearchError {
	return newError(ErrCodeCriteriaSynthesisFailed, "Failed to derive search criteria from the description", details, true)
}

// NewMatchingError signals that the batch match call failed as a whole.
func NewMatchingError(details string) *SearchError {
	return newError(ErrCodeMatchingFailed, "Failed to evaluate listings against the criteria", details, true)
}

// NewChannelRetrievalError signals that reading a source channel failed.
func NewChannelRetrievalError(channel, details string) *SearchError {
	return newError(ErrCodeChannelRetrievalFailed, fmt.Sprintf("Failed to read messages from %s", channel), details, true)
}

// NewInferenceError signals a transport/auth/rate-limit failure of an inference call.
func NewInferenceError(details string) *SearchError {
	return newError(ErrCodeInferenceFailed, "Inference request failed", details, true)
}

// NewInferenceTimeoutError signals that an inference call exceeded its deadline.
func NewInferenceTimeoutError(details string) *SearchError {
	return newError(ErrCodeInferenceTimeout, "Inference request timed out", details, true)
}

// NewEmptySearchQueryError signals a /search command with no description.
func NewEmptySearchQueryError() *SearchError {
	return newError(ErrCodeEmptySearchQuery, "Search description is empty", "", false)
}

// ==========================
// 4. Inspection Helpers
// ==========================

// CodeOf extracts the taxonomy code from any error in the chain.
func CodeOf(err error) ErrorCode {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeUnknown
}

// HasCode reports whether err carries the given taxonomy code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether the failed operation may be retried by a caller
// that owns a retry policy. The pipeline itself never retries.
func IsRetryable(err error) bool {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// UserMessage maps an error to the human-readable reply sent back to the requester.
func UserMessage(err error) string {
	switch CodeOf(err) {
	case ErrCodeCriteriaSynthesisFailed:
		return "😕 I could not understand your preferences. Try rephrasing your search, e.g. `/search 2-bedroom apartment in Vake, max $1000`."
	case ErrCodeMatchingFailed:
		return "😕 I could not evaluate the listings right now. Please try again in a minute."
	case ErrCodeChannelRetrievalFailed:
		return "😕 I could not read the listing channels right now. Please try again later."
	case ErrCodeEmptySearchQuery:
		return "Please provide your search criteria after the /search command.\nExample: `/search 2-bedroom apartment in Vake, budget $800-1000`"
	default:
		return "😕 Something went wrong while searching. Please try again later."
	}
}
