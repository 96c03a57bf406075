// Package errors provides standardized error handling for the query engine.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnknownHandler ErrorCode = "UNKNOWN_HANDLER"
	ErrCodeHandlerPanic   ErrorCode = "HANDLER_PANIC"
	ErrCodeDepthExceeded  ErrorCode = "DEPTH_EXCEEDED"

	ErrCodePlanParseFailure    ErrorCode = "PLAN_PARSE_FAILURE"
	ErrCodeFilterParseFailure  ErrorCode = "FILTER_PARSE_FAILURE"
	ErrCodeFilterNotApplicable ErrorCode = "FILTER_NOT_APPLICABLE"

	ErrCodeGenAITimeout    ErrorCode = "GENAI_TIMEOUT"
	ErrCodeGenAICallFailed ErrorCode = "GENAI_CALL_FAILED"

	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionBusy     ErrorCode = "SESSION_BUSY"
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidDocument ErrorCode = "INVALID_DOCUMENT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewUnknownHandlerError creates a non-retryable dispatch error.
func NewUnknownHandlerError(handlerName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownHandler,
		Message:   "No extraction routine registered for handler",
		Details:   fmt.Sprintf("handler: %s", handlerName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHandlerPanicError creates a non-retryable error for a recovered panic.
func NewHandlerPanicError(handlerName string, recovered interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeHandlerPanic,
		Message:   "Extraction routine panicked",
		Details:   fmt.Sprintf("handler: %s, panic: %v", handlerName, recovered),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDepthExceededError creates a non-retryable flattening error.
func NewDepthExceededError(maxDepth int) *StandardError {
	return &StandardError{
		Code:      ErrCodeDepthExceeded,
		Message:   "Document nesting exceeds the flattening depth bound",
		Details:   fmt.Sprintf("maxDepth: %d", maxDepth),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlanParseFailureError creates a non-retryable fallback plan error.
func NewPlanParseFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanParseFailure,
		Message:   "Could not parse extraction plan from GenAI reply",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFilterParseFailureError creates a non-retryable follow-up filter error.
func NewFilterParseFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFilterParseFailure,
		Message:   "Could not parse filtered results from GenAI reply",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFilterNotApplicableError is returned when the base result set is not a list.
func NewFilterNotApplicableError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFilterNotApplicable,
		Message:   "Base result is not filterable",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAITimeoutError creates a retryable GenAI timeout error.
func NewGenAITimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAITimeout,
		Message:   "GenAI service call timed out",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAICallFailedError creates a retryable GenAI transport error.
func NewGenAICallFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAICallFailed,
		Message:   "GenAI service call failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionBusyError is returned when a session already has a query in flight.
func NewSessionBusyError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionBusy,
		Message:   "Session already has a query in flight",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request decode error.
func NewInvalidRequestError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request body is not valid JSON",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDocumentError creates a non-retryable document parse error.
func NewInvalidDocumentError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDocument,
		Message:   "Report document is not valid JSON",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// IsRetryable reports whether an error is a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from a StandardError, or empty for other errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}
