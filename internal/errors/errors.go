package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// QueryFailed indicates the repository query service could not answer
	// for one branch or range
	QueryFailed ErrorCode = "QUERY_FAILED"
	// HostUnavailable indicates the code-host review service is not reachable
	HostUnavailable ErrorCode = "HOST_UNAVAILABLE"
	// PatternInvalid indicates a naming-rule pattern failed to compile
	PatternInvalid ErrorCode = "PATTERN_INVALID"
	// StaleDesignRef indicates a designed-tree edge references a branch
	// that no longer exists
	StaleDesignRef ErrorCode = "STALE_DESIGN_REF"
	// CacheUnavailable indicates the review-metadata cache could not be opened
	CacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	// ConfigInvalid indicates a malformed configuration file
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CanopyError represents an engine error with a stable code. Query
// failures are always recovered locally by the engine; the error value
// exists so degraded branches stay observable in logs.
type CanopyError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new CanopyError
func New(code ErrorCode, message string, cause error) *CanopyError {
	return &CanopyError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *CanopyError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CanopyError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CanopyError) WithDetails(details interface{}) *CanopyError {
	e.Details = details
	return e
}

// CodeOf extracts the stable code from an error, or InternalError for
// errors produced outside this package.
func CodeOf(err error) ErrorCode {
	if ce, ok := err.(*CanopyError); ok {
		return ce.Code
	}
	return InternalError
}
