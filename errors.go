package ucp

import (
	"errors"
	"fmt"
)

// ProtocolError represents a UCP protocol-level error with a machine-readable
// code. Client-side failures are returned as typed errors, never swallowed
// into an empty result: zero matches is a SearchResult, not an error.
type ProtocolError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeDiscoveryUnavailable  = "discovery_unavailable"
	ErrCodeCapabilityNotFound    = "capability_not_found"
	ErrCodeSearchRequestFailed   = "search_request_failed"
	ErrCodeSearchResponseInvalid = "search_response_invalid"
	ErrCodeInvalidParameter      = "invalid_parameter"
	ErrCodeInternal              = "internal_error"
)

// NewProtocolError creates a new protocol error
func NewProtocolError(code, message string, details map[string]interface{}) *ProtocolError {
	return &ProtocolError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ErrorCode returns the protocol error code carried by err, unwrapping as
// needed. Returns "" if err carries no ProtocolError.
func ErrorCode(err error) string {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
