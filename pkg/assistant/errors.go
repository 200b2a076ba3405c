package assistant

import (
	"errors"
	"fmt"
	"regexp"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("assistant: API key required")

	// ErrChatFailed is returned when no usable reply could be
	// obtained, including after the model fallback retry.
	ErrChatFailed = errors.New("assistant: chat completion failed")
)

// modelUnavailablePattern matches error messages indicating the
// requested model is unsupported or has been decommissioned upstream.
var modelUnavailablePattern = regexp.MustCompile(`(?i)model|not supported|deprecated|decommission|is not available|is not a valid model`)

// IsModelUnavailable reports whether an API error message indicates
// the requested model cannot be served and a fallback should be tried.
func IsModelUnavailable(message string) bool {
	return message != "" && modelUnavailablePattern.MatchString(message)
}

// APIError represents an error response from the chat API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Code is the error code (if provided).
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("assistant: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("assistant: API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
