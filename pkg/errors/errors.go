// Package errors defines the unified error types for gateway operations.
// Provider-specific failures are mapped to these before they reach a client.
package errors

import (
	"fmt"
	"net/http"
)

// GatewayError is a standardized error carrying the HTTP status the
// gateway should respond with. Upstream detail stays in Message for logs;
// handlers send only the generic Type/Message pair to callers.
type GatewayError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Provider   string `json:"provider,omitempty"`
	Retryable  bool   `json:"-"`
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s (provider=%s, code=%d)", e.Type, e.Message, e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s (code=%d)", e.Type, e.Message, e.StatusCode)
}

// HTTPStatusCode returns the status code to respond with.
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// Error type identifiers, stable across the wire contract.
const (
	TypeRateLimit      = "rate_limit_error"
	TypeInvalidRequest = "invalid_request_error"
	TypeProvider       = "provider_error"
	TypeEmptyResult    = "empty_result_error"
	TypeInternal       = "internal_error"
)

// NewRateLimitError creates a throttling error (429).
func NewRateLimitError(message string) *GatewayError {
	return &GatewayError{
		StatusCode: http.StatusTooManyRequests,
		Message:    message,
		Type:       TypeRateLimit,
		Retryable:  true,
	}
}

// NewInvalidRequestError creates a validation error (400).
func NewInvalidRequestError(message string) *GatewayError {
	return &GatewayError{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Type:       TypeInvalidRequest,
		Retryable:  false,
	}
}

// NewProviderError creates an upstream failure error (502).
func NewProviderError(provider, message string) *GatewayError {
	return &GatewayError{
		StatusCode: http.StatusBadGateway,
		Message:    message,
		Type:       TypeProvider,
		Provider:   provider,
		Retryable:  true,
	}
}

// NewEmptyResultError marks a provider call that succeeded but produced no
// usable content. Surfaced with the same status as a provider failure.
func NewEmptyResultError(provider, message string) *GatewayError {
	return &GatewayError{
		StatusCode: http.StatusBadGateway,
		Message:    message,
		Type:       TypeEmptyResult,
		Provider:   provider,
		Retryable:  true,
	}
}

// NewInternalError creates an internal server error (500).
func NewInternalError(message string) *GatewayError {
	return &GatewayError{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Type:       TypeInternal,
		Retryable:  false,
	}
}
