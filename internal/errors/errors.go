// Package errors provides structured error handling with failure-category
// classification and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeBackend indicates a key-value backend failure (HTTP 500)
	TypeBackend ErrorType = "backend"
	// TypeDelivery indicates a per-recipient delivery failure; never
	// propagated past the broadcast fanout (HTTP 502 if it ever surfaces)
	TypeDelivery ErrorType = "delivery"
	// TypeInputParse indicates a malformed request body (HTTP 400)
	TypeInputParse ErrorType = "input_parse"
	// TypeModel indicates a model invocation or response-schema failure (HTTP 500)
	TypeModel ErrorType = "model"
	// TypeInternal indicates any other server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeInputParse:
		return http.StatusBadRequest
	case TypeDelivery:
		return http.StatusBadGateway
	case TypeBackend, TypeModel, TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// BackendError creates a new backend error (HTTP 500).
func BackendError(message string, cause error) *Error {
	return &Error{Type: TypeBackend, Message: message, Cause: cause, Context: make(map[string]any)}
}

// DeliveryError creates a new per-recipient delivery error.
func DeliveryError(message string, cause error) *Error {
	return &Error{Type: TypeDelivery, Message: message, Cause: cause, Context: make(map[string]any)}
}

// InputParseError creates a new malformed-input error (HTTP 400).
func InputParseError(message string, cause error) *Error {
	return &Error{Type: TypeInputParse, Message: message, Cause: cause, Context: make(map[string]any)}
}

// ModelError creates a new model invocation error (HTTP 500).
func ModelError(message string, cause error) *Error {
	return &Error{Type: TypeModel, Message: message, Cause: cause, Context: make(map[string]any)}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
