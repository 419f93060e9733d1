// Package apperr defines the typed errors returned across the report pipeline.
package apperr

import (
	"errors"
	"fmt"
)

// ErrorType represents the kind of failure
type ErrorType string

const (
	ErrTypeIO     ErrorType = "IO"
	ErrTypeFormat ErrorType = "FORMAT"
	ErrTypeLookup ErrorType = "LOOKUP"
	ErrTypeRender ErrorType = "RENDER"
	ErrTypeConfig ErrorType = "CONFIG"
)

// AppError is the error value produced by every internal package.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to see the cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair and returns the same error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates an application error
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewIOError creates an error for a missing or unreadable file
func NewIOError(message string, cause error) *AppError {
	return New(ErrTypeIO, message, cause)
}

// NewFormatError creates an error for input that lacks the expected shape
func NewFormatError(message string, cause error) *AppError {
	return New(ErrTypeFormat, message, cause)
}

// NewLookupError creates an error for a requested indicator or country with no data
func NewLookupError(message string) *AppError {
	return New(ErrTypeLookup, message, nil)
}

// NewRenderError creates an error for input a chart cannot draw
func NewRenderError(message string, cause error) *AppError {
	return New(ErrTypeRender, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return New(ErrTypeConfig, message, cause)
}

// IsType reports whether any error in err's chain is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == t {
			return true
		}
		err = appErr.Cause
	}
	return false
}
