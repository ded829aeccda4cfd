// Package errors provides structured error types for the template compiler,
// with category codes, source locations, and recoverability metadata used to
// decide between hard failure and mode fallback.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of compile errors.
type ErrorType string

const (
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeLimit      ErrorType = "limit"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeMode       ErrorType = "mode"
	ErrorTypeInternal   ErrorType = "internal"
)

// CompileError is a structured error type with context.
type CompileError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Component   string
	Line        int
	Column      int
	Recoverable bool
	Hints       []string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.Line > 0 {
		location := fmt.Sprintf("line %d", e.Line)
		if e.Column > 0 {
			location += fmt.Sprintf(":%d", e.Column)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *CompileError) Is(target error) bool {
	var t *CompileError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithComponent adds component context.
func (e *CompileError) WithComponent(component string) *CompileError {
	e.Component = component

	return e
}

// WithLocation adds source location information.
func (e *CompileError) WithLocation(line, column int) *CompileError {
	e.Line = line
	e.Column = column

	return e
}

// WithHints attaches actionable suggestions to the error.
func (e *CompileError) WithHints(hints ...string) *CompileError {
	e.Hints = append(e.Hints, hints...)

	return e
}

// NewParseError creates a parse error wrapping the underlying parser failure.
func NewParseError(code, message string, cause error) *CompileError {
	return &CompileError{
		Type:        ErrorTypeParse,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewValidationError creates a recoverable validation error.
func NewValidationError(code, message string) *CompileError {
	return &CompileError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewLimitError creates a structural-limit violation. The message names the
// limit, the observed value, and the maximum so callers can act on it.
func NewLimitError(code, limitName string, observed, max int) *CompileError {
	err := &CompileError{
		Type:        ErrorTypeLimit,
		Code:        code,
		Message:     fmt.Sprintf("%s exceeded: %d > maximum %d", limitName, observed, max),
		Recoverable: false,
	}

	return err.WithHints(LimitHints(limitName)...)
}

// NewSecurityError creates a non-recoverable security error.
func NewSecurityError(code, message string) *CompileError {
	return &CompileError{
		Type:        ErrorTypeSecurity,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewModeError creates a mode-compatibility error.
func NewModeError(code, message string) *CompileError {
	return &CompileError{
		Type:        ErrorTypeMode,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(code, message string, cause error) *CompileError {
	return &CompileError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}
