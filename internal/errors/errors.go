// Package errors provides consistent error types for the Voicetime CLI.
// It defines two main categories: UserError (fixable by user) and
// SystemError (system issues), plus sentinel errors for the recording
// pipeline's failure modes.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrPermissionDenied     = errors.New("microphone permission denied")
	ErrNoActiveRecording    = errors.New("no active recording")
	ErrSessionBusy          = errors.New("a recording session is already in progress")
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrCategorizationFailed = errors.New("categorization failed")
	ErrConfigurationMissing = errors.New("no API key configured")
	ErrEntryNotFound        = errors.New("entry not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryExists       = errors.New("category already exists")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrInvalidTimestamp     = errors.New("invalid timestamp")
)

// UserError represents an error that the user can fix.
// Examples: invalid input, missing required arguments, missing credentials.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
}

func (e *UserError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return e.Message
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// SystemError represents a system-level error that the user cannot directly
// fix. Examples: disk full, network failure, audio engine fault.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
	}
}

// NewSystemErrorWithOp creates a new SystemError with operation context.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
		Op:      op,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps err with a message, preserving the chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Suggestion extracts the fix suggestion from a UserError chain, if any.
func Suggestion(err error) string {
	var uerr *UserError
	if errors.As(err, &uerr) {
		return uerr.Suggestion
	}
	return ""
}
