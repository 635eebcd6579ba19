package errors

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling.
const (
	CodeInitialization = "INITIALIZATION"
	CodeStorage        = "STORAGE"
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeConfigInvalid  = "CONFIG_INVALID"
)

// Sentinels usable with errors.Is; matching is by code only.
var (
	ErrInitialization = New(CodeInitialization, "initialization failed")
	ErrStorage        = New(CodeStorage, "storage failure")
	ErrNotFound       = New(CodeNotFound, "not found")
	ErrInvalidInput   = New(CodeInvalidInput, "invalid input")
)

// AppError is a structured error with a code and actionable suggestion.
type AppError struct {
	Code       string // machine-readable code (e.g. NOT_FOUND)
	Message    string // human-readable description
	Suggestion string // actionable fix
	Err        error  // wrapped underlying error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code and message.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf is New with a format string.
func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an AppError wrapping an existing error.
func Wrap(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithSuggestion sets the suggestion and returns the receiver.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// Is checks whether target matches this error's code.
func (e *AppError) Is(target error) bool {
	var ae *AppError
	if errors.As(target, &ae) {
		return e.Code == ae.Code
	}
	return false
}

// AsCode extracts the AppError code from an error, or "" if not an AppError.
func AsCode(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Suggestion extracts the suggestion from an error, or "" if not an AppError.
func Suggestion(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Suggestion
	}
	return ""
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return AsCode(err) == CodeNotFound
}
