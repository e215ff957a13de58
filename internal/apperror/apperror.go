package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrStore      = errors.New("store error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message, sent to clients as-is
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying driver error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the driver error, so errors.Is works
// against either (e.g. ErrStore and sql.ErrConnDone).
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NotFound builds the fixed "<resource> not found" error.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// StoreFailed wraps a database error. The message is the driver's own text.
func StoreFailed(err error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Message: err.Error(),
		Cause:   err,
	}
}
