package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrorType says which part of a run failed. It is logged as error_type and
// selects the operator hint.
type ErrorType string

const (
	ErrTypeParsing     ErrorType = "PARSING"     // input table malformed
	ErrTypeStorage     ErrorType = "STORAGE"     // file could not be opened or written
	ErrTypeValidation  ErrorType = "VALIDATION"  // input file or value rejected
	ErrTypeNotFound    ErrorType = "NOT_FOUND"   // input table or directory missing
	ErrTypeConfig      ErrorType = "CONFIG"      // settings out of range
	ErrTypeCalculation ErrorType = "CALCULATION" // index or comparison failed
	ErrTypeCanceled    ErrorType = "CANCELED"    // interrupted or timed out
	ErrTypeInternal    ErrorType = "INTERNAL"
)

// AppError carries a type and log fields (file, line, column, path) on top
// of the underlying cause, which stays reachable through errors.Is.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext sets a log field and returns e for chaining
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// Attrs returns the context fields as slog attributes ordered by key
func (e *AppError) Attrs() []slog.Attr {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, len(keys))
	for i, k := range keys {
		attrs[i] = slog.Any(k, e.Context[k])
	}
	return attrs
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause, Context: map[string]interface{}{}}
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewNotFoundError reports a missing input; what names the file or directory
func NewNotFoundError(what string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, what+" not found", cause)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

func NewCalculationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeCalculation, message, cause)
}

// AsAppError finds the outermost AppError wrapped in err
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return nil, false
	}
	return appErr, true
}
