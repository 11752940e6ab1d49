package common

import (
	"errors"
	"fmt"
)

// Sentinels the transport layer maps to HTTP statuses. ErrDatabase marks
// store failures that are neither a missing row nor bad input.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// AppError pairs a stable machine-readable code with a human message.
// Configuration validation uses it so startup failures name the exact
// setting at fault.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// WrapError prefixes err with context while keeping it in the Is/As chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// DatabaseError tags a store failure with ErrDatabase; the original error
// stays unwrappable.
func DatabaseError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, ErrDatabase, err)
}
