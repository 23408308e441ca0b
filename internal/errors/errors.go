package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a PromptUzman error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrBusy           ErrorCode = "BUSY"            // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// PromptError represents a structured error with code, status, and details.
// It is only produced at the adapter boundary (CLI, MCP, HTTP); generation
// failures are carried as fallback values, never as PromptErrors.
type PromptError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PromptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PromptError {
	return &PromptError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a saved prompt cannot be found.
func NewNotFound(id string) *PromptError {
	return &PromptError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("prompt not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewBusy creates a 409 error for when a run or refinement is already in progress.
func NewBusy(op string) *PromptError {
	return &PromptError{
		Code:    ErrBusy,
		Status:  409,
		Message: fmt.Sprintf("cannot %s while a generation is in progress", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PromptError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PromptError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a PromptError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PromptError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// As extracts a PromptError from err, wrapping anything else as internal.
func As(err error) *PromptError {
	var pErr *PromptError
	if stderrors.As(err, &pErr) {
		return pErr
	}
	return NewInternal(err)
}
