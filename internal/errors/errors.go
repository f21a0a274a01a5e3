package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a clipstash error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrUnavailable    ErrorCode = "UNAVAILABLE"     // 503
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// ClipError represents a structured error with code, status, and details.
type ClipError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ClipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ClipError {
	return &ClipError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a clip cannot be found.
func NewNotFound(id int64) *ClipError {
	return &ClipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("clip not found: %d", id),
		Details: map[string]any{"id": id},
	}
}

// NewUnavailable creates a 503 error for a missing collaborator, such as
// the system clipboard on a headless host.
func NewUnavailable(msg string) *ClipError {
	return &ClipError{
		Code:    ErrUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ClipError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ClipError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Wrap returns err unchanged if it already is a ClipError, otherwise an
// INTERNAL ClipError carrying its message.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var cErr *ClipError
	if stderrors.As(err, &cErr) {
		return cErr
	}
	return NewInternal(err)
}

// Is checks if an error is (or wraps) a ClipError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *ClipError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}
