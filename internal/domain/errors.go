package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a category of domain failure. Codes are stable and
// part of the API contract; the HTTP layer maps them to status codes.
type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeInvalidResource ErrorCode = "INVALID_RESOURCE"
	CodeSlotUnavailable ErrorCode = "SLOT_UNAVAILABLE"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeAlreadyTerminal ErrorCode = "ALREADY_TERMINAL"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error type surfaced by domain and application code.
type AppError struct {
	Code    ErrorCode
	Message string
	cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.cause }

// HTTPStatus returns the HTTP status code for this error's category.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation, CodeInvalidResource:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeSlotUnavailable, CodeAlreadyTerminal, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError reports invalid input, including inverted or empty time ranges.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewInvalidResourceError reports a room id that does not resolve in the catalog.
func NewInvalidResourceError(roomID string) *AppError {
	return &AppError{Code: CodeInvalidResource, Message: fmt.Sprintf("room %s does not exist", roomID)}
}

// NewSlotUnavailableError reports a genuine conflict or a lost creation race.
func NewSlotUnavailableError(roomID string) *AppError {
	return &AppError{Code: CodeSlotUnavailable, Message: fmt.Sprintf("room %s is not available for the selected time slot", roomID)}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError reports an ownership or permission failure.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// NewAlreadyTerminalError reports a benign attempt to mutate a terminal booking.
func NewAlreadyTerminalError(id string) *AppError {
	return &AppError{Code: CodeAlreadyTerminal, Message: fmt.Sprintf("booking %s is already cancelled or completed", id)}
}

// NewConflictError reports a concurrent-modification conflict (optimistic lock miss).
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, cause: cause}
}

// AsAppError extracts an *AppError from err's chain, if present.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// CodeOf returns the error code of err, or CodeInternal for unknown errors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return CodeInternal
}
