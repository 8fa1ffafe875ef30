package apperrors

import (
	"errors"
	"fmt"
)

// AppError carries a stable machine-readable code alongside a human-readable
// message. The presentation layer maps codes to transport status; everything
// below it matches on codes or sentinel values, never on message text.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is makes two AppErrors comparable by code and message, so sentinel values
// declared with the constructors below work with errors.Is.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// Constructors
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func InvalidInput(msg string) error {
	return New(CodeInvalidInput, msg)
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func Conflict(msg string) error {
	return New(CodeConflict, msg)
}

func Unauthorized(msg string) error {
	return New(CodeUnauthorized, msg)
}

func Forbidden(msg string) error {
	return New(CodeForbidden, msg)
}

func Unavailable(msg string) error {
	return New(CodeUnavailable, msg)
}

func Internal(msg string) error {
	return New(CodeInternal, msg)
}

// CodeOf extracts the code from err, walking the wrap chain. Unrecognized
// errors report CodeUnknown.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}
