// Package domainerrors defines the normalized error currency handed to the
// response boundary.
//
// Every failure that leaves a service is expected to be an *Error: it carries
// a machine-readable Code, the HTTP status the boundary renders, a message
// and, optionally, the underlying cause. Errors produced anywhere else are
// folded into this shape by Normalize before they reach a client.
//
// Usage:
//
//	return dErrors.New(dErrors.CodeUnavailable, "Data read failed")
//	return dErrors.Wrap(err, dErrors.CodeUnavailable, "API response parse error")
//	normalized := dErrors.Normalize(err)
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeBadRequest  Code = "bad_request"
	CodeNotFound         Code = "not_found"
	CodeMethodNotAllowed Code = "method_not_allowed"
	CodeRateLimited      Code = "rate_limited"
	CodeInternal         Code = "internal_error"
	CodeUnavailable      Code = "service_unavailable"
	CodeTimeout          Code = "timeout"
)

// InternalMessage is the message attached when an unanticipated error is
// normalized.
const InternalMessage = "internal implementation error"

// Error is the normalized error representation.
type Error struct {
	Code       Code
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a normalized error with the default status for code.
func New(code Code, msg string) *Error {
	return &Error{
		Code:       code,
		StatusCode: StatusFor(code),
		Message:    msg,
	}
}

// Wrap creates a normalized error that retains err as its cause.
func Wrap(err error, code Code, msg string) *Error {
	e := New(code, msg)
	e.Cause = err
	return e
}

// WithStatus annotates an arbitrary error with an explicit HTTP status.
// Statuses outside the 4xx/5xx range are coerced to 500.
func WithStatus(err error, status int, msg string) *Error {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:       codeForStatus(status),
		StatusCode: status,
		Message:    msg,
		Cause:      err,
	}
}

// Normalize converts any error into an *Error. Errors that already are (or
// wrap) an *Error are returned unchanged, so applying Normalize repeatedly
// never double-wraps. Everything else becomes a 500 internal error with the
// original retained as cause.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Wrap(err, CodeInternal, InternalMessage)
}

// As reports whether err is or wraps an *Error and returns it.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// StatusFor maps a code to its HTTP status.
func StatusFor(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) Code {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	case http.StatusGatewayTimeout:
		return CodeTimeout
	}
	if status < 500 {
		return CodeBadRequest
	}
	return CodeInternal
}
