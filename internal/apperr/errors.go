// Package apperr defines the error taxonomy shared by the relay handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindAuthenticationRequired Kind = "AUTHENTICATION_REQUIRED"
	KindValidationFailed       Kind = "VALIDATION_FAILED"
	KindRateLimitExceeded      Kind = "RATE_LIMIT_EXCEEDED"
	KindRateLimitCheckFailed   Kind = "RATE_LIMIT_CHECK_FAILED"
	KindDownstreamRateLimited  Kind = "DOWNSTREAM_RATE_LIMITED"
	KindDownstreamError        Kind = "DOWNSTREAM_ERROR"
	KindParseFailure           Kind = "PARSE_FAILURE"
	KindNotFound               Kind = "NOT_FOUND"
	KindInternal               Kind = "INTERNAL_ERROR"
)

// Error carries a user-facing message, optional details and the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindAuthenticationRequired:
		return http.StatusUnauthorized
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindRateLimitExceeded, KindDownstreamRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New builds an Error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func AuthenticationRequired(cause error) *Error {
	return New(KindAuthenticationRequired, "Authentication required", cause)
}

func ValidationFailed(details any) *Error {
	return &Error{Kind: KindValidationFailed, Message: "Invalid input format.", Details: details}
}

func RateLimitExceeded() *Error {
	return New(KindRateLimitExceeded, "Daily request limit exceeded. Please try again tomorrow.", nil)
}

func RateLimitCheckFailed(cause error) *Error {
	return New(KindRateLimitCheckFailed, "Rate limit check failed", cause)
}

func DownstreamRateLimited(cause error) *Error {
	return New(KindDownstreamRateLimited, "Rate limit exceeded. Please try again later.", cause)
}

func DownstreamError(message string, cause error) *Error {
	return New(KindDownstreamError, message, cause)
}

func ParseFailure(message string, cause error) *Error {
	return New(KindParseFailure, message, cause)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Internal(message string, cause error) *Error {
	return New(KindInternal, message, cause)
}

// As extracts an *Error from err, or wraps it as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal error", err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
