// Package dErrors defines the domain error taxonomy shared by services and
// handlers. Services attach a Code; the HTTP layer owns the translation to
// status codes so domain packages never import net/http.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a closed enumeration of domain error classes.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
)

// Error carries a domain code plus a human-readable message. The message may
// be surfaced to callers for 4xx codes; internal messages stay server-side.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates err with a domain code while preserving the chain.
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// HasCode reports whether err carries the given domain code anywhere in its
// chain.
func HasCode(err error, code Code) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal for
// errors that did not originate in a domain service.
func CodeOf(err error) Code {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message for err. Internal errors yield an
// empty message so storage details never leak through the API boundary.
func MessageOf(err error) string {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code != CodeInternal {
		return dErr.Message
	}
	return ""
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
