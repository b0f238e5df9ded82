// Package domainerrors defines the coded error vocabulary shared across
// modules. Services and stores return these errors; the HTTP layer maps them
// to status codes without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. Codes are part of the API surface:
// they appear verbatim in JSON error responses.
type Code string

const (
	// CodeInvalidInput marks malformed IDs, dates, or times rejected at the
	// trust boundary. Never retried.
	CodeInvalidInput Code = "invalid_input"

	// CodeInvalidConfig marks a group configuration that violates an
	// invariant (bad time window, out-of-range tolerance). Raised at
	// configuration time so a misconfigured group fails fast.
	CodeInvalidConfig Code = "invalid_configuration"

	// Eligibility refusals. These are expected business outcomes, returned
	// as typed errors so callers can present specific messages.
	CodeNotEnrolled      Code = "not_enrolled"
	CodeNoMatchingWindow Code = "no_matching_window"
	CodeAlreadyMarked    Code = "already_marked"

	// CodeScheduleConflict is returned when a candidate enrollment collides
	// with a window of an existing enrollment in the same term.
	CodeScheduleConflict Code = "schedule_conflict"

	// CodeAlreadyEnrolled guards the one-enrollment-per-(student,group,term)
	// invariant at the store boundary.
	CodeAlreadyEnrolled Code = "already_enrolled"

	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeInternal   Code = "internal_error"

	// CodeStoreFailure wraps collaborator storage failures. Surfaced once,
	// never retried by the engine.
	CodeStoreFailure Code = "store_failure"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors so nothing leaks through the HTTP boundary unclassified.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to its transport status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest, CodeInvalidConfig:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotEnrolled, CodeNoMatchingWindow:
		return http.StatusUnprocessableEntity
	case CodeAlreadyMarked, CodeAlreadyEnrolled, CodeScheduleConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
