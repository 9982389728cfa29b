// Package errs defines the domain error taxonomy shared by services and handlers.
//
// Services return *Error values for failures a caller can act on; anything
// else is treated as an opaque internal failure by the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeConflict         Code = "CONFLICT"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus maps a code to its response status. Conflicts are reported as
// 400 because clients of this API already treat them as bad requests.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeConflict:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error. Fields carries per-field messages for validation failures.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Fields: e.Fields, cause: err}
}

var (
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrPermissionDenied = &Error{Code: CodePermissionDenied, Message: "you do not have permission to perform this action"}
	ErrUnauthenticated  = &Error{Code: CodeUnauthenticated, Message: "authentication credentials were not provided"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "already exists"}
	ErrRateLimited      = &Error{Code: CodeRateLimited, Message: "rate limit exceeded"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal server error"}
)

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func PermissionDenied(msg string) *Error {
	return &Error{Code: CodePermissionDenied, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Invalid is a 400 failure that is not tied to one payload field.
func Invalid(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validation builds a single-field validation error. The message is used both
// as the top-level message and as the field entry.
func Validation(field, msg string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: msg,
		Fields:  map[string]string{field: msg},
	}
}

// ValidationFields builds a validation error from per-field messages. The
// top-level message joins the entries in field order so it is deterministic.
func ValidationFields(fields map[string]string) *Error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return &Error{
		Code:    CodeValidation,
		Message: strings.Join(msgs, "; "),
		Fields:  fields,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
