// Package dErrors provides coded domain errors for the workflow engine.
//
// Services return these so the boundary layer can map business-rule
// failures to transport responses without string matching. Stores return
// sentinel errors (pkg/platform/sentinel); services translate them here.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed or unsupported input.
	CodeValidation Code = "validation"
	// CodeNotFound marks a missing referenced entity.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks an actor lacking the required role or not
	// being the addressed party.
	CodeUnauthorized Code = "unauthorized"
	// CodeConflict marks an operation not permitted in the entity's
	// current lifecycle state.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a model-level guard failure. Services
	// translate these to CodeConflict or CodeValidation at the boundary.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
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

// New constructs a coded error with a human-readable reason.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted reason.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message, preserving the cause chain.
// Wrapping nil returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for errors.As(err, &domainErr) {
		if domainErr.Code == code {
			return true
		}
		err = domainErr.cause
		domainErr = nil
	}
	return false
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
