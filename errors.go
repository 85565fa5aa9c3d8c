package sitebrief

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be machine-readable and stable across releases. Codes
// map cleanly onto the pipeline's failure taxonomy: EREJECTED for URLs
// refused before any network call, EUNAVAILABLE for exhausted retrieval
// chains, EEXHAUSTED for exhausted prompt strategies, EINVALID for rejected
// candidate records and bad arguments.
const (
	ECONFLICT    = "conflict"
	EEXHAUSTED   = "exhausted"
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	EREJECTED    = "rejected"
	EUNAVAILABLE = "unavailable"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code & message.
//
// Any non-application error (such as a context cancellation) is reported as
// an EINTERNAL error to the caller.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string
}

// Error implements the error interface. Not used by the application
// otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("sitebrief error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
