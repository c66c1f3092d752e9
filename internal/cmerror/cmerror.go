// Package cmerror defines the single error shape every credential operation
// returns. Provider and platform failures are wrapped into this shape at the
// orchestrator boundary; no platform-specific error type crosses the public
// surface.
package cmerror

import (
	"errors"
	"fmt"
)

// Code is the stable symbolic error code callers branch on
type Code string

const (
	CodeInit           Code = "INIT_ERROR"
	CodeSaveCredential Code = "SAVE_CREDENTIAL_ERROR"
	CodeGetCredentials Code = "GET_CREDENTIALS_ERROR"
	CodeGetPasskey     Code = "GET_PASSKEY_CREDENTIALS_ERROR"
	CodeSignIn         Code = "SIGN_IN_ERROR"
	CodeLogout         Code = "LOGOUT_ERROR"
	CodeConfiguration  Code = "CONFIGURATION_ERROR"
	CodeUnsupported    Code = "PLATFORM_UNSUPPORTED"
)

// Error carries a stable code for programmatic branching, a human-readable
// message, and the underlying provider detail when one exists
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`

	cause error
}

// New creates an Error with no underlying cause
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around an underlying failure, preserving the concrete
// failure reason in Details
func Wrap(code Code, message string, cause error) *Error {
	e := &Error{Code: code, Message: message, cause: cause}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// As extracts an *Error from an error chain
func As(err error) (*Error, bool) {
	var cmErr *Error
	if errors.As(err, &cmErr) {
		return cmErr, true
	}
	return nil, false
}

// CodeOf returns the code of err if it carries one, or the empty code
func CodeOf(err error) Code {
	if cmErr, ok := As(err); ok {
		return cmErr.Code
	}
	return ""
}
