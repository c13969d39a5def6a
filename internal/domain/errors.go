package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures by how callers are expected to react to them.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "CONFIGURATION"
	KindTransport     ErrorKind = "TRANSPORT"
	KindApplication   ErrorKind = "APPLICATION"
	KindFileIO        ErrorKind = "FILE_IO"
	KindValidation    ErrorKind = "VALIDATION"
)

// Error represents a kbdocs error
type Error struct {
	Kind    ErrorKind
	Message string
	// Code is the server-supplied code for application errors, 0 otherwise.
	Code int
	// StatusCode is the HTTP status for transport errors, 0 when no response arrived.
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Kind == KindApplication && e.Code != 0:
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	case e.Kind == KindTransport && e.StatusCode != 0:
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels usable with errors.Is to test the kind only.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrApplication   = &Error{Kind: KindApplication}
	ErrFileIO        = &Error{Kind: KindFileIO}
	ErrValidation    = &Error{Kind: KindValidation}
)

// NewConfigurationError reports settings that could not be resolved.
func NewConfigurationError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// NewTransportError reports a failed HTTP exchange. statusCode is 0 when no response arrived.
func NewTransportError(message string, statusCode int, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, StatusCode: statusCode, Err: err}
}

// NewApplicationError reports a 2xx response whose envelope carried a non-zero code.
func NewApplicationError(code int, message string) *Error {
	if message == "" {
		message = "unknown error"
	}
	return &Error{Kind: KindApplication, Message: message, Code: code}
}

// NewFileIOError reports a failure writing output.
func NewFileIOError(path string, err error) *Error {
	return &Error{Kind: KindFileIO, Message: "failed to write " + path, Err: err}
}

// NewValidationError reports bad user input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
