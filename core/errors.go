package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// AuthorizationError indicates that the acting user lacks rights over the
// target resource. It is never fatal; boundaries degrade it to a redirect.
type AuthorizationError struct {
	Err error
}

func NewAuthorizationError(msg string) error {
	return &AuthorizationError{Err: errors.New(msg)}
}

func (err AuthorizationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsAuthorization(err error) bool {
	_, ok := errors.Cause(err).(*AuthorizationError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
