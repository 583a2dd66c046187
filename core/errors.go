package core

import "github.com/pkg/errors"

// FieldError carries a message for a single offending struct field. The API
// layer renders these as a {"field": "message"} map.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a domain rule violation. Services return it for rules
// the validator tags cannot express (duplicate registration, booking slot
// taken, non-PDF upload); the HTTP error handler turns it into a 400.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals that the app cannot keep serving and should terminate.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks if an error chain contains a shutdown error.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
