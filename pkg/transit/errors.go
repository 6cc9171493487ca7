package transit

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindUnavailable covers network failures, timeouts and 5xx responses
	// that survived the retry budget.
	KindUnavailable ErrorKind = iota
	// KindAuthRejected is a 401 - fatal until the key configuration is fixed.
	KindAuthRejected
	// KindMalformedPayload is an upstream response that does not decode.
	// Callers treat it as an empty result, never as a crash.
	KindMalformedPayload
)

type Error struct {
	Kind    ErrorKind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

func newError(kind ErrorKind, wrapped error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Wrapped: wrapped,
	}
}

// ErrorKindOf reports the transit error kind of err, or ok=false when err is
// not a transit error.
func ErrorKindOf(err error) (ErrorKind, bool) {
	var transitError *Error
	if !errors.As(err, &transitError) {
		return 0, false
	}

	return transitError.Kind, true
}
