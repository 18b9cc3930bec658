package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed Submit.
type ErrorKind string

const (
	// KindTransport is a network-level failure: connect, TLS, timeout, body read.
	KindTransport ErrorKind = "transport_error"
	// KindResponseSchema is a body that arrived but is not a completion response.
	KindResponseSchema ErrorKind = "response_schema_error"
)

// Error is returned by Client.Submit.
type Error struct {
	Kind ErrorKind
	// StatusCode is the HTTP status, zero for transport errors.
	StatusCode int
	// Body is the raw response text, set for schema errors.
	Body string
	// Provider holds error.message when the body was an API error object.
	Provider string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Provider != "":
		return fmt.Sprintf("%s: status %d: %s: %v", e.Kind, e.StatusCode, e.Provider, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Kind, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return hasKind(err, KindTransport)
}

// IsResponseSchema reports whether err is a malformed response failure.
func IsResponseSchema(err error) bool {
	return hasKind(err, KindResponseSchema)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
