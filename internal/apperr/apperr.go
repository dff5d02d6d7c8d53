// Package apperr defines the error kinds the pipeline can raise, per the
// error handling design: validation and auth failures surface synchronously
// to the HTTP client, everything past admission is logged and dropped.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies where in the pipeline an error originated.
type Kind int

const (
	// ValidationFailure means the submitted event failed a Credential Sink
	// rule. Surfaced to the client as 400.
	ValidationFailure Kind = iota
	// AuthorizationFailure means the bearer token did not match. Surfaced
	// as 401.
	AuthorizationFailure
	// UpstreamFailure means the IP-intelligence provider or the database
	// failed mid-pipeline. Logged, pipeline aborted, never surfaced —
	// the client already received 200 because ingestion is fire-and-forget.
	UpstreamFailure
	// TransportFailure means the daemon's outbound POST to the ingestion
	// service failed. Logged by the daemon listener and dropped.
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case ValidationFailure:
		return "validation_failure"
	case AuthorizationFailure:
		return "authorization_failure"
	case UpstreamFailure:
		return "upstream_failure"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// StatusCode maps a Kind to the HTTP status it surfaces as, per spec §7.
// Kinds that never reach an HTTP client (UpstreamFailure, TransportFailure)
// map to 500 as a harmless default — nothing dispatches on it for those.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case ValidationFailure:
		return 400
	case AuthorizationFailure:
		return 401
	default:
		return 500
	}
}

// Error is a classified, human-readable pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation builds a ValidationFailure with the given field-citing message,
// matching the "input validation error: ..." phrasing of the original
// validator.
func Validation(message string) *Error {
	return &Error{Kind: ValidationFailure, Message: message}
}

// Authorization builds an AuthorizationFailure.
func Authorization(message string) *Error {
	return &Error{Kind: AuthorizationFailure, Message: message}
}

// Upstream wraps a failed provider or database call.
func Upstream(message string, cause error) *Error {
	return &Error{Kind: UpstreamFailure, Message: message, Cause: cause}
}

// Transport wraps a failed daemon-to-service POST.
func Transport(message string, cause error) *Error {
	return &Error{Kind: TransportFailure, Message: message, Cause: cause}
}

// As extracts an *Error from err, if any layer of its chain is one.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
