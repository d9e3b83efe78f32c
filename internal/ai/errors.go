package ai

import (
	"errors"
)

var (
	// ErrMissingCredential means no API key is configured. It is an expected
	// condition, not a fault.
	ErrMissingCredential = errors.New("remote classifier credential is not configured")
	// ErrTransport covers network failures and non-success HTTP statuses.
	ErrTransport = errors.New("remote classifier transport failure")
	// ErrMalformedResponse covers empty completions and content that is not a
	// prediction.
	ErrMalformedResponse = errors.New("remote classifier returned a malformed response")
)

// FailureKind tells why a remote verdict was not used.
type FailureKind string

const (
	FailureNone              FailureKind = "none"
	FailureMissingCredential FailureKind = "missing_credential"
	FailureTransport         FailureKind = "transport_failure"
	FailureMalformedResponse FailureKind = "malformed_response"
)

// KindOf classifies err. Errors that match no sentinel count as transport
// failures, since they arose before a response could be read.
func KindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrMissingCredential):
		return FailureMissingCredential
	case errors.Is(err, ErrMalformedResponse):
		return FailureMalformedResponse
	default:
		return FailureTransport
	}
}
