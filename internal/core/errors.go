package core

import "errors"

// Error codes for errors that reach the wire.
const (
	ErrCodePersistFailed = "persist_failed"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
)

var (
	// ErrUnauthenticated means the handshake credential could not be resolved to an identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMalformedEvent means an inbound payload could not be parsed or had an unknown shape.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrNoChannelSelected means a message or typing event arrived before join_channel.
	ErrNoChannelSelected = errors.New("no channel selected")
	// ErrPersistFailure means the gateway failed to append a message.
	ErrPersistFailure = errors.New("persist failure")
	// ErrSlowConsumer means a connection's outbound queue overflowed.
	ErrSlowConsumer = errors.New("slow consumer")
	// ErrAlreadyRegistered is returned when the same connection is registered twice.
	ErrAlreadyRegistered = errors.New("connection already registered")
	// ErrHubClosed is returned by Connect after Close.
	ErrHubClosed = errors.New("hub closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
