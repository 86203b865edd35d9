package udp

import "errors"

var (
	// ErrClientConfigNil indicates that a nil ClientConfig was provided.
	ErrClientConfigNil = errors.New("client config is nil")

	// ErrClosed indicates that the client was closed while the request was
	// in flight, or that a send was attempted on a closed client.
	ErrClosed = errors.New("client closed")

	// ErrNotConnected indicates that a send was attempted before Connect.
	ErrNotConnected = errors.New("client is not connected")

	// ErrTimeout indicates that the deadline expired before the response
	// completed.
	ErrTimeout = errors.New("command timeout")

	// ErrTooManyInFlight indicates that all 256 request ids are outstanding.
	ErrTooManyInFlight = errors.New("too many requests in flight")
)
