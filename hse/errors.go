package hse

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse indicates that a received datagram violates one of
	// the header or payload invariants of the protocol.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnknownRequest indicates that a response carries a request id that
	// does not match any in-flight request.
	ErrUnknownRequest = errors.New("unknown request")

	// ErrInvalidArgument indicates that a command was constructed with
	// arguments the protocol cannot represent.
	ErrInvalidArgument = errors.New("invalid argument")
)

// CommandError is returned when the controller answered a command with a
// non-zero status code. Status and ExtraStatus are reported verbatim as
// received from the controller.
type CommandError struct {
	Status      uint8
	ExtraStatus uint16
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with status 0x%02X and additional status 0x%04X", e.Status, e.ExtraStatus)
}

// malformed creates an ErrMalformedResponse error with a formatted detail message.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// expectPayloadSize validates the payload size of a decoded response.
func expectPayloadSize(actual int, expected int) error {
	if actual != expected {
		return malformed("unexpected payload size, expected exactly %d bytes, got %d", expected, actual)
	}

	return nil
}
