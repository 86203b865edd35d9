// Package udp implements the datagram client for the high-speed Ethernet
// server protocol.
//
// The client owns one UDP socket per division (robot commands and file
// transfers), correlates responses to requests by the one-byte request id,
// enforces a deadline per command, and reassembles multi-block file
// transfers. Commands are described by the hse package; this package only
// moves frames.
//
// All exported methods are safe for concurrent use. Every send resolves
// exactly once: with the decoded response, a command error reported by the
// controller, a timeout, or ErrClosed when the client is closed while the
// request is in flight.
package udp
