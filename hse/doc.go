// Package hse implements the wire codec for the Yaskawa Motoman high-speed
// Ethernet server (HSE) protocol.
//
// The protocol exchanges datagrams consisting of a fixed 32-byte header
// starting with the magic bytes "YERC", followed by up to 479 bytes of
// payload. All multi-byte integer fields, in both the header and the payload,
// are little-endian.
//
// The package provides:
//   - Request header encoding and response header decoding with full
//     validation of the header invariants.
//   - Command descriptors for robot commands (status, current position,
//     linear motion, typed variable access) and file commands (list, read,
//     write, delete).
//   - Typed value codecs for the payloads, including the position variable
//     sum type (joint pulse counts or a cartesian pose).
//
// The package performs no I/O; the udp package drives the actual transport.
package hse
