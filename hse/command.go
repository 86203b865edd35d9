package hse

import "fmt"

// Vendor command numbers for robot-division frames.
const (
	cmdReadStatus          uint16 = 0x72
	cmdReadCurrentPosition uint16 = 0x75
	cmdUint8Variable       uint16 = 0x7F
	cmdInt16Variable       uint16 = 0x80
	cmdInt32Variable       uint16 = 0x81
	cmdFloat32Variable     uint16 = 0x82
	cmdPositionVariable    uint16 = 0x83
	cmdMoveL               uint16 = 0x8A
)

// Vendor command numbers for file-division frames.
const (
	cmdFileDelete uint16 = 0x09
	cmdFileWrite  uint16 = 0x15
	cmdFileRead   uint16 = 0x16
	cmdFileList   uint16 = 0x32
)

// Service codes selecting how a command addresses its target attributes.
const (
	serviceGetAll      uint8 = 0x01
	serviceSetAll      uint8 = 0x02
	serviceGetSingle   uint8 = 0x0E
	serviceSetSingle   uint8 = 0x10
	serviceReadPlural  uint8 = 0x33
	serviceWritePlural uint8 = 0x34
)

// Command describes one request/response exchange with the controller:
// the operation selector for the request header, the request payload, and
// how to decode the response payload into a typed value.
//
// Command implementations are plain value types; the udp package drives the
// transport and correlation.
type Command interface {
	// Division selects the robot or file channel for the frame.
	Division() Division

	// Selector returns the operation selector placed in the request header.
	Selector() Selector

	// AppendPayload appends the encoded request payload to out.
	// It returns an error if the command arguments cannot be encoded.
	AppendPayload(out []byte) ([]byte, error)

	// DecodeResponse decodes the response payload into the command's typed
	// result. Commands without response data return nil.
	DecodeResponse(header *ResponseHeader, payload []byte) (any, error)
}

// EncodeRequest encodes a complete request frame for the given command and
// request id. The initial block number is always zero; multi-block transfers
// are continued by the transport with explicit block acknowledgements.
func EncodeRequest(cmd Command, requestID uint8) ([]byte, error) {
	payload, err := cmd.AppendPayload(nil)
	if err != nil {
		return nil, err
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: request payload size (%d) exceeds the maximum size (%d)",
			ErrInvalidArgument, len(payload), MaxPayloadSize)
	}

	header := RequestHeader{
		PayloadSize: uint16(len(payload)),
		Division:    cmd.Division(),
		RequestID:   requestID,
		Selector:    cmd.Selector(),
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = AppendRequestHeader(out, &header)
	out = append(out, payload...)

	return out, nil
}

// EncodeBlockAck encodes the empty-payload acknowledgement frame sent by the
// local side after receiving one block of a multi-block read.
func EncodeBlockAck(cmd Command, requestID uint8, blockNumber uint32) []byte {
	header := RequestHeader{
		Division:    cmd.Division(),
		Ack:         1,
		RequestID:   requestID,
		BlockNumber: blockNumber,
		Selector:    cmd.Selector(),
	}

	return AppendRequestHeader(make([]byte, 0, HeaderSize), &header)
}

// EncodeBlock encodes one continuation block of a multi-block write. The
// terminal block must carry the top bit of blockNumber.
func EncodeBlock(cmd Command, requestID uint8, blockNumber uint32, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: block payload size (%d) exceeds the maximum size (%d)",
			ErrInvalidArgument, len(payload), MaxPayloadSize)
	}

	header := RequestHeader{
		PayloadSize: uint16(len(payload)),
		Division:    cmd.Division(),
		RequestID:   requestID,
		BlockNumber: blockNumber,
		Selector:    cmd.Selector(),
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = AppendRequestHeader(out, &header)
	out = append(out, payload...)

	return out, nil
}
