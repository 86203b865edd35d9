package hse

import "encoding/binary"

const (
	// HeaderSize is the size of the HSE message header in bytes.
	HeaderSize = 32
	// MaxPayloadSize is the maximum number of payload bytes in one datagram.
	MaxPayloadSize = 479
	// MaxDatagramSize is the largest datagram the protocol can produce.
	MaxDatagramSize = HeaderSize + MaxPayloadSize
)

// magic is the four byte marker every HSE datagram starts with.
var magic = [4]byte{'Y', 'E', 'R', 'C'}

// reservedByte is a fixed constant carried at offset 8 of every header.
const reservedByte = 0x03

// lastBlockFlag marks the terminal block of a multi-block file transfer.
const lastBlockFlag uint32 = 0x8000_0000

// Division distinguishes robot-command frames from file-transfer frames.
type Division uint8

const (
	// DivisionRobot marks robot command frames (variable access, status, motion).
	DivisionRobot Division = 1
	// DivisionFile marks file transfer frames.
	DivisionFile Division = 2
)

// Selector identifies the operation a request performs. The values come from
// the vendor command tables.
type Selector struct {
	Command   uint16
	Instance  uint16
	Attribute uint8
	Service   uint8
}

// RequestHeader holds the mutable fields of a request frame header.
type RequestHeader struct {
	PayloadSize uint16
	Division    Division
	Ack         uint8 // 0 for commands, 1 for block acknowledgements
	RequestID   uint8
	BlockNumber uint32
	Selector    Selector
}

// ResponseHeader holds the decoded fields of a response frame header.
type ResponseHeader struct {
	PayloadSize uint16
	Division    Division
	Ack         bool
	RequestID   uint8
	BlockNumber uint32
	Service     uint8
	Status      uint8
	ExtraStatus uint16
}

// LastBlock reports whether the response carries the terminal block of a
// multi-block transfer.
func (h *ResponseHeader) LastBlock() bool {
	return h.BlockNumber&lastBlockFlag != 0
}

// BlockIndex returns the block sequence number with the terminal flag masked off.
func (h *ResponseHeader) BlockIndex() uint32 {
	return h.BlockNumber &^ lastBlockFlag
}

// TerminalBlock marks blockNumber as the last block of a multi-block write.
func TerminalBlock(blockNumber uint32) uint32 {
	return blockNumber | lastBlockFlag
}

// AppendRequestHeader appends the 32-byte encoded request header to out.
// All multi-byte fields are little-endian.
func AppendRequestHeader(out []byte, header *RequestHeader) []byte {
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint16(out, HeaderSize)
	out = binary.LittleEndian.AppendUint16(out, header.PayloadSize)
	out = append(out, reservedByte, uint8(header.Division), header.Ack, header.RequestID)
	out = binary.LittleEndian.AppendUint32(out, header.BlockNumber)

	// Reserved 8 bytes. The vendor examples fill these with ASCII '9'.
	out = append(out, '9', '9', '9', '9', '9', '9', '9', '9')

	out = binary.LittleEndian.AppendUint16(out, header.Selector.Command)
	out = binary.LittleEndian.AppendUint16(out, header.Selector.Instance)
	out = append(out, header.Selector.Attribute, header.Selector.Service)

	// Padding.
	out = append(out, 0, 0)

	return out
}

// DecodeResponseHeader parses and validates the header of a received datagram.
// It returns the decoded header and the payload bytes that follow it.
//
// The datagram is malformed if the magic bytes or header size do not match,
// if the ack value is not 1, if the payload size exceeds MaxPayloadSize, or
// if the datagram length does not equal HeaderSize plus the payload size.
func DecodeResponseHeader(data []byte) (*ResponseHeader, []byte, error) {
	if len(data) < HeaderSize {
		return nil, nil, malformed("response (%d bytes) does not contain enough data for a header (%d bytes)", len(data), HeaderSize)
	}

	if [4]byte(data[:4]) != magic {
		return nil, nil, malformed("response does not start with magic bytes `YERC'")
	}

	headerSize := binary.LittleEndian.Uint16(data[4:6])
	if headerSize != HeaderSize {
		return nil, nil, malformed("header size (%d) does not match expected (%d)", headerSize, HeaderSize)
	}

	result := &ResponseHeader{}
	result.PayloadSize = binary.LittleEndian.Uint16(data[6:8])
	if result.PayloadSize > MaxPayloadSize {
		return nil, nil, malformed("received payload size (%d) exceeds the maximum size (%d)", result.PayloadSize, MaxPayloadSize)
	}

	if len(data) != HeaderSize+int(result.PayloadSize) {
		return nil, nil, malformed(
			"number of received bytes (%d) does not match the message size according to the header (%d)",
			len(data), HeaderSize+int(result.PayloadSize),
		)
	}

	result.Division = Division(data[9])

	if ack := data[10]; ack != 1 {
		return nil, nil, malformed("response message ACK value (%d) does not match the expected value (1)", ack)
	}
	result.Ack = true

	result.RequestID = data[11]
	result.BlockNumber = binary.LittleEndian.Uint32(data[12:16])

	// Bytes 16-23 are reserved and carry no meaning in responses.

	result.Service = data[24]
	result.Status = data[25]

	// Byte 26 is the added status size and byte 27 is padding; the extra
	// status is always treated as one 16-bit value.
	result.ExtraStatus = binary.LittleEndian.Uint16(data[28:30])

	return result, data[HeaderSize:], nil
}

// StatusError converts a non-zero response status into a *CommandError.
// It returns nil when the response reports success.
func (h *ResponseHeader) StatusError() error {
	if h.Status == 0 {
		return nil
	}

	return &CommandError{Status: h.Status, ExtraStatus: h.ExtraStatus}
}
