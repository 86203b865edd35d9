package hse

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Variable commands address the controller's numbered variable registers.
// Single-variable access uses the get/set single services with a four byte
// payload slot (position variables use the full 52-byte position layout).
// The plural byte read used for service status registers uses the
// read-plural service with a 32-bit count in the request payload.

// ReadUint8Var reads one byte variable.
type ReadUint8Var struct {
	Index uint16
}

func (ReadUint8Var) Division() Division { return DivisionRobot }

func (c ReadUint8Var) Selector() Selector {
	return Selector{Command: cmdUint8Variable, Instance: c.Index, Attribute: 1, Service: serviceGetSingle}
}

func (ReadUint8Var) AppendPayload(out []byte) ([]byte, error) { return out, nil }

func (ReadUint8Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), 4); err != nil {
		return nil, err
	}

	return payload[0], nil
}

// WriteUint8Var writes one byte variable.
type WriteUint8Var struct {
	Index uint16
	Value uint8
}

func (WriteUint8Var) Division() Division { return DivisionRobot }

func (c WriteUint8Var) Selector() Selector {
	return Selector{Command: cmdUint8Variable, Instance: c.Index, Attribute: 1, Service: serviceSetSingle}
}

func (c WriteUint8Var) AppendPayload(out []byte) ([]byte, error) {
	return append(out, c.Value, 0, 0, 0), nil
}

func (WriteUint8Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}

// ReadUint8Vars reads Count contiguous byte variables starting at Index.
// The controller requires an even count; odd counts are rejected locally.
type ReadUint8Vars struct {
	Index uint16
	Count uint16
}

func (ReadUint8Vars) Division() Division { return DivisionRobot }

func (c ReadUint8Vars) Selector() Selector {
	return Selector{Command: cmdUint8Variable, Instance: c.Index, Attribute: 0, Service: serviceReadPlural}
}

func (c ReadUint8Vars) AppendPayload(out []byte) ([]byte, error) {
	if c.Count == 0 || c.Count > MaxPayloadSize {
		return nil, fmt.Errorf("%w: variable count %d out of range [1, %d]", ErrInvalidArgument, c.Count, MaxPayloadSize)
	}
	if c.Count%2 != 0 {
		return nil, fmt.Errorf("%w: variable count %d is odd, the controller requires an even count", ErrInvalidArgument, c.Count)
	}

	return binary.LittleEndian.AppendUint32(out, uint32(c.Count)), nil
}

func (c ReadUint8Vars) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), int(c.Count)); err != nil {
		return nil, err
	}

	values := make([]uint8, c.Count)
	copy(values, payload)

	return values, nil
}

// ReadInt16Var reads one 16-bit integer variable.
type ReadInt16Var struct {
	Index uint16
}

func (ReadInt16Var) Division() Division { return DivisionRobot }

func (c ReadInt16Var) Selector() Selector {
	return Selector{Command: cmdInt16Variable, Instance: c.Index, Attribute: 1, Service: serviceGetSingle}
}

func (ReadInt16Var) AppendPayload(out []byte) ([]byte, error) { return out, nil }

func (ReadInt16Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), 4); err != nil {
		return nil, err
	}

	value, err := newDecoder(payload).readInt16()

	return value, err
}

// WriteInt16Var writes one 16-bit integer variable.
type WriteInt16Var struct {
	Index uint16
	Value int16
}

func (WriteInt16Var) Division() Division { return DivisionRobot }

func (c WriteInt16Var) Selector() Selector {
	return Selector{Command: cmdInt16Variable, Instance: c.Index, Attribute: 1, Service: serviceSetSingle}
}

func (c WriteInt16Var) AppendPayload(out []byte) ([]byte, error) {
	out = binary.LittleEndian.AppendUint16(out, uint16(c.Value))
	return append(out, 0, 0), nil
}

func (WriteInt16Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}

// ReadInt32Var reads one 32-bit integer variable.
type ReadInt32Var struct {
	Index uint16
}

func (ReadInt32Var) Division() Division { return DivisionRobot }

func (c ReadInt32Var) Selector() Selector {
	return Selector{Command: cmdInt32Variable, Instance: c.Index, Attribute: 1, Service: serviceGetSingle}
}

func (ReadInt32Var) AppendPayload(out []byte) ([]byte, error) { return out, nil }

func (ReadInt32Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), 4); err != nil {
		return nil, err
	}

	value, err := newDecoder(payload).readInt32()

	return value, err
}

// WriteInt32Var writes one 32-bit integer variable.
type WriteInt32Var struct {
	Index uint16
	Value int32
}

func (WriteInt32Var) Division() Division { return DivisionRobot }

func (c WriteInt32Var) Selector() Selector {
	return Selector{Command: cmdInt32Variable, Instance: c.Index, Attribute: 1, Service: serviceSetSingle}
}

func (c WriteInt32Var) AppendPayload(out []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(out, uint32(c.Value)), nil
}

func (WriteInt32Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}

// ReadFloat32Var reads one 32-bit float variable.
type ReadFloat32Var struct {
	Index uint16
}

func (ReadFloat32Var) Division() Division { return DivisionRobot }

func (c ReadFloat32Var) Selector() Selector {
	return Selector{Command: cmdFloat32Variable, Instance: c.Index, Attribute: 1, Service: serviceGetSingle}
}

func (ReadFloat32Var) AppendPayload(out []byte) ([]byte, error) { return out, nil }

func (ReadFloat32Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), 4); err != nil {
		return nil, err
	}

	value, err := newDecoder(payload).readFloat32()

	return value, err
}

// WriteFloat32Var writes one 32-bit float variable.
type WriteFloat32Var struct {
	Index uint16
	Value float32
}

func (WriteFloat32Var) Division() Division { return DivisionRobot }

func (c WriteFloat32Var) Selector() Selector {
	return Selector{Command: cmdFloat32Variable, Instance: c.Index, Attribute: 1, Service: serviceSetSingle}
}

func (c WriteFloat32Var) AppendPayload(out []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(out, math.Float32bits(c.Value)), nil
}

func (WriteFloat32Var) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}

// ReadPositionVar reads one position variable.
type ReadPositionVar struct {
	Index uint16
}

func (ReadPositionVar) Division() Division { return DivisionRobot }

func (c ReadPositionVar) Selector() Selector {
	return Selector{Command: cmdPositionVariable, Instance: c.Index, Attribute: 0, Service: serviceGetAll}
}

func (ReadPositionVar) AppendPayload(out []byte) ([]byte, error) { return out, nil }

func (ReadPositionVar) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), positionWireSize); err != nil {
		return nil, err
	}

	return newDecoder(payload).readPosition()
}

// WritePositionVar writes one position variable.
type WritePositionVar struct {
	Index uint16
	Value Position
}

func (WritePositionVar) Division() Division { return DivisionRobot }

func (c WritePositionVar) Selector() Selector {
	return Selector{Command: cmdPositionVariable, Instance: c.Index, Attribute: 0, Service: serviceSetAll}
}

func (c WritePositionVar) AppendPayload(out []byte) ([]byte, error) {
	if c.Value == nil {
		return nil, fmt.Errorf("%w: position value is nil", ErrInvalidArgument)
	}

	return appendPosition(out, c.Value), nil
}

func (WritePositionVar) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}
