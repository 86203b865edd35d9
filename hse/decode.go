package hse

import (
	"encoding/binary"
	"math"
)

// decoder is a bounds-checked cursor over a response payload.
// Every read validates the remaining length first and reports a short read
// as a malformed response.
type decoder struct {
	data []byte
	pos  int
}

func newDecoder(data []byte) *decoder {
	return &decoder{data: data}
}

// remaining returns the number of unread bytes.
func (d *decoder) remaining() int {
	return len(d.data) - d.pos
}

// read consumes length bytes and returns them.
func (d *decoder) read(length int) ([]byte, error) {
	if d.pos+length > len(d.data) {
		return nil, malformed("unexpected end of payload: need %d bytes, have %d", length, d.remaining())
	}
	result := d.data[d.pos : d.pos+length]
	d.pos += length

	return result, nil
}

// skip consumes length bytes without interpreting them.
func (d *decoder) skip(length int) error {
	_, err := d.read(length)
	return err
}

func (d *decoder) readUint8() (uint8, error) {
	data, err := d.read(1)
	if err != nil {
		return 0, err
	}

	return data[0], nil
}

func (d *decoder) readUint16() (uint16, error) {
	data, err := d.read(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(data), nil
}

func (d *decoder) readUint32() (uint32, error) {
	data, err := d.read(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(data), nil
}

func (d *decoder) readInt16() (int16, error) {
	value, err := d.readUint16()
	return int16(value), err
}

func (d *decoder) readInt32() (int32, error) {
	value, err := d.readUint32()
	return int32(value), err
}

// readFloat32 reinterprets a little-endian 32-bit word as an IEEE 754 float.
func (d *decoder) readFloat32() (float32, error) {
	value, err := d.readUint32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(value), nil
}

// readString consumes length bytes and returns them as a string.
func (d *decoder) readString(length int) (string, error) {
	data, err := d.read(length)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
