package udp

import (
	"fmt"
	"time"

	"github.com/arloliu/go-moto/hse"
)

// sendAs sends cmd and asserts the decoded result type.
func sendAs[T any](c *Client, cmd hse.Command, timeout time.Duration) (T, error) {
	var zero T

	result, err := c.SendCommand(cmd, timeout)
	if err != nil {
		return zero, err
	}

	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected result type %T", hse.ErrMalformedResponse, result)
	}

	return value, nil
}

// sendAck sends a command whose response carries no data.
func sendAck(c *Client, cmd hse.Command, timeout time.Duration) error {
	_, err := c.SendCommand(cmd, timeout)

	return err
}

// ReadStatus reads the controller status flags.
func (c *Client) ReadStatus(timeout time.Duration) (hse.Status, error) {
	return sendAs[hse.Status](c, hse.ReadStatus{}, timeout)
}

// ReadCurrentPosition reads the current position of control group group
// (1-based; 0 selects the first group).
func (c *Client) ReadCurrentPosition(group uint16, timeout time.Duration) (hse.Position, error) {
	return sendAs[hse.Position](c, hse.ReadCurrentPosition{ControlGroup: group}, timeout)
}

// MoveL performs a linear move to a cartesian target.
func (c *Client) MoveL(move hse.MoveL, timeout time.Duration) error {
	return sendAck(c, move, timeout)
}

// ReadUint8Var reads byte variable index.
func (c *Client) ReadUint8Var(index uint16, timeout time.Duration) (uint8, error) {
	return sendAs[uint8](c, hse.ReadUint8Var{Index: index}, timeout)
}

// WriteUint8Var writes byte variable index.
func (c *Client) WriteUint8Var(index uint16, value uint8, timeout time.Duration) error {
	return sendAck(c, hse.WriteUint8Var{Index: index, Value: value}, timeout)
}

// ReadUint8Vars reads count contiguous byte variables starting at index.
// The controller requires an even count.
func (c *Client) ReadUint8Vars(index, count uint16, timeout time.Duration) ([]uint8, error) {
	return sendAs[[]uint8](c, hse.ReadUint8Vars{Index: index, Count: count}, timeout)
}

// ReadInt16Var reads 16-bit integer variable index.
func (c *Client) ReadInt16Var(index uint16, timeout time.Duration) (int16, error) {
	return sendAs[int16](c, hse.ReadInt16Var{Index: index}, timeout)
}

// WriteInt16Var writes 16-bit integer variable index.
func (c *Client) WriteInt16Var(index uint16, value int16, timeout time.Duration) error {
	return sendAck(c, hse.WriteInt16Var{Index: index, Value: value}, timeout)
}

// ReadInt32Var reads 32-bit integer variable index.
func (c *Client) ReadInt32Var(index uint16, timeout time.Duration) (int32, error) {
	return sendAs[int32](c, hse.ReadInt32Var{Index: index}, timeout)
}

// WriteInt32Var writes 32-bit integer variable index.
func (c *Client) WriteInt32Var(index uint16, value int32, timeout time.Duration) error {
	return sendAck(c, hse.WriteInt32Var{Index: index, Value: value}, timeout)
}

// ReadFloat32Var reads 32-bit float variable index.
func (c *Client) ReadFloat32Var(index uint16, timeout time.Duration) (float32, error) {
	return sendAs[float32](c, hse.ReadFloat32Var{Index: index}, timeout)
}

// WriteFloat32Var writes 32-bit float variable index.
func (c *Client) WriteFloat32Var(index uint16, value float32, timeout time.Duration) error {
	return sendAck(c, hse.WriteFloat32Var{Index: index, Value: value}, timeout)
}

// ReadPositionVar reads position variable index.
func (c *Client) ReadPositionVar(index uint16, timeout time.Duration) (hse.Position, error) {
	return sendAs[hse.Position](c, hse.ReadPositionVar{Index: index}, timeout)
}

// WritePositionVar writes position variable index.
func (c *Client) WritePositionVar(index uint16, value hse.Position, timeout time.Duration) error {
	return sendAck(c, hse.WritePositionVar{Index: index, Value: value}, timeout)
}

// ReadFileList lists the files on the controller matching pattern.
func (c *Client) ReadFileList(pattern string, timeout time.Duration) ([]string, error) {
	return sendAs[[]string](c, hse.ReadFileList{Pattern: pattern}, timeout)
}

// ReadFile reads one file from the controller.
func (c *Client) ReadFile(name string, timeout time.Duration) ([]byte, error) {
	return sendAs[[]byte](c, hse.ReadFile{Name: name}, timeout)
}

// WriteFile writes one file to the controller.
func (c *Client) WriteFile(name string, data []byte, timeout time.Duration) error {
	return sendAck(c, hse.WriteFile{Name: name, Data: data}, timeout)
}

// DeleteFile deletes one file from the controller.
func (c *Client) DeleteFile(name string, timeout time.Duration) error {
	return sendAck(c, hse.DeleteFile{Name: name}, timeout)
}
