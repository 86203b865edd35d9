package hse

import (
	"encoding/binary"
	"fmt"
)

// ReadCurrentPosition reads the current position of one control group.
// ControlGroup 1 is the first robot; the controller numbers additional
// robots, base axes and stations after it.
type ReadCurrentPosition struct {
	ControlGroup uint16
}

func (ReadCurrentPosition) Division() Division { return DivisionRobot }

func (c ReadCurrentPosition) Selector() Selector {
	instance := c.ControlGroup
	if instance == 0 {
		instance = 1
	}

	return Selector{Command: cmdReadCurrentPosition, Instance: instance, Attribute: 0, Service: serviceGetAll}
}

func (ReadCurrentPosition) AppendPayload(out []byte) ([]byte, error) { return out, nil }

func (ReadCurrentPosition) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	if err := expectPayloadSize(len(payload), positionWireSize); err != nil {
		return nil, err
	}

	return newDecoder(payload).readPosition()
}

// Speed classification for motion commands.
type SpeedType uint32

const (
	// SpeedTypeJoint is a joint speed in 0.01% of the maximum.
	SpeedTypeJoint SpeedType = 0
	// SpeedTypeTranslation is a translation speed in 0.1 mm/s.
	SpeedTypeTranslation SpeedType = 1
	// SpeedTypeRotation is a rotation speed in 0.1 degrees/s.
	SpeedTypeRotation SpeedType = 2
)

// MoveL commands a linear cartesian move of one robot to Target.
type MoveL struct {
	Robot     uint32 // robot number, 1 is the first robot
	SpeedType SpeedType
	Speed     uint32
	Target    CartesianPosition
}

func (MoveL) Division() Division { return DivisionRobot }

func (MoveL) Selector() Selector {
	return Selector{Command: cmdMoveL, Instance: 1, Attribute: 1, Service: serviceSetAll}
}

// AppendPayload encodes the 26-word motion payload: robot and station
// numbers, speed classification and value, coordinate system, the six
// position components, pose configuration, tool and user frame numbers, and
// zeroed base and station axis words.
func (c MoveL) AppendPayload(out []byte) ([]byte, error) {
	robot := c.Robot
	if robot == 0 {
		robot = 1
	}
	if c.SpeedType > SpeedTypeRotation {
		return nil, fmt.Errorf("%w: unknown speed type %d", ErrInvalidArgument, c.SpeedType)
	}

	wireType, userFrame := c.Target.Frame.wireType()

	words := []uint32{
		robot,
		0, // station number
		uint32(c.SpeedType),
		c.Speed,
		wireType,
		uint32(c.Target.X),
		uint32(c.Target.Y),
		uint32(c.Target.Z),
		uint32(c.Target.Rx),
		uint32(c.Target.Ry),
		uint32(c.Target.Rz),
		0, // reserved
		0, // reserved
		uint32(c.Target.Configuration),
		0, // extended configuration
		uint32(c.Target.Tool),
		userFrame,
		0, 0, 0, // base axes
		0, 0, 0, 0, 0, 0, // station axes
	}

	for _, word := range words {
		out = binary.LittleEndian.AppendUint32(out, word)
	}

	return out, nil
}

func (MoveL) DecodeResponse(header *ResponseHeader, payload []byte) (any, error) {
	return nil, expectPayloadSize(len(payload), 0)
}
