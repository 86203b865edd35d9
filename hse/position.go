package hse

import (
	"encoding/binary"
	"fmt"
)

// Wire codes for the position type word.
const (
	positionTypePulse     uint32 = 0
	positionTypeBase      uint32 = 16
	positionTypeRobot     uint32 = 17
	positionTypeTool      uint32 = 18
	positionTypeUserFrame uint32 = 19
)

// positionWireSize is the encoded size of a position value: thirteen 32-bit
// words (type, configuration, tool, user frame, extended configuration and
// eight axis words).
const positionWireSize = 13 * 4

// CoordinateFrame identifies the coordinate system a cartesian position is
// expressed in: the base, robot or tool frame, or one of the sixteen
// user-defined frames.
type CoordinateFrame uint8

const (
	FrameBase CoordinateFrame = iota
	FrameRobot
	FrameTool
	FrameUser1
	FrameUser2
	FrameUser3
	FrameUser4
	FrameUser5
	FrameUser6
	FrameUser7
	FrameUser8
	FrameUser9
	FrameUser10
	FrameUser11
	FrameUser12
	FrameUser13
	FrameUser14
	FrameUser15
	FrameUser16
)

// UserFrame returns the coordinate frame for user frame n in [1, 16].
func UserFrame(n int) (CoordinateFrame, error) {
	if n < 1 || n > 16 {
		return 0, fmt.Errorf("%w: user frame %d out of range [1, 16]", ErrInvalidArgument, n)
	}

	return FrameUser1 + CoordinateFrame(n-1), nil
}

// IsUserFrame reports whether the frame is one of the user-defined frames.
func (f CoordinateFrame) IsUserFrame() bool {
	return f >= FrameUser1 && f <= FrameUser16
}

// UserFrameIndex returns the zero-based user frame index, or -1 for the
// base, robot and tool frames.
func (f CoordinateFrame) UserFrameIndex() int {
	if !f.IsUserFrame() {
		return -1
	}

	return int(f - FrameUser1)
}

func (f CoordinateFrame) String() string {
	switch f {
	case FrameBase:
		return "base"
	case FrameRobot:
		return "robot"
	case FrameTool:
		return "tool"
	}
	if f.IsUserFrame() {
		return fmt.Sprintf("user%d", f.UserFrameIndex()+1)
	}

	return fmt.Sprintf("frame(%d)", uint8(f))
}

// frameFromString is the inverse of CoordinateFrame.String.
func frameFromString(name string) (CoordinateFrame, error) {
	switch name {
	case "base":
		return FrameBase, nil
	case "robot":
		return FrameRobot, nil
	case "tool":
		return FrameTool, nil
	}

	var n int
	if _, err := fmt.Sscanf(name, "user%d", &n); err == nil {
		return UserFrame(n)
	}

	return 0, fmt.Errorf("%w: unknown coordinate frame %q", ErrInvalidArgument, name)
}

// wireType returns the (type, user frame) pair for the frame tag.
func (f CoordinateFrame) wireType() (uint32, uint32) {
	switch f {
	case FrameBase:
		return positionTypeBase, 0
	case FrameRobot:
		return positionTypeRobot, 0
	case FrameTool:
		return positionTypeTool, 0
	default:
		return positionTypeUserFrame, uint32(f.UserFrameIndex())
	}
}

// frameFromWire converts a received (type, user frame) pair into a frame tag.
func frameFromWire(wireType uint32, userFrame uint32) (CoordinateFrame, error) {
	switch wireType {
	case positionTypeBase:
		return FrameBase, nil
	case positionTypeRobot:
		return FrameRobot, nil
	case positionTypeTool:
		return FrameTool, nil
	case positionTypeUserFrame:
		if userFrame > 15 {
			return 0, malformed("unexpected user frame, expected at most 15, got %d", userFrame)
		}

		return FrameUser1 + CoordinateFrame(userFrame), nil
	}

	return 0, malformed("unknown position type (%d), expected 0, 16, 17, 18 or 19", wireType)
}

// PoseConfiguration is the five-bit pose configuration bitfield describing
// the arm posture of a cartesian position.
type PoseConfiguration uint8

const (
	PoseFlip     PoseConfiguration = 0x01
	PoseLowerArm PoseConfiguration = 0x02
	PoseHighR    PoseConfiguration = 0x04
	PoseHighT    PoseConfiguration = 0x08
	PoseHighS    PoseConfiguration = 0x10
)

// NewPoseConfiguration assembles a pose configuration from its flags.
func NewPoseConfiguration(flip, lowerArm, highR, highT, highS bool) PoseConfiguration {
	var cfg PoseConfiguration
	if flip {
		cfg |= PoseFlip
	}
	if lowerArm {
		cfg |= PoseLowerArm
	}
	if highR {
		cfg |= PoseHighR
	}
	if highT {
		cfg |= PoseHighT
	}
	if highS {
		cfg |= PoseHighS
	}

	return cfg
}

func (c PoseConfiguration) Flip() bool     { return c&PoseFlip != 0 }
func (c PoseConfiguration) LowerArm() bool { return c&PoseLowerArm != 0 }
func (c PoseConfiguration) HighR() bool    { return c&PoseHighR != 0 }
func (c PoseConfiguration) HighT() bool    { return c&PoseHighT != 0 }
func (c PoseConfiguration) HighS() bool    { return c&PoseHighS != 0 }

// Position is the sum of the two position variants: joint pulse counts or a
// cartesian pose. Only PulsePosition and CartesianPosition implement it.
type Position interface {
	position()
}

// PulsePosition holds eight signed joint pulse counts and a tool index.
// Robots with fewer than eight axes leave the trailing counts at zero.
type PulsePosition struct {
	Joints [8]int32
	Tool   int
}

func (PulsePosition) position() {}

// CartesianPosition holds a cartesian pose. X, Y and Z are in micrometers;
// Rx, Ry and Rz are in 0.0001 degrees.
type CartesianPosition struct {
	X, Y, Z       int32
	Rx, Ry, Rz    int32
	Frame         CoordinateFrame
	Configuration PoseConfiguration
	Tool          int
}

func (CartesianPosition) position() {}

// appendPosition appends the 52-byte wire encoding of a position value.
func appendPosition(out []byte, position Position) []byte {
	switch p := position.(type) {
	case PulsePosition:
		out = binary.LittleEndian.AppendUint32(out, positionTypePulse)
		out = binary.LittleEndian.AppendUint32(out, 0) // configuration
		out = binary.LittleEndian.AppendUint32(out, uint32(p.Tool))
		out = binary.LittleEndian.AppendUint32(out, 0) // user frame
		out = binary.LittleEndian.AppendUint32(out, 0) // extended configuration
		for _, joint := range p.Joints {
			out = binary.LittleEndian.AppendUint32(out, uint32(joint))
		}

	case CartesianPosition:
		wireType, userFrame := p.Frame.wireType()
		out = binary.LittleEndian.AppendUint32(out, wireType)
		out = binary.LittleEndian.AppendUint32(out, uint32(p.Configuration))
		out = binary.LittleEndian.AppendUint32(out, uint32(p.Tool))
		out = binary.LittleEndian.AppendUint32(out, userFrame)
		out = binary.LittleEndian.AppendUint32(out, 0) // extended configuration
		for _, component := range [6]int32{p.X, p.Y, p.Z, p.Rx, p.Ry, p.Rz} {
			out = binary.LittleEndian.AppendUint32(out, uint32(component))
		}
		out = append(out, 0, 0, 0, 0, 0, 0, 0, 0) // padding to eight axis words
	}

	return out
}

// readPosition decodes the 52-byte wire encoding of a position value.
func (d *decoder) readPosition() (Position, error) {
	wireType, err := d.readUint32()
	if err != nil {
		return nil, err
	}

	configuration, err := d.readUint32()
	if err != nil {
		return nil, err
	}

	tool, err := d.readUint32()
	if err != nil {
		return nil, err
	}

	userFrame, err := d.readUint32()
	if err != nil {
		return nil, err
	}

	// Extended joint configuration is not supported.
	if err := d.skip(4); err != nil {
		return nil, err
	}

	if wireType == positionTypePulse {
		result := PulsePosition{Tool: int(tool)}
		for i := range result.Joints {
			if result.Joints[i], err = d.readInt32(); err != nil {
				return nil, err
			}
		}

		return result, nil
	}

	frame, err := frameFromWire(wireType, userFrame)
	if err != nil {
		return nil, err
	}

	result := CartesianPosition{
		Frame:         frame,
		Configuration: PoseConfiguration(configuration),
		Tool:          int(tool),
	}

	components := [6]*int32{&result.X, &result.Y, &result.Z, &result.Rx, &result.Ry, &result.Rz}
	for _, component := range components {
		if *component, err = d.readInt32(); err != nil {
			return nil, err
		}
	}

	// The last two axis words are padding for cartesian positions.
	if err := d.skip(8); err != nil {
		return nil, err
	}

	return result, nil
}
