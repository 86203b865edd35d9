package hse

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML conversions for position values, used by tooling that stores taught
// positions in configuration files.

// MarshalYAML encodes the frame as its name ("base", "robot", "tool",
// "user1".."user16").
func (f CoordinateFrame) MarshalYAML() (any, error) {
	return f.String(), nil
}

// UnmarshalYAML decodes a frame from its name.
func (f *CoordinateFrame) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}

	frame, err := frameFromString(name)
	if err != nil {
		return err
	}
	*f = frame

	return nil
}

type cartesianYAML struct {
	X             int32             `yaml:"x"`
	Y             int32             `yaml:"y"`
	Z             int32             `yaml:"z"`
	Rx            int32             `yaml:"rx"`
	Ry            int32             `yaml:"ry"`
	Rz            int32             `yaml:"rz"`
	Frame         CoordinateFrame   `yaml:"frame"`
	Configuration PoseConfiguration `yaml:"configuration"`
	Tool          int               `yaml:"tool"`
}

// MarshalYAML encodes the position as a mapping with nine entries:
// x, y, z, rx, ry, rz, frame, configuration and tool.
func (p CartesianPosition) MarshalYAML() (any, error) {
	return cartesianYAML{
		X: p.X, Y: p.Y, Z: p.Z,
		Rx: p.Rx, Ry: p.Ry, Rz: p.Rz,
		Frame:         p.Frame,
		Configuration: p.Configuration,
		Tool:          p.Tool,
	}, nil
}

// UnmarshalYAML decodes a cartesian position. The node must be a mapping
// with exactly the nine entries produced by MarshalYAML.
func (p *CartesianPosition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) != 2*9 {
		return fmt.Errorf("%w: cartesian position must be a mapping with 9 entries", ErrInvalidArgument)
	}

	var decoded cartesianYAML
	if err := value.Decode(&decoded); err != nil {
		return err
	}

	*p = CartesianPosition{
		X: decoded.X, Y: decoded.Y, Z: decoded.Z,
		Rx: decoded.Rx, Ry: decoded.Ry, Rz: decoded.Rz,
		Frame:         decoded.Frame,
		Configuration: decoded.Configuration,
		Tool:          decoded.Tool,
	}

	return nil
}

type pulseYAML struct {
	Joints []int32 `yaml:"joints"`
	Tool   int     `yaml:"tool"`
}

// MarshalYAML encodes the position as a mapping with a joints list and tool.
func (p PulsePosition) MarshalYAML() (any, error) {
	return pulseYAML{Joints: p.Joints[:], Tool: p.Tool}, nil
}

// UnmarshalYAML decodes a pulse position. At most eight joint values are
// accepted; missing trailing joints stay zero.
func (p *PulsePosition) UnmarshalYAML(value *yaml.Node) error {
	var decoded pulseYAML
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	if len(decoded.Joints) > len(p.Joints) {
		return fmt.Errorf("%w: pulse position has %d joints, at most %d supported", ErrInvalidArgument, len(decoded.Joints), len(p.Joints))
	}

	*p = PulsePosition{Tool: decoded.Tool}
	copy(p.Joints[:], decoded.Joints)

	return nil
}
