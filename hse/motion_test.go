package hse

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveLPayload(t *testing.T) {
	move := MoveL{
		Robot:     1,
		SpeedType: SpeedTypeTranslation,
		Speed:     500, // 50 mm/s
		Target: CartesianPosition{
			X: 1_000_000, Y: -500_000, Z: 250_000,
			Rx: 1_800_000, Ry: 0, Rz: -900_000,
			Frame:         FrameRobot,
			Configuration: NewPoseConfiguration(false, true, false, false, false),
			Tool:          3,
		},
	}

	payload, err := move.AppendPayload(nil)
	require.NoError(t, err)
	require.Len(t, payload, 26*4)

	word := func(i int) uint32 { return binary.LittleEndian.Uint32(payload[i*4:]) }

	assert.Equal(t, uint32(1), word(0), "robot")
	assert.Equal(t, uint32(0), word(1), "station")
	assert.Equal(t, uint32(1), word(2), "speed type")
	assert.Equal(t, uint32(500), word(3), "speed")
	assert.Equal(t, uint32(17), word(4), "coordinate system")
	assert.Equal(t, uint32(1_000_000), word(5), "x")
	assert.Equal(t, uint32(0xFFF85EE0), word(6), "y")
	assert.Equal(t, uint32(250_000), word(7), "z")
	assert.Equal(t, uint32(2), word(13), "configuration")
	assert.Equal(t, uint32(3), word(15), "tool")
	assert.Equal(t, uint32(0), word(16), "user frame")
}

func TestMoveLDefaultsRobot(t *testing.T) {
	payload, err := MoveL{}.AppendPayload(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(payload[0:4]))
}

func TestReadCurrentPositionSelector(t *testing.T) {
	assert.Equal(t, uint16(1), ReadCurrentPosition{}.Selector().Instance)
	assert.Equal(t, uint16(2), ReadCurrentPosition{ControlGroup: 2}.Selector().Instance)
	assert.Equal(t, uint16(0x75), ReadCurrentPosition{}.Selector().Command)
}
