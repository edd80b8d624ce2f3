package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusBlock builds a 32-byte status block with the given step
// multiplier and velocity word at the documented offsets.
func statusBlock(stepMul uint16, velWord uint16) []byte {
	data := make([]byte, StatusSize)
	data[statusStepMulOffset] = byte(stepMul)
	data[statusStepMulOffset+1] = byte(stepMul >> 8)
	data[statusVelocityOffset] = byte(velWord)
	data[statusVelocityOffset+1] = byte(velWord >> 8)

	return data
}

func TestDecodeStatus(t *testing.T) {
	// Known vector: multiplier 25, velocity 200, coarse scale.
	data := statusBlock(25, 200)

	status, err := DecodeStatus(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(25), status.StepMultiplier)
	assert.Equal(t, uint16(200), status.Velocity)
	assert.Equal(t, ScaleCoarse, status.Scale)
}

func TestDecodeStatus_ScaleBitIsolation(t *testing.T) {
	// Only bit 15 of the velocity word set: velocity must stay 0 and the
	// scale must flip to fine.
	data := statusBlock(0, 0x8000)

	status, err := DecodeStatus(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), status.StepMultiplier)
	assert.Equal(t, uint16(0), status.Velocity)
	assert.Equal(t, ScaleFine, status.Scale)
}

func TestDecodeStatus_FullWidthFields(t *testing.T) {
	// Both status bytes of the multiplier carry weight: 0x1234 = 4660.
	data := statusBlock(0x1234, 0xFFFF)

	status, err := DecodeStatus(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), status.StepMultiplier)
	assert.Equal(t, uint16(0x7FFF), status.Velocity)
	assert.Equal(t, ScaleFine, status.Scale)
}

func TestDecodeStatus_ShortInput(t *testing.T) {
	_, err := DecodeStatus(make([]byte, StatusSize-1))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = DecodeStatus(nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatus_Raw(t *testing.T) {
	data := statusBlock(25, 200)
	for i := 0; i < 8; i++ {
		data[i] = byte(0xA0 + i) // opaque bytes must survive decoding untouched
	}

	status, err := DecodeStatus(data)
	require.NoError(t, err)

	raw := status.Raw()
	require.Len(t, raw, StatusSize)
	assert.Equal(t, data, raw)

	// Raw hands out copies: mutations must not reach the decoded status
	// or later callers.
	raw[0] = 0x00
	data[1] = 0x00
	assert.Equal(t, byte(0xA0), status.Raw()[0])
	assert.Equal(t, byte(0xA1), status.Raw()[1])
}
