package stage

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/go-microstage/internal/util"
)

// StatusSize is the fixed size of the status block in bytes, excluding
// the trailing terminator.
const StatusSize = 32

// Status block field offsets, fixed by the controller firmware.
const (
	statusStepMulOffset  = 24 // uint16 LE: step multiplier (steps per micrometer)
	statusVelocityOffset = 28 // uint16 LE: velocity word (bits 0-14 magnitude, bit 15 scale flag)
)

// Status holds the decoded fields of the 32-byte status block.
//
// Only the step multiplier and the velocity word are interpreted here;
// the remaining bytes are kept verbatim and available through Raw.
type Status struct {
	// StepMultiplier is the device scale in steps per micrometer.
	StepMultiplier uint16
	// Velocity is the current velocity magnitude.
	Velocity uint16
	// Scale is the velocity resolution mode from bit 15 of the velocity word.
	Scale ScaleFactor

	raw []byte
}

// DecodeStatus decodes a status block. data must hold at least StatusSize
// bytes with the terminator already stripped by the caller.
func DecodeStatus(data []byte) (*Status, error) {
	if len(data) < StatusSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidStatus, len(data), StatusSize)
	}

	velWord := binary.LittleEndian.Uint16(data[statusVelocityOffset : statusVelocityOffset+2])
	speed, scale := UnpackVelocity(velWord)

	return &Status{
		StepMultiplier: binary.LittleEndian.Uint16(data[statusStepMulOffset : statusStepMulOffset+2]),
		Velocity:       speed,
		Scale:          scale,
		raw:            util.CloneSlice(data[:StatusSize], 0),
	}, nil
}

// Raw returns a copy of the full 32-byte status block, including the
// bytes this package does not interpret.
func (s *Status) Raw() []byte {
	return util.CloneSlice(s.raw, 0)
}
