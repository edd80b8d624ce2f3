package stage

import (
	"fmt"
	"math"
)

// ScaleFactor selects the velocity resolution mode of the stage motors.
type ScaleFactor uint8

const (
	// ScaleCoarse runs the motors at 10 micro-steps per full step.
	ScaleCoarse ScaleFactor = 10
	// ScaleFine runs the motors at 50 micro-steps per full step.
	ScaleFine ScaleFactor = 50
)

// MaxVelocity is the largest encodable velocity magnitude. Bit 15 of the
// velocity word carries the scale-factor flag, leaving 15 bits for the
// magnitude.
const MaxVelocity = 0x7FFF

// Velocity word layout.
const (
	velocityMask uint16 = 0x7FFF // bits 0-14: velocity magnitude
	scaleFineBit uint16 = 0x8000 // bit 15: set when the scale factor is ScaleFine
)

func (sf ScaleFactor) valid() bool {
	return sf == ScaleCoarse || sf == ScaleFine
}

// ToSteps converts a position in micrometers to device step units using
// the step multiplier reported by the device (steps per micrometer).
// The result is rounded to the nearest step and must fit a signed 32-bit
// integer.
func ToSteps(um float64, stepMultiplier float64) (int32, error) {
	steps := math.Round(um * stepMultiplier)
	if math.IsNaN(steps) || steps > math.MaxInt32 || steps < math.MinInt32 {
		return 0, fmt.Errorf("%w: %.4f um at step multiplier %v overflows the step range", ErrInvalidArgument, um, stepMultiplier)
	}

	return int32(steps), nil
}

// ToMicrometers converts device step units to micrometers using the step
// multiplier reported by the device. The multiplier must be a known
// positive value; a session that has never fetched status has none.
func ToMicrometers(steps int32, stepMultiplier float64) (float64, error) {
	if stepMultiplier <= 0 || math.IsNaN(stepMultiplier) {
		return 0, fmt.Errorf("%w: step multiplier %v", ErrInvalidArgument, stepMultiplier)
	}

	return float64(steps) / stepMultiplier, nil
}

// PackVelocity encodes a velocity setting into the 16-bit wire word.
// Bit 15 is set iff the scale factor is ScaleFine.
func PackVelocity(speed uint16, scale ScaleFactor) (uint16, error) {
	if speed > MaxVelocity {
		return 0, fmt.Errorf("%w: velocity %d exceeds maximum %d", ErrInvalidArgument, speed, MaxVelocity)
	}
	if !scale.valid() {
		return 0, fmt.Errorf("%w: scale factor %d is not %d or %d", ErrInvalidArgument, scale, ScaleCoarse, ScaleFine)
	}

	raw := speed & velocityMask
	if scale == ScaleFine {
		raw |= scaleFineBit
	}

	return raw, nil
}

// UnpackVelocity decodes the 16-bit wire word into a velocity magnitude
// and scale factor. The scale-factor bit never leaks into the magnitude.
func UnpackVelocity(raw uint16) (uint16, ScaleFactor) {
	speed := raw & velocityMask
	if raw&scaleFineBit != 0 {
		return speed, ScaleFine
	}

	return speed, ScaleCoarse
}
