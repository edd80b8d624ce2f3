package stage

import (
	"encoding/binary"
	"fmt"
)

// Terminator is the single byte that ends every command and every reply
// that has one.
const Terminator byte = 0x0D

// PositionSize is the size of the position payload in a get-position
// reply: three signed 32-bit little-endian integers, X, Y, Z.
const PositionSize = 12

// Command identifies a stage command by its wire byte.
type Command byte

// Stage commands.
const (
	CmdGetPosition Command = 'c' // query the absolute position
	CmdMove        Command = 'm' // absolute move in step units
	CmdSetVelocity Command = 'V' // program velocity and scale factor
	CmdUpdatePanel Command = 'n' // refresh the front-panel display
	CmdSetOrigin   Command = 'o' // make the current position the origin
	CmdReset       Command = 'r' // controller reset, no reply
	CmdGetStatus   Command = 's' // query the 32-byte status block
)

// String returns a readable command name for errors and logs.
func (c Command) String() string {
	switch c {
	case CmdGetPosition:
		return "get position"
	case CmdMove:
		return "move"
	case CmdSetVelocity:
		return "set velocity"
	case CmdUpdatePanel:
		return "update panel"
	case CmdSetOrigin:
		return "set origin"
	case CmdReset:
		return "reset"
	case CmdGetStatus:
		return "get status"
	default:
		return fmt.Sprintf("unknown (0x%02x)", byte(c))
	}
}

// ReplySize returns the total reply size in bytes for the command,
// including the trailing terminator. Commands without a reply return 0.
func (c Command) ReplySize() int {
	switch c {
	case CmdGetPosition:
		return PositionSize + 1
	case CmdGetStatus:
		return StatusSize + 1
	case CmdMove, CmdSetVelocity, CmdUpdatePanel, CmdSetOrigin:
		return 1
	default:
		return 0
	}
}

// HasReply reports whether the device answers the command at all.
// Reset is the only fire-and-forget command.
func (c Command) HasReply() bool {
	return c.ReplySize() > 0
}

// EncodeGetPosition builds the get-position command.
func EncodeGetPosition() []byte {
	return []byte{byte(CmdGetPosition), Terminator}
}

// EncodeMove builds the absolute move command. x, y and z are in device
// step units, little-endian on the wire, X first.
func EncodeMove(x, y, z int32) []byte {
	buf := make([]byte, 14)
	buf[0] = byte(CmdMove)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(x))
	binary.LittleEndian.PutUint32(buf[5:9], uint32(y))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(z))
	buf[13] = Terminator

	return buf
}

// EncodeSetVelocity builds the set-velocity command. It fails before any
// bytes reach the wire when speed exceeds MaxVelocity or the scale
// factor is not ScaleCoarse or ScaleFine.
func EncodeSetVelocity(speed uint16, scale ScaleFactor) ([]byte, error) {
	word, err := PackVelocity(speed, scale)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 4)
	buf[0] = byte(CmdSetVelocity)
	binary.LittleEndian.PutUint16(buf[1:3], word)
	buf[3] = Terminator

	return buf, nil
}

// EncodeUpdatePanel builds the display refresh command.
func EncodeUpdatePanel() []byte {
	return []byte{byte(CmdUpdatePanel), Terminator}
}

// EncodeSetOrigin builds the set-origin command.
func EncodeSetOrigin() []byte {
	return []byte{byte(CmdSetOrigin), Terminator}
}

// EncodeReset builds the controller reset command.
func EncodeReset() []byte {
	return []byte{byte(CmdReset), Terminator}
}

// EncodeGetStatus builds the status query command.
func EncodeGetStatus() []byte {
	return []byte{byte(CmdGetStatus), Terminator}
}

// DecodePosition decodes the 12-byte payload of a get-position reply
// into step units.
func DecodePosition(data []byte) (x, y, z int32, err error) {
	if len(data) < PositionSize {
		return 0, 0, 0, fmt.Errorf("%w: position payload: got %d bytes, want %d", ErrInvalidArgument, len(data), PositionSize)
	}

	x = int32(binary.LittleEndian.Uint32(data[0:4]))
	y = int32(binary.LittleEndian.Uint32(data[4:8]))
	z = int32(binary.LittleEndian.Uint32(data[8:12]))

	return x, y, z, nil
}
