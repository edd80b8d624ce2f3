// Package stage implements the binary serial command protocol of a
// motorized three-axis micro-positioning stage controller.
//
// The package covers the full protocol surface: command framing, binary
// payload encoding for positions and velocities, decoding of the fixed
// 32-byte status block with its packed bit fields, unit conversion via
// the device-reported step multiplier, and the session state machine
// that sequences write-then-read exchanges over a [Transport].
//
// # Protocol Overview
//
// The controller speaks a fixed request/reply protocol over a
// point-to-point serial link. Every command is a single command byte,
// an optional binary payload, and a carriage-return terminator (0x0D).
// All multi-byte integers are little-endian:
//
//   - 'c' — get position; reply: 3×int32 step counts + terminator
//   - 'm' — move absolute; payload: 3×int32 step counts; reply: terminator
//   - 'V' — set velocity; payload: uint16 word, bit 15 = scale flag; reply: terminator
//   - 'n' — update front panel; reply: terminator
//   - 'o' — set origin; reply: terminator
//   - 'r' — reset; no reply
//   - 's' — get status; reply: 32-byte block + terminator
//
// The protocol is half-duplex at the application level: the device
// never pushes unsolicited data, and exactly one command is in flight
// at a time.
//
// # Units
//
// The device works in step units; the public API works in micrometers.
// The conversion scale (steps per micrometer) is the step multiplier
// reported in the status block, so a session must complete one
// successful GetStatus before positions can be interpreted. Velocity is
// a 15-bit magnitude plus a scale-factor flag choosing between
// ScaleCoarse (10 micro-steps per step) and ScaleFine (50).
//
// # Session Lifecycle
//
// A [Session] starts uninitialized. GetStatus is the only operation
// that populates the cached step multiplier, velocity and scale factor;
// GetPosition and GotoPosition fail with ErrNotInitialized until it has
// succeeded once. The usual startup is Initialize, which programs a
// known velocity, refreshes the panel and fetches status in one go.
//
// # Timeouts
//
// Every expected reply is read under a bounded wait (default 30 s,
// matching the worst-case long move). A reply that stays incomplete
// within the bound surfaces as ErrTimeout carrying the command and the
// received versus expected byte counts. Nothing is retried
// automatically: only the caller knows whether re-sending a
// partially-acknowledged move is safe.
package stage
