package stage

import (
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/go-microstage/logger"
)

// Position is an absolute stage position in micrometers.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Session drives one stage controller over an exclusively owned
// [Transport].
//
// A session starts uninitialized: the step multiplier needed to convert
// between steps and micrometers is unknown until the first successful
// GetStatus. Operations that depend on it fail with ErrNotInitialized
// until then. Successful status queries are the only writers of the
// cached multiplier, velocity and scale factor; a timed-out or failed
// exchange never touches the cache.
//
// Every operation is one strictly synchronous write-then-read exchange;
// a mutex serializes them so a single command is in flight at a time.
// Stats may be called from any goroutine, including while an exchange
// blocks in a long bounded read.
type Session struct {
	transport Transport
	cfg       *SessionConfig
	logger    logger.Logger

	// mu serializes exchanges and guards the cached device state.
	mu          sync.Mutex
	initialized bool
	stepMul     float64
	velocity    uint16
	scale       ScaleFactor

	counters *sessionCounters
}

// NewSession creates a session over transport. cfg may be nil, in which
// case defaults apply. The session owns the transport until Close.
func NewSession(transport Transport, cfg *SessionConfig) (*Session, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is nil", ErrInvalidArgument)
	}

	if cfg == nil {
		var err error
		cfg, err = NewSessionConfig()
		if err != nil {
			return nil, err
		}
	}

	return &Session{
		transport: transport,
		cfg:       cfg,
		logger:    cfg.GetLogger(),
		counters:  newSessionCounters(),
	}, nil
}

// Initialize runs the startup sequence: program the configured startup
// velocity, refresh the front panel, then fetch status to learn the
// step multiplier. A status velocity that does not match the value just
// programmed usually means the controller is still waking up; it is
// logged as a warning, not treated as a failure. A failed status
// exchange is returned as-is and leaves the session uninitialized; the
// caller may simply call GetStatus again.
func (s *Session) Initialize() error {
	if err := s.SetVelocity(s.cfg.StartupVelocity(), s.cfg.StartupScaleFactor()); err != nil {
		return err
	}

	if err := s.UpdatePanel(); err != nil {
		return err
	}

	status, err := s.GetStatus()
	if err != nil {
		return err
	}

	if status.Velocity != s.cfg.StartupVelocity() || status.Scale != s.cfg.StartupScaleFactor() {
		s.logger.Warn("stage did not confirm startup velocity",
			"wantVelocity", s.cfg.StartupVelocity(),
			"gotVelocity", status.Velocity,
			"wantScale", s.cfg.StartupScaleFactor(),
			"gotScale", status.Scale,
		)
	}

	return nil
}

// GetStatus queries the 32-byte status block, refreshes the cached step
// multiplier, velocity and scale factor, and marks the session
// initialized.
func (s *Session) GetStatus() (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.exchange(CmdGetStatus, EncodeGetStatus())
	if err != nil {
		return nil, err
	}

	status, err := DecodeStatus(payload)
	if err != nil {
		return nil, err
	}

	s.initialized = true
	s.stepMul = float64(status.StepMultiplier)
	s.velocity = status.Velocity
	s.scale = status.Scale

	s.logger.Debug("status refreshed",
		"stepMultiplier", status.StepMultiplier,
		"velocity", status.Velocity,
		"scaleFactor", status.Scale,
	)

	return status, nil
}

// GetPosition queries the absolute position and converts it to
// micrometers with the cached step multiplier. It requires a prior
// successful GetStatus.
func (s *Session) GetPosition() (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return Position{}, fmt.Errorf("%w: step multiplier unknown, call GetStatus first", ErrNotInitialized)
	}

	payload, err := s.exchange(CmdGetPosition, EncodeGetPosition())
	if err != nil {
		return Position{}, err
	}

	xs, ys, zs, err := DecodePosition(payload)
	if err != nil {
		return Position{}, err
	}

	var pos Position
	if pos.X, err = ToMicrometers(xs, s.stepMul); err != nil {
		return Position{}, err
	}
	if pos.Y, err = ToMicrometers(ys, s.stepMul); err != nil {
		return Position{}, err
	}
	if pos.Z, err = ToMicrometers(zs, s.stepMul); err != nil {
		return Position{}, err
	}

	s.logger.Info("stage position", "x", pos.X, "y", pos.Y, "z", pos.Z)

	return pos, nil
}

// GotoPosition moves the stage to the absolute position given in
// micrometers. Exactly three coordinates (X, Y, Z) are required. It
// needs a prior successful GetStatus and returns the wall-clock
// duration of the move exchange.
//
// On timeout the move acknowledgement did not arrive in time; the
// motion may still be in progress on the device. The move is never
// retried here, since a repeated move command could double-send motion.
func (s *Session) GotoPosition(um ...float64) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return 0, fmt.Errorf("%w: step multiplier unknown, call GetStatus first", ErrNotInitialized)
	}
	if len(um) != 3 {
		return 0, fmt.Errorf("%w: position needs exactly 3 coordinates, got %d", ErrInvalidArgument, len(um))
	}

	var steps [3]int32
	for i, v := range um {
		st, err := ToSteps(v, s.stepMul)
		if err != nil {
			return 0, err
		}
		steps[i] = st
	}

	start := time.Now()
	if _, err := s.exchange(CmdMove, EncodeMove(steps[0], steps[1], steps[2])); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	s.logger.Info("move complete", "x", um[0], "y", um[1], "z", um[2], "elapsed", elapsed)

	return elapsed, nil
}

// SetVelocity programs the velocity and scale factor. The cached
// velocity is deliberately left alone: the device does not echo the new
// value, so callers re-query GetStatus when they need confirmation.
func (s *Session) SetVelocity(speed uint16, scale ScaleFactor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame, err := EncodeSetVelocity(speed, scale)
	if err != nil {
		return err
	}

	_, err = s.exchange(CmdSetVelocity, frame)

	return err
}

// UpdatePanel refreshes the controller's front-panel display.
func (s *Session) UpdatePanel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.exchange(CmdUpdatePanel, EncodeUpdatePanel())

	return err
}

// SetOrigin makes the current position the absolute origin.
func (s *Session) SetOrigin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.exchange(CmdSetOrigin, EncodeSetOrigin())

	return err
}

// Reset sends the controller reset command. The device defines no reply
// for it, so success means only that the bytes were written; callers
// wanting confirmation poll GetStatus afterwards.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.exchange(CmdReset, EncodeReset())

	return err
}

// Initialized reports whether a successful GetStatus has populated the
// cached device state.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.initialized
}

// Stats returns a snapshot of the session counters. It is safe to call
// from any goroutine, including while an exchange is blocked in a read.
func (s *Session) Stats() Stats {
	return s.counters.snapshot()
}

// Close releases the owned transport. The session must not be used
// afterwards.
func (s *Session) Close() error {
	return s.transport.Close()
}

// exchange writes an encoded command frame and reads its complete
// reply, returning the reply with the terminator stripped. A reply
// shorter than cmd.ReplySize() within the reply timeout is a timeout,
// never a partial success. Commands without a reply return right after
// the write.
//
// Callers hold s.mu.
func (s *Session) exchange(cmd Command, frame []byte) ([]byte, error) {
	s.counters.exchanges.Inc()

	if err := s.transport.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: write %v command: %w", ErrTransport, cmd, err)
	}
	s.counters.bytesWritten.Add(int64(len(frame)))

	want := cmd.ReplySize()
	if want == 0 {
		return nil, nil
	}

	reply, err := s.transport.Read(want, s.cfg.ReplyTimeout())
	s.counters.bytesRead.Add(int64(len(reply)))
	if err != nil {
		return nil, fmt.Errorf("%w: read %v reply: %w", ErrTransport, cmd, err)
	}
	if len(reply) < want {
		s.counters.timeouts.Inc()
		return nil, fmt.Errorf("%w: %v: received %d of %d reply bytes", ErrTimeout, cmd, len(reply), want)
	}

	s.logger.Debug("exchange complete", "command", cmd.String(), "wrote", len(frame), "read", len(reply))

	return reply[:want-1], nil
}
