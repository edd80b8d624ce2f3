package stage

import (
	"fmt"
	"time"

	"github.com/arloliu/go-microstage/logger"
)

// Default session settings. The reply timeout covers the controller's
// worst-case long move; the startup velocity and scale factor are the
// values Initialize programs before the first status query.
const (
	DefaultReplyTimeout    = 30 * time.Second
	DefaultStartupVelocity = 200
	DefaultScaleFactor     = ScaleCoarse
)

// Reply timeout range limits.
const (
	MinReplyTimeout = 10 * time.Millisecond
	MaxReplyTimeout = 10 * time.Minute
)

// SessionConfig holds all configuration for a stage session.
type SessionConfig struct {
	// replyTimeout bounds the read of every expected reply.
	replyTimeout time.Duration

	// startupVelocity and startupScale are programmed by Initialize
	// before the first status query.
	startupVelocity uint16
	startupScale    ScaleFactor

	logger logger.Logger
}

// NewSessionConfig creates a session configuration with defaults
// applied, then applies opts in order; see the With* functions.
func NewSessionConfig(opts ...SessionOption) (*SessionConfig, error) {
	cfg := &SessionConfig{
		replyTimeout:    DefaultReplyTimeout,
		startupVelocity: DefaultStartupVelocity,
		startupScale:    DefaultScaleFactor,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// --- Getters ---

// ReplyTimeout returns the bounded-read timeout for expected replies.
func (cfg *SessionConfig) ReplyTimeout() time.Duration { return cfg.replyTimeout }

// StartupVelocity returns the velocity Initialize programs at startup.
func (cfg *SessionConfig) StartupVelocity() uint16 { return cfg.startupVelocity }

// StartupScaleFactor returns the scale factor Initialize programs at startup.
func (cfg *SessionConfig) StartupScaleFactor() ScaleFactor { return cfg.startupScale }

// GetLogger returns the configured logger.
func (cfg *SessionConfig) GetLogger() logger.Logger { return cfg.logger }

// --- SessionOption ---

// SessionOption is a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc func(*SessionConfig) error

func (f sessionOptFunc) apply(cfg *SessionConfig) error { return f(cfg) }

// WithReplyTimeout sets the bounded-read timeout for expected replies.
// Long moves at low velocity can take tens of seconds to acknowledge.
func WithReplyTimeout(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d < MinReplyTimeout || d > MaxReplyTimeout {
			return fmt.Errorf("stage: reply timeout %v out of range [%v, %v]", d, MinReplyTimeout, MaxReplyTimeout)
		}
		cfg.replyTimeout = d

		return nil
	})
}

// WithStartupVelocity sets the velocity programmed during Initialize.
func WithStartupVelocity(speed uint16) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if speed > MaxVelocity {
			return fmt.Errorf("stage: startup velocity %d exceeds maximum %d", speed, MaxVelocity)
		}
		cfg.startupVelocity = speed

		return nil
	})
}

// WithStartupScaleFactor sets the scale factor programmed during Initialize.
func WithStartupScaleFactor(scale ScaleFactor) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if !scale.valid() {
			return fmt.Errorf("stage: scale factor %d is not %d or %d", scale, ScaleCoarse, ScaleFine)
		}
		cfg.startupScale = scale

		return nil
	})
}

// WithLogger sets the logger for session events.
func WithLogger(l logger.Logger) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if l == nil {
			return fmt.Errorf("stage: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
