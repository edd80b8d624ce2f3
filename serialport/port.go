// Package serialport provides the serial-device [stage.Transport] for
// stage sessions, built on go.bug.st/serial.
//
// The stage controller's factory line settings are 9600 baud, 8 data
// bits, no parity, one stop bit. Only the baud rate is configurable;
// the frame format is fixed by the device.
package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/arloliu/go-microstage/stage"
)

// DefaultBaudRate matches the stage controller's factory setting.
const DefaultBaudRate = 9600

// serialPort is the subset of serial.Port this package uses. Tests
// substitute a fake device behind it.
type serialPort interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

type portConfig struct {
	baudRate int
}

// Option is a functional option for Open.
type Option interface {
	apply(*portConfig) error
}

type optFunc func(*portConfig) error

func (f optFunc) apply(cfg *portConfig) error { return f(cfg) }

// WithBaudRate overrides the default 9600 baud line rate for stages
// configured to a different speed.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *portConfig) error {
		if baud <= 0 {
			return fmt.Errorf("serialport: baud rate %d out of range", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// Port is a stage.Transport over a local serial device.
type Port struct {
	name string
	dev  serialPort
}

var _ stage.Transport = (*Port)(nil)

// Open opens the named serial device (e.g. "/dev/ttyUSB0" or "COM3")
// with the stage controller's 8N1 frame format.
func Open(name string, opts ...Option) (*Port, error) {
	if name == "" {
		return nil, fmt.Errorf("serialport: device name is empty")
	}

	cfg := &portConfig{baudRate: DefaultBaudRate}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	dev, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}

	return &Port{name: name, dev: dev}, nil
}

// Name returns the device name the port was opened with.
func (p *Port) Name() string { return p.name }

// Write sends data to the device, looping until every byte is accepted.
func (p *Port) Write(data []byte) error {
	for written := 0; written < len(data); {
		n, err := p.dev.Write(data[written:])
		written += n

		if err != nil {
			return fmt.Errorf("serialport: write %s: %w", p.name, err)
		}
	}

	return nil
}

// Read reads up to maxBytes bytes, waiting at most timeout for them. It
// returns however many bytes arrived before the deadline; a short
// result with a nil error means the timeout expired. The driver read
// timeout is re-armed with the remaining budget before each read call,
// so data trickling in byte by byte is still collected within the
// overall deadline.
func (p *Port) Read(maxBytes int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, maxBytes)
	got := 0
	deadline := time.Now().Add(timeout)

	for got < maxBytes {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := p.dev.SetReadTimeout(remaining); err != nil {
			return buf[:got], fmt.Errorf("serialport: set read timeout on %s: %w", p.name, err)
		}

		n, err := p.dev.Read(buf[got:])
		got += n

		if err != nil {
			return buf[:got], fmt.Errorf("serialport: read %s: %w", p.name, err)
		}
		if n == 0 {
			// The driver returns a zero-byte read when its timeout expires.
			break
		}
	}

	return buf[:got], nil
}

// Close releases the serial device.
func (p *Port) Close() error {
	if err := p.dev.Close(); err != nil {
		return fmt.Errorf("serialport: close %s: %w", p.name, err)
	}

	return nil
}
