package stage

import "time"

// Transport is the byte-level link to the stage controller.
//
// Read blocks until maxBytes bytes arrive or the timeout elapses and
// returns however many bytes were read by then: a short or empty result
// with a nil error means the timeout expired, a non-nil error always
// means the transport itself failed. Write returns once every byte has
// been accepted or an error occurs.
//
// A Transport is exclusively owned by one Session for its whole
// lifetime; implementations do not need to be goroutine-safe.
type Transport interface {
	// Write sends the full byte sequence to the device.
	Write(data []byte) error
	// Read reads up to maxBytes bytes, waiting at most timeout.
	Read(maxBytes int, timeout time.Duration) ([]byte, error)
	// Close releases the underlying link.
	Close() error
}
