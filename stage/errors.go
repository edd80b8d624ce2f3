package stage

import "errors"

var (
	// ErrTransport indicates that the underlying transport failed during an
	// exchange. It wraps the I/O error and is fatal for the session; the
	// protocol defines no recovery short of reopening the link.
	ErrTransport = errors.New("stage: transport failure")

	// ErrTimeout indicates that a reply stayed incomplete within the reply
	// timeout. The wrapped message carries the command and the received
	// versus expected byte counts. Exchanges are never retried here: only
	// the caller knows whether re-sending a partially-acknowledged move is
	// safe.
	ErrTimeout = errors.New("stage: reply timeout")
)

var (
	// ErrNotInitialized indicates that an operation needs the cached step
	// multiplier before any status query has populated it. Call GetStatus
	// (or Initialize) first.
	ErrNotInitialized = errors.New("stage: session not initialized")

	// ErrInvalidArgument indicates a caller contract violation: an
	// out-of-range velocity, a position tuple without exactly three
	// coordinates, or a unit conversion overflowing the step range. It is
	// raised before any bytes reach the transport.
	ErrInvalidArgument = errors.New("stage: invalid argument")
)

var (
	// ErrInvalidStatus indicates that a status reply could not be decoded,
	// typically because fewer than StatusSize bytes were supplied.
	ErrInvalidStatus = errors.New("stage: invalid status block")
)
