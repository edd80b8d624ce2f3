package stage

import "github.com/puzpuzpuz/xsync/v3"

// Stats is a point-in-time snapshot of a session's wire activity.
type Stats struct {
	// Exchanges counts commands written to the transport, including Reset.
	Exchanges uint64
	// Timeouts counts exchanges whose reply stayed incomplete within the
	// reply timeout.
	Timeouts uint64
	// BytesWritten and BytesRead count raw wire traffic.
	BytesWritten uint64
	BytesRead    uint64
}

// sessionCounters aggregates wire activity. The counters are lock-free
// so a snapshot can be taken from monitoring goroutines while an
// exchange blocks in a long bounded read.
type sessionCounters struct {
	exchanges    *xsync.Counter
	timeouts     *xsync.Counter
	bytesWritten *xsync.Counter
	bytesRead    *xsync.Counter
}

func newSessionCounters() *sessionCounters {
	return &sessionCounters{
		exchanges:    xsync.NewCounter(),
		timeouts:     xsync.NewCounter(),
		bytesWritten: xsync.NewCounter(),
		bytesRead:    xsync.NewCounter(),
	}
}

func (c *sessionCounters) snapshot() Stats {
	return Stats{
		Exchanges:    uint64(c.exchanges.Value()),
		Timeouts:     uint64(c.timeouts.Value()),
		BytesWritten: uint64(c.bytesWritten.Value()),
		BytesRead:    uint64(c.bytesRead.Value()),
	}
}
