package serialport

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readResult scripts one Read call on the fake device. A zero-length
// chunk with a nil error models a driver read timeout.
type readResult struct {
	chunk []byte
	err   error
}

// fakeDevice stands in for the serial driver. Reads are served from a
// script; writes can be throttled to exercise the write loop.
type fakeDevice struct {
	reads      []readResult
	readIdx    int
	writes     [][]byte
	writeLimit int // max bytes accepted per Write call, 0 = unlimited
	writeErr   error
	timeouts   []time.Duration
	closed     bool
	closeErr   error
}

var _ serialPort = (*fakeDevice)(nil)

func (f *fakeDevice) Read(p []byte) (int, error) {
	if f.readIdx >= len(f.reads) {
		return 0, nil // script exhausted: behave like a timeout
	}

	r := f.reads[f.readIdx]
	f.readIdx++
	if r.err != nil {
		return copy(p, r.chunk), r.err
	}

	return copy(p, r.chunk), nil
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}

	n := len(p)
	if f.writeLimit > 0 && n > f.writeLimit {
		n = f.writeLimit
	}
	f.writes = append(f.writes, append([]byte(nil), p[:n]...))

	return n, nil
}

func (f *fakeDevice) SetReadTimeout(t time.Duration) error {
	f.timeouts = append(f.timeouts, t)
	return nil
}

func (f *fakeDevice) Close() error {
	f.closed = true
	return f.closeErr
}

func newFakePort(dev *fakeDevice) *Port {
	return &Port{name: "fake", dev: dev}
}

// --- Open tests ---

func TestOpen_EmptyName(t *testing.T) {
	_, err := Open("")
	assert.ErrorContains(t, err, "device name is empty")
}

func TestWithBaudRate_Invalid(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(0))
	assert.ErrorContains(t, err, "baud rate 0 out of range")

	_, err = Open("/dev/null", WithBaudRate(-9600))
	assert.ErrorContains(t, err, "out of range")
}

// --- Read tests ---

func TestPort_Read_Chunked(t *testing.T) {
	// The reply arrives in two chunks; both land in one result.
	dev := &fakeDevice{reads: []readResult{
		{chunk: []byte{1, 2, 3, 4, 5}},
		{chunk: []byte{6, 7, 8, 9, 10, 11, 12, 13}},
	}}
	p := newFakePort(dev)

	got, err := p.Read(13, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, got)

	// Every read call must re-arm the driver timeout with a positive budget.
	require.NotEmpty(t, dev.timeouts)
	for _, d := range dev.timeouts {
		assert.Positive(t, d)
	}
}

func TestPort_Read_Timeout(t *testing.T) {
	// Three bytes arrive, then the driver times out: partial result, nil
	// error.
	dev := &fakeDevice{reads: []readResult{
		{chunk: []byte{1, 2, 3}},
		{}, // zero-byte read = driver timeout
	}}
	p := newFakePort(dev)

	got, err := p.Read(13, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestPort_Read_NothingArrives(t *testing.T) {
	dev := &fakeDevice{}
	p := newFakePort(dev)

	got, err := p.Read(33, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPort_Read_DeviceError(t *testing.T) {
	dev := &fakeDevice{reads: []readResult{
		{chunk: []byte{1, 2}, err: io.ErrUnexpectedEOF},
	}}
	p := newFakePort(dev)

	got, err := p.Read(13, time.Second)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []byte{1, 2}, got, "bytes read before the failure are returned")
}

func TestPort_Read_ExpiredBudget(t *testing.T) {
	dev := &fakeDevice{reads: []readResult{{chunk: []byte{1}}}}
	p := newFakePort(dev)

	got, err := p.Read(13, -time.Second)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, dev.readIdx, "no device read with an expired budget")
}

// --- Write tests ---

func TestPort_Write_Partial(t *testing.T) {
	// The driver accepts at most 5 bytes per call; the loop must finish
	// the frame anyway.
	dev := &fakeDevice{writeLimit: 5}
	p := newFakePort(dev)

	frame := []byte{'m', 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 0x0D}
	require.NoError(t, p.Write(frame))

	var joined []byte
	for _, w := range dev.writes {
		joined = append(joined, w...)
	}
	assert.Equal(t, frame, joined)
	assert.Len(t, dev.writes, 3)
}

func TestPort_Write_Error(t *testing.T) {
	dev := &fakeDevice{writeErr: io.ErrClosedPipe}
	p := newFakePort(dev)

	err := p.Write([]byte{'s', 0x0D})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

// --- Close tests ---

func TestPort_Close(t *testing.T) {
	dev := &fakeDevice{}
	p := newFakePort(dev)

	require.NoError(t, p.Close())
	assert.True(t, dev.closed)
}

func TestPort_Close_Error(t *testing.T) {
	dev := &fakeDevice{closeErr: io.ErrClosedPipe}
	p := newFakePort(dev)

	assert.ErrorIs(t, p.Close(), io.ErrClosedPipe)
}
