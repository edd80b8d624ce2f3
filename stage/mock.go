package stage

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockTransport is a testify-based Transport mock for tests that drive a
// Session without hardware.
type MockTransport struct {
	mock.Mock
}

var _ Transport = (*MockTransport)(nil)

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockTransport) Read(maxBytes int, timeout time.Duration) ([]byte, error) {
	args := m.Called(maxBytes, timeout)
	data, _ := args.Get(0).([]byte)

	return data, args.Error(1)
}

func (m *MockTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}
