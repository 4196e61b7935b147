package state

import (
	"github.com/stretchr/testify/mock"
)

var _ Transport = (*MockTransport)(nil)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Subscribe(topic string) {
	m.Called(topic)
}

func (m *MockTransport) Publish(topic string, payload []byte) {
	m.Called(topic, payload)
}
