package mqtt

import (
	"github.com/stretchr/testify/mock"
)

var _ Handler = (*MockHandler)(nil)

type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Connected() {
	m.Called()
}

func (m *MockHandler) Disconnected(err error) {
	m.Called(err)
}

func (m *MockHandler) Message(topic string, payload []byte) {
	m.Called(topic, payload)
}

func (m *MockHandler) Error(err error) {
	m.Called(err)
}
