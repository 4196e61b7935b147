package mqtt

import (
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
	"sync"
	"time"
)

var _ client = (*mockClient)(nil)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Connect() pahomqtt.Token {
	args := m.Called()
	return args.Get(0).(pahomqtt.Token)
}

func (m *mockClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

func (m *mockClient) IsConnectionOpen() bool {
	return m.Called().Bool(0)
}

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(pahomqtt.Token)
}

func (m *mockClient) Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	args := m.Called(topic, qos, callback)
	return args.Get(0).(pahomqtt.Token)
}

var _ pahomqtt.Token = (*completedToken)(nil)

type completedToken struct {
	err error
}

func (c completedToken) Wait() bool {
	return true
}

func (c completedToken) WaitTimeout(time.Duration) bool {
	return true
}

func (c completedToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (c completedToken) Error() error {
	return c.err
}

var _ pahomqtt.Message = (*fakeMessage)(nil)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (f fakeMessage) Duplicate() bool   { return false }
func (f fakeMessage) Qos() byte         { return 0 }
func (f fakeMessage) Retained() bool    { return false }
func (f fakeMessage) Topic() string     { return f.topic }
func (f fakeMessage) MessageID() uint16 { return 0 }
func (f fakeMessage) Payload() []byte   { return f.payload }
func (f fakeMessage) Ack()              {}

var _ client = (*stallingClient)(nil)

// stallingClient holds every publish and subscribe until release is closed, recording payloads in order.
type stallingClient struct {
	release chan struct{}

	mu        sync.Mutex
	published []string
}

func newStallingClient() *stallingClient {
	return &stallingClient{release: make(chan struct{})}
}

func (s *stallingClient) Connect() pahomqtt.Token {
	return completedToken{}
}

func (s *stallingClient) Disconnect(uint) {}

func (s *stallingClient) IsConnectionOpen() bool {
	return true
}

func (s *stallingClient) Publish(_ string, _ byte, _ bool, payload interface{}) pahomqtt.Token {
	<-s.release

	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, string(payload.([]byte)))

	return completedToken{}
}

func (s *stallingClient) Subscribe(string, byte, pahomqtt.MessageHandler) pahomqtt.Token {
	<-s.release
	return completedToken{}
}

func (s *stallingClient) payloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := make([]string, len(s.published))
	copy(ret, s.published)
	return ret
}
