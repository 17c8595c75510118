// Package service provides testify mocks of the domain service ports.
package service

import (
	"context"
	"sync"

	"storebot/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockMessenger is a mock of service.Messenger that also records every
// outgoing message for assertions.
type MockMessenger struct {
	mock.Mock

	mu   sync.Mutex
	sent []SentMessage
}

// SentMessage is one recorded Send call.
type SentMessage struct {
	To  service.Recipient
	Msg service.Message
}

var _ service.Messenger = (*MockMessenger)(nil)

// NewMockMessenger creates a mock that asserts its expectations on cleanup.
func NewMockMessenger(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMessenger {
	m := &MockMessenger{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockMessenger) Send(ctx context.Context, to service.Recipient, msg service.Message) (int, error) {
	args := m.Called(ctx, to, msg)
	if args.Error(1) == nil {
		m.mu.Lock()
		m.sent = append(m.sent, SentMessage{To: to, Msg: msg})
		m.mu.Unlock()
	}

	return args.Int(0), args.Error(1)
}

func (m *MockMessenger) Edit(ctx context.Context, to service.Recipient, messageID int, msg service.Message) error {
	args := m.Called(ctx, to, messageID, msg)

	return args.Error(0)
}

func (m *MockMessenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	args := m.Called(ctx, callbackID, text, alert)

	return args.Error(0)
}

func (m *MockMessenger) SendLocation(ctx context.Context, to service.Recipient, lat, lon float64) error {
	args := m.Called(ctx, to, lat, lon)

	return args.Error(0)
}

// Sent returns the successfully sent messages in call order.
func (m *MockMessenger) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)

	return out
}

// SentTo returns the successfully sent messages addressed to to.
func (m *MockMessenger) SentTo(to service.Recipient) []service.Message {
	var out []service.Message
	for _, s := range m.Sent() {
		if s.To == to {
			out = append(out, s.Msg)
		}
	}

	return out
}
