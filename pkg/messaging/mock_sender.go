package messaging

import (
	"context"
	"sync"
)

// MockMessageSender records messages in memory for testing.
type MockMessageSender struct {
	mu       sync.Mutex
	messages []*TradeMessage
	err      error
	closed   bool
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// FailWith makes subsequent sends return err.
func (m *MockMessageSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SendTradeMessage records msg.
func (m *MockMessageSender) SendTradeMessage(_ context.Context, msg *TradeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns the recorded messages in send order.
func (m *MockMessageSender) Messages() []*TradeMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*TradeMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Close marks the sender closed.
func (m *MockMessageSender) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockMessageSender) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)
