package mocks

import "sync"

// MockStream records produced messages per topic.
type MockStream struct {
	mu       sync.Mutex
	Messages map[string][]string
}

func NewMockStream() *MockStream {
	return &MockStream{Messages: make(map[string][]string)}
}

func (m *MockStream) ProduceMessage(topic, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages[topic] = append(m.Messages[topic], message)
	return nil
}
