package events

import (
	"context"
	"sync"
)

type MockPublisher struct {
	Err error

	mu     sync.Mutex
	events []OrderPlaced
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishOrderPlaced(_ context.Context, event OrderPlaced) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)

	return m.Err
}

func (m *MockPublisher) Published() []OrderPlaced {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]OrderPlaced(nil), m.events...)
}
