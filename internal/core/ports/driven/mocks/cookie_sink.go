package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure MockCookieSink implements CookieSink
var _ driven.CookieSink = (*MockCookieSink)(nil)

// QueuedCookie is a recorded cookie
type QueuedCookie struct {
	Name  string
	Value string
	TTL   time.Duration
}

// MockCookieSink records queued cookies
type MockCookieSink struct {
	mu      sync.Mutex
	cookies []QueuedCookie
}

// NewMockCookieSink creates a new MockCookieSink
func NewMockCookieSink() *MockCookieSink {
	return &MockCookieSink{}
}

func (m *MockCookieSink) Queue(ctx context.Context, name, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = append(m.cookies, QueuedCookie{Name: name, Value: value, TTL: ttl})
}

// Cookies returns every queued cookie
func (m *MockCookieSink) Cookies() []QueuedCookie {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QueuedCookie(nil), m.cookies...)
}
