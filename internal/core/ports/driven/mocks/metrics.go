package mocks

import (
	"sync"

	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure MockAuthMetrics implements AuthMetrics
var _ driven.AuthMetrics = (*MockAuthMetrics)(nil)

// MockAuthMetrics counts recorded outcomes keyed by "flow/outcome"
type MockAuthMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMockAuthMetrics creates a new MockAuthMetrics
func NewMockAuthMetrics() *MockAuthMetrics {
	return &MockAuthMetrics{counts: make(map[string]int)}
}

func (m *MockAuthMetrics) LoginAttempt(flow, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts["login/"+flow+"/"+outcome]++
}

func (m *MockAuthMetrics) Lookup(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts["lookup/"+kind+"/"+outcome]++
}

// Count returns the recorded count for a key such as "login/password/authenticated"
func (m *MockAuthMetrics) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}
