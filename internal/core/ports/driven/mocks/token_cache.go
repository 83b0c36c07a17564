package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure MockTokenCache implements TokenCache
var _ driven.TokenCache = (*MockTokenCache)(nil)

// CachedToken is a recorded TokenCache write
type CachedToken struct {
	Token domain.BearerToken
	TTL   time.Duration
}

// MockTokenCache is a mock implementation of TokenCache for testing
type MockTokenCache struct {
	mu     sync.RWMutex
	tokens map[string]CachedToken
	writes int

	// PutErr, when set, is returned by Put without storing anything
	PutErr error

	// DeleteErr, when set, is returned by Delete without removing anything
	DeleteErr error
}

// NewMockTokenCache creates a new MockTokenCache
func NewMockTokenCache() *MockTokenCache {
	return &MockTokenCache{tokens: make(map[string]CachedToken)}
}

func (m *MockTokenCache) Put(ctx context.Context, userID string, token domain.BearerToken, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.tokens[userID] = CachedToken{Token: token, TTL: ttl}
	return nil
}

func (m *MockTokenCache) Get(ctx context.Context, userID string) (domain.BearerToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.tokens[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return entry.Token, nil
}

func (m *MockTokenCache) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.tokens, userID)
	return nil
}

// Entry returns the recorded write for userID
func (m *MockTokenCache) Entry(userID string) (CachedToken, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.tokens[userID]
	return entry, ok
}

// Writes returns the number of Put calls, including failed ones
func (m *MockTokenCache) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
