package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure MockAuthAdapter implements AuthAdapter
var _ driven.AuthAdapter = (*MockAuthAdapter)(nil)

// MockAuthAdapter is a mock implementation of AuthAdapter for testing.
// It uses plain text password comparison and base64-encoded JSON for cookies.
// NOT secure - only for testing.
type MockAuthAdapter struct {
	verifications atomic.Int64
}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

type mockCookie struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	ExpiresAt int64  `json:"exp"`
}

// HashPassword returns the password as-is (for testing only)
func (m *MockAuthAdapter) HashPassword(password string) (string, error) {
	return password, nil
}

// VerifyPassword compares password with hash directly (for testing only)
func (m *MockAuthAdapter) VerifyPassword(password, hash string) bool {
	m.verifications.Add(1)
	return password != "" && password == hash
}

// Verifications returns how many times VerifyPassword ran
func (m *MockAuthAdapter) Verifications() int64 {
	return m.verifications.Load()
}

// SignCookie encodes the cookie as base64 JSON
func (m *MockAuthAdapter) SignCookie(name, value string, ttl time.Duration) (string, error) {
	data, err := json.Marshal(mockCookie{Name: name, Value: value, ExpiresAt: time.Now().Add(ttl).Unix()})
	if err != nil {
		return "", fmt.Errorf("failed to marshal cookie: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParseCookie decodes a cookie produced by SignCookie
func (m *MockAuthAdapter) ParseCookie(name, signed string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(signed)
	if err != nil {
		return "", domain.ErrTokenInvalid
	}
	var c mockCookie
	if err := json.Unmarshal(data, &c); err != nil || c.Name != name {
		return "", domain.ErrTokenInvalid
	}
	if time.Now().Unix() > c.ExpiresAt {
		return "", domain.ErrTokenExpired
	}
	return c.Value, nil
}
