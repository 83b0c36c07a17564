package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure MockCredentialExchanger implements CredentialExchanger
var _ driven.CredentialExchanger = (*MockCredentialExchanger)(nil)

// MockCredentialExchanger issues tokens from in-memory tables
type MockCredentialExchanger struct {
	mu        sync.Mutex
	passwords map[string]string // email -> password
	tokens    map[string]domain.BearerToken
	calls     int

	// Err, when set, is returned by every exchange
	Err error
}

// NewMockCredentialExchanger creates an exchanger that knows no accounts
func NewMockCredentialExchanger() *MockCredentialExchanger {
	return &MockCredentialExchanger{
		passwords: make(map[string]string),
		tokens:    make(map[string]domain.BearerToken),
	}
}

// AddAccount registers an account and the token it exchanges for
func (m *MockCredentialExchanger) AddAccount(email, password string, token domain.BearerToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords[email] = password
	m.tokens[email] = token
}

func (m *MockCredentialExchanger) ExchangePassword(ctx context.Context, email, password string) (domain.BearerToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	want, ok := m.passwords[email]
	if !ok || want != password {
		return "", domain.ErrExchangeRejected
	}
	return m.tokens[email], nil
}

func (m *MockCredentialExchanger) ExchangeEmailOnly(ctx context.Context, creds domain.Credentials) (domain.BearerToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	token, ok := m.tokens[creds.Email()]
	if !ok {
		return "", domain.ErrExchangeRejected
	}
	return token, nil
}

// Calls returns how many exchanges were attempted
func (m *MockCredentialExchanger) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
