package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure MockIdentityClient implements IdentityClient
var _ driven.IdentityClient = (*MockIdentityClient)(nil)

// MockIdentityClient is a mock implementation of IdentityClient for testing.
// SendFn decides the response; every request is recorded.
type MockIdentityClient struct {
	mu       sync.Mutex
	requests []domain.RemoteRequest
	SendFn   func(ctx context.Context, req domain.RemoteRequest) (*domain.NormalizedResponse, error)
}

// NewMockIdentityClient creates a new MockIdentityClient that rejects everything
func NewMockIdentityClient() *MockIdentityClient {
	return &MockIdentityClient{}
}

func (m *MockIdentityClient) Send(ctx context.Context, req domain.RemoteRequest) (*domain.NormalizedResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.SendFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &domain.NormalizedResponse{Success: false, StatusCode: 404}, nil
}

// Requests returns every request sent so far
func (m *MockIdentityClient) Requests() []domain.RemoteRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RemoteRequest(nil), m.requests...)
}

// Success builds a successful response
func Success(data, meta map[string]any) *domain.NormalizedResponse {
	return &domain.NormalizedResponse{Success: true, Data: data, Meta: meta, StatusCode: 200}
}

// Failure builds a non-successful response
func Failure(status int) *domain.NormalizedResponse {
	return &domain.NormalizedResponse{Success: false, StatusCode: status}
}
