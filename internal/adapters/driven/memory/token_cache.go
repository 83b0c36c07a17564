package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TokenCache = (*TokenCache)(nil)

// TokenCache keeps bearer tokens in process memory.
// Suitable for a single instance; tokens do not survive a restart.
type TokenCache struct {
	c         *gocache.Cache
	namespace string
}

// NewTokenCache creates an in-memory cache that sweeps expired entries
// every cleanupInterval.
func NewTokenCache(namespace string, cleanupInterval time.Duration) *TokenCache {
	if namespace == "" {
		namespace = domain.DefaultCacheNamespace
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	return &TokenCache{
		c:         gocache.New(domain.TokenTTL, cleanupInterval),
		namespace: namespace,
	}
}

func (m *TokenCache) Put(_ context.Context, userID string, token domain.BearerToken, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.c.Set(domain.TokenCacheKey(m.namespace, userID), token, ttl)
	return nil
}

func (m *TokenCache) Get(_ context.Context, userID string) (domain.BearerToken, error) {
	v, ok := m.c.Get(domain.TokenCacheKey(m.namespace, userID))
	if !ok {
		return "", domain.ErrNotFound
	}
	token, _ := v.(domain.BearerToken)
	return token, nil
}

func (m *TokenCache) Delete(_ context.Context, userID string) error {
	m.c.Delete(domain.TokenCacheKey(m.namespace, userID))
	return nil
}

// Len returns the number of entries, including expired ones not yet swept
func (m *TokenCache) Len() int {
	return m.c.ItemCount()
}
