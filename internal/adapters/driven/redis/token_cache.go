package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TokenCache = (*TokenCache)(nil)

// TokenCache implements driven.TokenCache using Redis
// Tokens use Redis TTL for automatic expiration
type TokenCache struct {
	client    *redis.Client
	namespace string
}

// NewTokenCache creates a new Redis-backed TokenCache.
// Keys are written as <namespace>.auth_token.<userID>.
func NewTokenCache(client *redis.Client, namespace string) *TokenCache {
	if namespace == "" {
		namespace = domain.DefaultCacheNamespace
	}
	return &TokenCache{client: client, namespace: namespace}
}

// Put stores a token, overwriting whatever was cached for the user
func (c *TokenCache) Put(ctx context.Context, userID string, token domain.BearerToken, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, c.key(userID), token.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

// Get retrieves the cached token for a user
func (c *TokenCache) Get(ctx context.Context, userID string) (domain.BearerToken, error) {
	value, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cached token: %w", err)
	}
	return domain.BearerToken(value), nil
}

// Delete evicts the cached token for a user
func (c *TokenCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached token: %w", err)
	}
	return nil
}

func (c *TokenCache) key(userID string) string {
	return domain.TokenCacheKey(c.namespace, userID)
}
