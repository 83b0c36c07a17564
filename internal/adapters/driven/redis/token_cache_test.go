package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

// setupTestTokenCache creates a test Redis client and TokenCache
func setupTestTokenCache(t *testing.T) (*TokenCache, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewTokenCache(client, "")

	return cache, mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestNewTokenCache(t *testing.T) {
	cache, _, cleanup := setupTestTokenCache(t)
	defer cleanup()

	if cache.client == nil {
		t.Error("expected non-nil Redis client")
	}
	if cache.namespace != domain.DefaultCacheNamespace {
		t.Errorf("expected namespace %q, got %q", domain.DefaultCacheNamespace, cache.namespace)
	}
}

func TestTokenCache_Put_KeyAndTTL(t *testing.T) {
	cache, mr, cleanup := setupTestTokenCache(t)
	defer cleanup()

	if err := cache.Put(context.Background(), "42", "tok123", domain.TokenTTL); err != nil {
		t.Fatalf("unexpected error caching token: %v", err)
	}

	got, err := mr.Get("dorcas.auth_token.42")
	if err != nil {
		t.Fatalf("expected key dorcas.auth_token.42: %v", err)
	}
	if got != "tok123" {
		t.Errorf("expected tok123, got %s", got)
	}

	if ttl := mr.TTL("dorcas.auth_token.42"); ttl != domain.TokenTTL {
		t.Errorf("expected TTL %v, got %v", domain.TokenTTL, ttl)
	}
}

func TestTokenCache_Get(t *testing.T) {
	cache, _, cleanup := setupTestTokenCache(t)
	defer cleanup()

	ctx := context.Background()
	_ = cache.Put(ctx, "42", "tok123", time.Hour)

	token, err := cache.Get(ctx, "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok123" {
		t.Errorf("expected tok123, got %s", token)
	}
}

func TestTokenCache_Get_NotFound(t *testing.T) {
	cache, _, cleanup := setupTestTokenCache(t)
	defer cleanup()

	_, err := cache.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenCache_Put_LastWriterWins(t *testing.T) {
	cache, _, cleanup := setupTestTokenCache(t)
	defer cleanup()

	ctx := context.Background()
	_ = cache.Put(ctx, "42", "first", time.Hour)
	_ = cache.Put(ctx, "42", "second", time.Hour)

	token, _ := cache.Get(ctx, "42")
	if token != "second" {
		t.Errorf("expected second, got %s", token)
	}
}

func TestTokenCache_Expiry(t *testing.T) {
	cache, mr, cleanup := setupTestTokenCache(t)
	defer cleanup()

	ctx := context.Background()
	_ = cache.Put(ctx, "42", "tok123", domain.TokenTTL)

	mr.FastForward(domain.TokenTTL + time.Second)

	_, err := cache.Get(ctx, "42")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestTokenCache_Put_NonPositiveTTL(t *testing.T) {
	cache, mr, cleanup := setupTestTokenCache(t)
	defer cleanup()

	if err := cache.Put(context.Background(), "42", "tok123", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists("dorcas.auth_token.42") {
		t.Error("expected nothing cached for zero TTL")
	}
}

func TestTokenCache_Delete(t *testing.T) {
	cache, _, cleanup := setupTestTokenCache(t)
	defer cleanup()

	ctx := context.Background()
	_ = cache.Put(ctx, "42", "tok123", time.Hour)

	if err := cache.Delete(ctx, "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Get(ctx, "42"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is not an error
	if err := cache.Delete(ctx, "42"); err != nil {
		t.Errorf("unexpected error deleting missing key: %v", err)
	}
}

func TestTokenCache_CustomNamespace(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewTokenCache(client, "tenant")
	_ = cache.Put(context.Background(), "7", "tok", time.Hour)

	if !mr.Exists("tenant.auth_token.7") {
		t.Error("expected key under custom namespace")
	}
}

func TestTokenCache_ConnectionError(t *testing.T) {
	cache, mr, cleanup := setupTestTokenCache(t)
	defer cleanup()

	mr.Close()

	ctx := context.Background()
	if err := cache.Put(ctx, "42", "tok", time.Hour); err == nil {
		t.Error("expected error when Redis is down")
	}
	if _, err := cache.Get(ctx, "42"); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected transport error, got %v", err)
	}
}
