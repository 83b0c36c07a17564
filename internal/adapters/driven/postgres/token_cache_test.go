package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

// setupTestDB connects to DORCAS_TEST_DATABASE_URL or skips
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("DORCAS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DORCAS_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, DefaultConfig(url))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE key LIKE 'test.%'`)
		db.Close()
	})
	return db
}

func TestNewTokenCache_DefaultNamespace(t *testing.T) {
	cache := NewTokenCache(nil, "", nil)
	if cache.namespace != domain.DefaultCacheNamespace {
		t.Errorf("expected namespace %q, got %q", domain.DefaultCacheNamespace, cache.namespace)
	}
}

func TestTokenCache_PutGetDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sealer, _ := NewTokenSealer(testKey)
	for name, cache := range map[string]*TokenCache{
		"plain":  NewTokenCache(db, "test", nil),
		"sealed": NewTokenCache(db, "test", sealer),
	} {
		t.Run(name, func(t *testing.T) {
			if err := cache.Put(ctx, "42", "first", time.Hour); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := cache.Put(ctx, "42", "second", time.Hour); err != nil {
				t.Fatalf("Put: %v", err)
			}

			token, err := cache.Get(ctx, "42")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if token != "second" {
				t.Errorf("expected second, got %s", token)
			}

			if err := cache.Delete(ctx, "42"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := cache.Get(ctx, "42"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestTokenCache_ExpiredIsAbsent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	cache := NewTokenCache(db, "test", nil)

	key := domain.TokenCacheKey("test", "7")
	_, err := db.ExecContext(ctx,
		`INSERT INTO auth_tokens (key, user_id, token, expires_at) VALUES ($1, '7', 'old', NOW() - INTERVAL '1 minute')
		 ON CONFLICT (key) DO UPDATE SET expires_at = EXCLUDED.expires_at`, key)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := cache.Get(ctx, "7"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired row, got %v", err)
	}

	n, err := cache.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n < 1 {
		t.Errorf("expected at least one purged row, got %d", n)
	}
}
