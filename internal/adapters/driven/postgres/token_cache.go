package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TokenCache = (*TokenCache)(nil)

// TokenCache implements driven.TokenCache using PostgreSQL.
// Expired rows are ignored on read and removed by PurgeExpired.
type TokenCache struct {
	db        *DB
	namespace string
	sealer    *TokenSealer
}

// NewTokenCache creates a new TokenCache. sealer may be nil, in which case
// tokens are stored unencrypted.
func NewTokenCache(db *DB, namespace string, sealer *TokenSealer) *TokenCache {
	if namespace == "" {
		namespace = domain.DefaultCacheNamespace
	}
	return &TokenCache{db: db, namespace: namespace, sealer: sealer}
}

// Put stores a token, overwriting whatever was cached for the user
func (c *TokenCache) Put(ctx context.Context, userID string, token domain.BearerToken, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := domain.TokenCacheKey(c.namespace, userID)
	blob := []byte(token)
	sealed := false
	if c.sealer != nil {
		var err error
		if blob, err = c.sealer.Seal(key, token); err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		sealed = true
	}

	query := `
		INSERT INTO auth_tokens (key, user_id, token, sealed, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (key) DO UPDATE SET
			token = EXCLUDED.token,
			sealed = EXCLUDED.sealed,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`

	_, err := c.db.ExecContext(ctx, query, key, userID, blob, sealed, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

// Get retrieves the cached token for a user
func (c *TokenCache) Get(ctx context.Context, userID string) (domain.BearerToken, error) {
	key := domain.TokenCacheKey(c.namespace, userID)

	query := `
		SELECT token, sealed
		FROM auth_tokens
		WHERE key = $1 AND expires_at > NOW()
	`

	var blob []byte
	var sealed bool
	err := c.db.QueryRowContext(ctx, query, key).Scan(&blob, &sealed)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cached token: %w", err)
	}

	if !sealed {
		return domain.BearerToken(blob), nil
	}
	if c.sealer == nil {
		return "", fmt.Errorf("token for %s is sealed but no sealing key is configured", userID)
	}
	return c.sealer.Open(key, blob)
}

// Delete evicts the cached token for a user
func (c *TokenCache) Delete(ctx context.Context, userID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE key = $1`, domain.TokenCacheKey(c.namespace, userID))
	if err != nil {
		return fmt.Errorf("failed to delete cached token: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry and returns how many were removed
func (c *TokenCache) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	return res.RowsAffected()
}
