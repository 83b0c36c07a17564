package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

// TokenCache stores bearer tokens per user id with a TTL.
// Writes are blind overwrites: the last writer for an id wins.
type TokenCache interface {
	// Put stores the token for userID, replacing any previous one
	Put(ctx context.Context, userID string, token domain.BearerToken, ttl time.Duration) error

	// Get returns the token for userID, or domain.ErrNotFound
	Get(ctx context.Context, userID string) (domain.BearerToken, error)

	// Delete removes the token for userID. Deleting a missing key is not an error.
	Delete(ctx context.Context, userID string) error
}
