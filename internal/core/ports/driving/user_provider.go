package driving

import (
	"context"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

// UserProvider is what the host framework requires of an identity provider.
// A (nil, nil) result means "no user"; an error means the identity service
// could not be reached or answered garbage.
type UserProvider interface {
	// RetrieveByID loads a user by its unique identifier
	RetrieveByID(ctx context.Context, id string) (*domain.UserRecord, error)

	// RetrieveByToken loads a user by identifier and remember-me token
	RetrieveByToken(ctx context.Context, id, rememberToken string) (*domain.UserRecord, error)

	// UpdateRememberToken stores a new remember-me token for the user.
	// The write is best-effort; inspect the result if persistence matters.
	UpdateRememberToken(ctx context.Context, user domain.Authenticatable, token string) domain.BestEffort

	// RetrieveByCredentials logs in with email and password
	RetrieveByCredentials(ctx context.Context, creds domain.Credentials) (*domain.UserRecord, error)

	// RetrieveByEmailOnly logs in with an email-derived proof
	RetrieveByEmailOnly(ctx context.Context, creds domain.Credentials) (*domain.UserRecord, error)

	// ValidateCredentials checks the plaintext password against the user's hash
	ValidateCredentials(user domain.Authenticatable, creds domain.Credentials) bool

	// CachedToken returns the bearer token cached by the last login of userID
	CachedToken(ctx context.Context, userID string) (domain.BearerToken, error)

	// ForgetToken drops the bearer token cached for userID.
	// Forgetting an id with nothing cached is not an error.
	ForgetToken(ctx context.Context, userID string) error
}
