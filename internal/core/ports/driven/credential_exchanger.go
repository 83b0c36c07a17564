package driven

import (
	"context"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

// CredentialExchanger trades login credentials for a bearer token.
// Both methods return domain.ErrExchangeRejected when the identity service
// refuses the credentials; any other error is a transport fault.
type CredentialExchanger interface {
	// ExchangePassword runs the password grant
	ExchangePassword(ctx context.Context, email, password string) (domain.BearerToken, error)

	// ExchangeEmailOnly authorizes on an email-derived proof, without a password
	ExchangeEmailOnly(ctx context.Context, creds domain.Credentials) (domain.BearerToken, error)
}
