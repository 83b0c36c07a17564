package driven

import (
	"context"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

// IdentityClient sends requests to the remote identity service.
// It holds no authorization state: the bearer token travels inside each
// RemoteRequest, so one client is safe to share across concurrent callers.
type IdentityClient interface {
	// Send performs the request and normalizes the response envelope.
	// A non-nil error means a transport fault (network error, malformed body);
	// a remote refusal is reported as a response with Success=false.
	Send(ctx context.Context, req domain.RemoteRequest) (*domain.NormalizedResponse, error)
}
