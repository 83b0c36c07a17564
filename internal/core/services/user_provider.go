package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driving"
)

// Ensure userProvider implements UserProvider
var _ driving.UserProvider = (*userProvider)(nil)

// UserProviderConfig holds dependencies for the user provider
type UserProviderConfig struct {
	Client    driven.IdentityClient
	Exchanger driven.CredentialExchanger
	Cache     driven.TokenCache
	Cookies   driven.CookieSink
	Verifier  driven.PasswordVerifier
	Metrics   driven.AuthMetrics
	Logger    *slog.Logger

	// TokenTTL is how long bearer tokens and the store cookie live (default 24h)
	TokenTTL time.Duration

	// AttachCachedToken makes RetrieveByID send the bearer token cached for
	// the requested id. Off by default: id lookups are expected to be
	// authorized by the host's session layer.
	AttachCachedToken bool
}

// userProvider bridges host authentication onto the Dorcas identity service.
// It owns no state: tokens live in the TokenCache, users in the remote service.
type userProvider struct {
	client    driven.IdentityClient
	exchanger driven.CredentialExchanger
	cache     driven.TokenCache
	cookies   driven.CookieSink
	verifier  driven.PasswordVerifier
	metrics   driven.AuthMetrics
	logger    *slog.Logger

	tokenTTL          time.Duration
	attachCachedToken bool
}

// NewUserProvider creates a new UserProvider
func NewUserProvider(cfg UserProviderConfig) driving.UserProvider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = domain.TokenTTL
	}
	return &userProvider{
		client:            cfg.Client,
		exchanger:         cfg.Exchanger,
		cache:             cfg.Cache,
		cookies:           cfg.Cookies,
		verifier:          cfg.Verifier,
		metrics:           metrics,
		logger:            logger.With("component", "user_provider"),
		tokenTTL:          ttl,
		attachCachedToken: cfg.AttachCachedToken,
	}
}

// RetrieveByID loads a user by its unique identifier
func (p *userProvider) RetrieveByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	req := domain.UserResource(id).Include(domain.RelationCompany)

	if p.attachCachedToken {
		if token, err := p.cache.Get(ctx, id); err == nil {
			req = req.WithToken(token)
		}
	}

	return p.lookup(ctx, driven.LookupByID, req)
}

// RetrieveByToken loads a user by identifier and remember-me token
func (p *userProvider) RetrieveByToken(ctx context.Context, id, rememberToken string) (*domain.UserRecord, error) {
	// An empty token must never match a record
	if rememberToken == "" {
		p.metrics.Lookup(driven.LookupByToken, driven.OutcomeAbsent)
		return nil, nil
	}

	req := domain.UserResource(id).
		Include(domain.RelationCompany).
		WithQuery("select_using", "email").
		WithQuery("column", domain.AttrRememberToken).
		WithQuery("value", rememberToken)

	return p.lookup(ctx, driven.LookupByToken, req)
}

// UpdateRememberToken stores a new remember-me token for the user
func (p *userProvider) UpdateRememberToken(ctx context.Context, user domain.Authenticatable, token string) domain.BestEffort {
	result := domain.BestEffort{Op: "update_remember_token"}

	req := domain.UserResource(user.AuthIdentifier()).
		WithMethod(http.MethodPut).
		WithBody("token", token)

	resp, err := p.client.Send(ctx, req)
	switch {
	case err != nil:
		result.Err = fmt.Errorf("send: %w", err)
	case !resp.IsSuccessful():
		result.Err = fmt.Errorf("identity service refused update (status %d): %s", resp.StatusCode, resp.Message)
	}

	if result.Err != nil {
		p.logger.WarnContext(ctx, "remember token update not confirmed",
			"user_id", user.AuthIdentifier(), "error", result.Err)
	}
	return result
}

// RetrieveByCredentials logs in with email and password
func (p *userProvider) RetrieveByCredentials(ctx context.Context, creds domain.Credentials) (*domain.UserRecord, error) {
	return p.login(ctx, driven.FlowPassword, func(ctx context.Context) (domain.BearerToken, error) {
		return p.exchanger.ExchangePassword(ctx, creds.Email(), creds.Password())
	})
}

// RetrieveByEmailOnly logs in with an email-derived proof
func (p *userProvider) RetrieveByEmailOnly(ctx context.Context, creds domain.Credentials) (*domain.UserRecord, error) {
	return p.login(ctx, driven.FlowEmailOnly, func(ctx context.Context) (domain.BearerToken, error) {
		return p.exchanger.ExchangeEmailOnly(ctx, creds)
	})
}

// ValidateCredentials checks the plaintext password against the user's hash
func (p *userProvider) ValidateCredentials(user domain.Authenticatable, creds domain.Credentials) bool {
	plain, ok := creds["password"]
	if !ok {
		return false
	}
	return p.verifier.VerifyPassword(plain, user.AuthPassword())
}

// CachedToken returns the bearer token cached by the last login of userID
func (p *userProvider) CachedToken(ctx context.Context, userID string) (domain.BearerToken, error) {
	return p.cache.Get(ctx, userID)
}

// ForgetToken drops the bearer token cached for userID
func (p *userProvider) ForgetToken(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := p.cache.Delete(ctx, userID); err != nil {
		return fmt.Errorf("forget token: %w", err)
	}
	return nil
}

// lookup sends a user read and wraps a successful payload
func (p *userProvider) lookup(ctx context.Context, kind string, req domain.RemoteRequest) (*domain.UserRecord, error) {
	resp, err := p.client.Send(ctx, req)
	if err != nil {
		p.metrics.Lookup(kind, driven.OutcomeError)
		return nil, fmt.Errorf("retrieve user: %w", err)
	}
	if !resp.IsSuccessful() {
		p.metrics.Lookup(kind, driven.OutcomeAbsent)
		return nil, nil
	}

	user := domain.NewUserRecord(resp.TrustedData(), resp.Meta)
	if user.AuthIdentifier() == "" {
		p.logger.WarnContext(ctx, "identity service returned a user without an id", "kind", kind)
		p.metrics.Lookup(kind, driven.OutcomeAbsent)
		return nil, nil
	}

	p.metrics.Lookup(kind, driven.OutcomeFound)
	return user, nil
}

// login runs exchange -> fetch profile -> side effects for one attempt
func (p *userProvider) login(
	ctx context.Context,
	flow string,
	exchange func(ctx context.Context) (domain.BearerToken, error),
) (*domain.UserRecord, error) {
	attempt := domain.NewLoginAttempt(flow)
	p.advance(ctx, attempt, domain.LoginExchanging)

	token, err := exchange(ctx)
	if errors.Is(err, domain.ErrExchangeRejected) || (err == nil && token.IsZero()) {
		p.advance(ctx, attempt, domain.LoginFailed)
		p.metrics.LoginAttempt(flow, driven.OutcomeExchangeRejected)
		return nil, nil
	}
	if err != nil {
		p.metrics.LoginAttempt(flow, driven.OutcomeError)
		return nil, fmt.Errorf("exchange credentials: %w", err)
	}
	p.advance(ctx, attempt, domain.LoginTokenAcquired)

	p.advance(ctx, attempt, domain.LoginFetchingProfile)
	req := domain.ProfileResource().
		WithQuery("include", domain.RelationCompany).
		WithToken(token)

	resp, err := p.client.Send(ctx, req)
	if err != nil {
		p.metrics.LoginAttempt(flow, driven.OutcomeError)
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if !resp.IsSuccessful() {
		p.advance(ctx, attempt, domain.LoginFailed)
		p.metrics.LoginAttempt(flow, driven.OutcomeProfileRejected)
		return nil, nil
	}

	user := domain.NewUserRecord(resp.TrustedData(), resp.Meta)
	if user.AuthIdentifier() == "" {
		p.advance(ctx, attempt, domain.LoginFailed)
		p.metrics.LoginAttempt(flow, driven.OutcomeProfileRejected)
		return nil, nil
	}
	p.advance(ctx, attempt, domain.LoginAuthenticated)
	p.remember(ctx, user.AuthIdentifier(), token)
	p.metrics.LoginAttempt(flow, driven.OutcomeAuthenticated)

	return user, nil
}

// remember performs the post-login side effects. Both are best-effort.
func (p *userProvider) remember(ctx context.Context, userID string, token domain.BearerToken) {
	p.cookies.Queue(ctx, domain.StoreCookieName, userID, p.tokenTTL)

	if err := p.cache.Put(ctx, userID, token, p.tokenTTL); err != nil {
		p.logger.WarnContext(ctx, "failed to cache bearer token", "user_id", userID, "error", err)
	}
}

func (p *userProvider) advance(ctx context.Context, attempt *domain.LoginAttempt, next domain.LoginState) {
	from := attempt.State()
	if err := attempt.Advance(next); err != nil {
		// Unreachable unless login() itself is broken
		p.logger.ErrorContext(ctx, "login state machine violated", "flow", attempt.Flow, "error", err)
		return
	}
	p.logger.DebugContext(ctx, "login state", "flow", attempt.Flow, "from", from, "to", next)
}
