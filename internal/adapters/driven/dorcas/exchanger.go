package dorcas

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure Exchanger implements CredentialExchanger
var _ driven.CredentialExchanger = (*Exchanger)(nil)

const (
	tokenPath          = "/oauth/token"
	grantPassword      = "password"
	grantEmailOnly     = "email_only"
	defaultTokenScopes = "*"
)

// Exchanger trades credentials for bearer tokens at the Dorcas OAuth endpoint.
type Exchanger struct {
	client       *Client
	clientID     string
	clientSecret string
}

// NewExchanger creates an Exchanger sharing the client's HTTP transport.
func NewExchanger(client *Client, cfg Config) *Exchanger {
	return &Exchanger{
		client:       client,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

// tokenResponse is the OAuth token endpoint payload.
type tokenResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangePassword runs the password grant.
func (e *Exchanger) ExchangePassword(ctx context.Context, email, password string) (domain.BearerToken, error) {
	return e.exchange(ctx, map[string]any{
		"grant_type": grantPassword,
		"username":   email,
		"password":   password,
		"scope":      defaultTokenScopes,
	})
}

// ExchangeEmailOnly authorizes with the email-only grant. Every credential
// field is forwarded so provider-specific proofs reach the service.
func (e *Exchanger) ExchangeEmailOnly(ctx context.Context, creds domain.Credentials) (domain.BearerToken, error) {
	params := make(map[string]any, len(creds)+2)
	for k, v := range creds {
		params[k] = v
	}
	params["grant_type"] = grantEmailOnly
	params["scope"] = defaultTokenScopes
	return e.exchange(ctx, params)
}

func (e *Exchanger) exchange(ctx context.Context, params map[string]any) (domain.BearerToken, error) {
	params["client_id"] = e.clientID
	params["client_secret"] = e.clientSecret

	status, raw, err := e.client.doRequest(ctx, http.MethodPost, tokenPath, params, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: status %d", domain.ErrExchangeRejected, status)
	}

	var tok tokenResponse
	if err := decodeJSON(raw, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token issued", domain.ErrExchangeRejected)
	}

	return domain.BearerToken(tok.AccessToken), nil
}
