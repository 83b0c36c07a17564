package domain

import (
	"strings"
	"time"
)

const (
	// TokenTTL is how long a bearer token stays cached after a login
	TokenTTL = 24 * time.Hour

	// StoreCookieName carries the resolved user id after a login
	StoreCookieName = "store_id"

	// RememberCookieName carries "<id>|<remember token>" for long-lived logins
	RememberCookieName = "remember_web"

	// RememberTTL is the lifetime of the remember-me cookie (five years)
	RememberTTL = 5 * 365 * 24 * time.Hour

	// DefaultCacheNamespace prefixes every token cache key
	DefaultCacheNamespace = "dorcas"

	// RelationCompany is always expanded on user reads
	RelationCompany = "company"
)

// BearerToken is the opaque credential issued by the identity service
type BearerToken string

// String returns the raw token
func (t BearerToken) String() string {
	return string(t)
}

// IsZero reports whether no token is set
func (t BearerToken) IsZero() bool {
	return t == ""
}

// Credentials is the host-supplied login input. It is consumed once and
// never persisted.
type Credentials map[string]string

// Email returns the email field or ""
func (c Credentials) Email() string {
	return c["email"]
}

// Password returns the password field or ""
func (c Credentials) Password() string {
	return c["password"]
}

// TokenCacheKey builds the cache key a user's bearer token is stored under,
// in the form <namespace>.auth_token.<userID>.
func TokenCacheKey(namespace, userID string) string {
	if namespace == "" {
		namespace = DefaultCacheNamespace
	}
	return namespace + ".auth_token." + userID
}

// BestEffort is the outcome of a side effect the caller is not obliged to act on.
// The operation has been attempted; Err records why it may not have taken hold.
type BestEffort struct {
	Op  string `json:"op"`
	Err error  `json:"-"`
}

// OK reports whether the side effect completed without a known failure
func (b BestEffort) OK() bool {
	return b.Err == nil
}

// LoginRequest is the JSON body of a password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Credentials converts the request into provider credentials
func (r LoginRequest) Credentials() Credentials {
	return Credentials{"email": r.Email, "password": r.Password}
}

// RememberCookieValue joins a user id and remember token for the remember cookie
func RememberCookieValue(userID, token string) string {
	return userID + "|" + token
}

// ParseRememberCookie splits a remember cookie value. Both parts must be non-empty.
func ParseRememberCookie(value string) (userID, token string, ok bool) {
	userID, token, ok = strings.Cut(value, "|")
	if !ok || userID == "" || token == "" {
		return "", "", false
	}
	return userID, token, true
}
