package driven

import "time"

// PasswordVerifier checks a plaintext secret against a stored one-way hash.
// Implementations must be pure: no I/O, same inputs give the same answer.
type PasswordVerifier interface {
	VerifyPassword(password, hash string) bool
}

// AuthAdapter handles authentication cryptographic operations for the host.
// This does NOT handle storage - use TokenCache for bearer token persistence.
type AuthAdapter interface {
	PasswordVerifier

	// HashPassword generates a one-way hash of a plaintext password
	HashPassword(password string) (string, error)

	// SignCookie produces a tamper-proof cookie value that expires after ttl
	SignCookie(name, value string, ttl time.Duration) (string, error)

	// ParseCookie verifies a signed cookie value and returns the payload.
	// Returns domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
	ParseCookie(name, signed string) (string, error)
}
