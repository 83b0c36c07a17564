package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure Adapter implements AuthAdapter
var _ driven.AuthAdapter = (*Adapter)(nil)

// cookieClaims binds a cookie value to its name so a signed value can't be
// replayed under a different cookie.
type cookieClaims struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	jwt.RegisteredClaims
}

// Adapter handles authentication operations using bcrypt and JWT
type Adapter struct {
	secret     []byte
	bcryptCost int
}

// NewAdapter creates a new auth adapter with the given signing secret
func NewAdapter(secret string) *Adapter {
	return &Adapter{
		secret:     []byte(secret),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// NewAdapterWithCost creates a new auth adapter with custom bcrypt cost
func NewAdapterWithCost(secret string, bcryptCost int) *Adapter {
	return &Adapter{
		secret:     []byte(secret),
		bcryptCost: bcryptCost,
	}
}

// HashPassword generates a bcrypt hash from a plaintext password
func (a *Adapter) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a bcrypt hash.
// An empty hash never matches.
func (a *Adapter) VerifyPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SignCookie wraps value in an HS256 JWT that expires after ttl
func (a *Adapter) SignCookie(name, value string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := cookieClaims{
		Name:  name,
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseCookie validates a signed cookie and returns its value
func (a *Adapter) ParseCookie(name, signed string) (string, error) {
	token, err := jwt.ParseWithClaims(signed, &cookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*cookieClaims)
	if !ok || !token.Valid {
		return "", domain.ErrTokenInvalid
	}
	if claims.Name != name {
		return "", fmt.Errorf("%w: cookie %q presented as %q", domain.ErrTokenInvalid, claims.Name, name)
	}

	return claims.Value, nil
}
