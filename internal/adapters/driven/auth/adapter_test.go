package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

func TestNewAdapter(t *testing.T) {
	adapter := NewAdapter("test-secret")
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
	if string(adapter.secret) != "test-secret" {
		t.Error("expected signing secret to be set")
	}
}

func TestNewAdapterWithCost(t *testing.T) {
	adapter := NewAdapterWithCost("test-secret", 4)
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
	if adapter.bcryptCost != 4 {
		t.Errorf("expected bcrypt cost 4, got %d", adapter.bcryptCost)
	}
}

func TestHashPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4) // Low cost for faster tests

	hash, err := adapter.HashPassword("mypassword")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if hash == "" || hash == "mypassword" {
		t.Errorf("unexpected hash %q", hash)
	}

	if len(hash) < 60 {
		t.Error("expected bcrypt hash to be at least 60 characters")
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)

	hash1, _ := adapter.HashPassword("password123")
	hash2, _ := adapter.HashPassword("password123")

	if hash1 == hash2 {
		t.Error("expected different hashes for same password (due to salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)
	hash, _ := adapter.HashPassword("correctpassword")

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "correctpassword", hash, true},
		{"wrong password", "wrongpassword", hash, false},
		{"empty password", "", hash, false},
		{"invalid hash", "correctpassword", "not-a-valid-hash", false},
		{"empty hash", "correctpassword", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.VerifyPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyPassword_Pure(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)
	hash, _ := adapter.HashPassword("pw")

	for i := 0; i < 3; i++ {
		if !adapter.VerifyPassword("pw", hash) {
			t.Fatalf("verification %d changed its answer", i)
		}
	}
}

func TestSignCookie(t *testing.T) {
	adapter := NewAdapter("test-secret")

	signed, err := adapter.SignCookie(domain.StoreCookieName, "42", time.Hour)
	if err != nil {
		t.Fatalf("failed to sign cookie: %v", err)
	}

	// JWT tokens have 3 parts separated by dots
	if parts := strings.Count(signed, "."); parts != 2 {
		t.Errorf("expected JWT with 2 dots (3 parts), got %d dots", parts)
	}
}

func TestParseCookie_RoundTrip(t *testing.T) {
	adapter := NewAdapter("test-secret")

	values := []string{"42", "7|remember-abc", "user@example.com"}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			signed, err := adapter.SignCookie("remember_web", v, time.Hour)
			if err != nil {
				t.Fatalf("failed to sign cookie: %v", err)
			}

			got, err := adapter.ParseCookie("remember_web", signed)
			if err != nil {
				t.Fatalf("failed to parse cookie: %v", err)
			}
			if got != v {
				t.Errorf("expected %q, got %q", v, got)
			}
		})
	}
}

func TestParseCookie_Expired(t *testing.T) {
	adapter := NewAdapter("test-secret")

	signed, _ := adapter.SignCookie(domain.StoreCookieName, "42", -2*time.Hour)

	_, err := adapter.ParseCookie(domain.StoreCookieName, signed)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseCookie_WrongSecret(t *testing.T) {
	adapter1 := NewAdapter("secret-1")
	adapter2 := NewAdapter("secret-2")

	signed, _ := adapter1.SignCookie(domain.StoreCookieName, "42", time.Hour)

	_, err := adapter2.ParseCookie(domain.StoreCookieName, signed)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseCookie_WrongName(t *testing.T) {
	adapter := NewAdapter("test-secret")

	signed, _ := adapter.SignCookie("remember_web", "42|tok", time.Hour)

	_, err := adapter.ParseCookie(domain.StoreCookieName, signed)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseCookie_Malformed(t *testing.T) {
	adapter := NewAdapter("test-secret")

	testCases := []string{
		"",
		"not-a-jwt",
		"only.two.parts.missing",
		"header.payload", // missing signature
		"42",
	}

	for _, tc := range testCases {
		_, err := adapter.ParseCookie(domain.StoreCookieName, tc)
		if !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("expected ErrTokenInvalid for %q, got %v", tc, err)
		}
	}
}

// Benchmark tests
func BenchmarkVerifyPassword(b *testing.B) {
	adapter := NewAdapterWithCost("secret", 4)
	hash, _ := adapter.HashPassword("testpassword")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = adapter.VerifyPassword("testpassword", hash)
	}
}

func BenchmarkParseCookie(b *testing.B) {
	adapter := NewAdapter("test-secret")
	signed, _ := adapter.SignCookie(domain.StoreCookieName, "42", time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = adapter.ParseCookie(domain.StoreCookieName, signed)
	}
}
