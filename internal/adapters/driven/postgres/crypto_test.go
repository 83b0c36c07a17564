package postgres

import (
	"bytes"
	"errors"
	"testing"
)

var testKey = []byte("01234567890123456789012345678901")

func TestTokenSealer_RoundTrip(t *testing.T) {
	sealer, err := NewTokenSealer(testKey)
	if err != nil {
		t.Fatalf("NewTokenSealer: %v", err)
	}

	blob, err := sealer.Seal("dorcas.auth_token.42", "tok123")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != sealVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], sealVersion)
	}
	if bytes.Contains(blob, []byte("tok123")) {
		t.Error("sealed blob contains the plaintext token")
	}

	token, err := sealer.Open("dorcas.auth_token.42", blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if token != "tok123" {
		t.Errorf("got %q, want tok123", token)
	}
}

func TestTokenSealer_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{"empty", nil},
		{"too short", []byte("short")},
		{"too long", append(testKey, 'x')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenSealer(tt.key)
			if !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("expected ErrInvalidKeySize, got %v", err)
			}
		})
	}
}

func TestTokenSealer_OpenInvalidBlob(t *testing.T) {
	sealer, _ := NewTokenSealer(testKey)

	if _, err := sealer.Open("k", []byte{sealVersion, 1, 2}); !errors.Is(err, ErrInvalidBlobSize) {
		t.Errorf("expected ErrInvalidBlobSize, got %v", err)
	}

	blob, _ := sealer.Seal("k", "tok")
	blob[0] = 0x7f
	if _, err := sealer.Open("k", blob); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestTokenSealer_WrongKey(t *testing.T) {
	sealer1, _ := NewTokenSealer(testKey)
	sealer2, _ := NewTokenSealer([]byte("abcdefghijabcdefghijabcdefghij12"))

	blob, _ := sealer1.Seal("k", "tok")
	if _, err := sealer2.Open("k", blob); !errors.Is(err, ErrUnsealFailed) {
		t.Errorf("expected ErrUnsealFailed, got %v", err)
	}
}

func TestTokenSealer_BoundToCacheKey(t *testing.T) {
	sealer, _ := NewTokenSealer(testKey)

	blob, _ := sealer.Seal("dorcas.auth_token.42", "tok")
	if _, err := sealer.Open("dorcas.auth_token.43", blob); !errors.Is(err, ErrUnsealFailed) {
		t.Errorf("expected ErrUnsealFailed for moved blob, got %v", err)
	}
}

func TestTokenSealer_UniqueNonce(t *testing.T) {
	sealer, _ := NewTokenSealer(testKey)

	blob1, _ := sealer.Seal("k", "same-token")
	blob2, _ := sealer.Seal("k", "same-token")

	if bytes.Equal(blob1, blob2) {
		t.Error("expected different blobs for the same token")
	}
}
