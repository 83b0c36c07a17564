package postgres

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

const (
	// sealVersion is the version byte for the sealed token format.
	sealVersion = 0x01

	// nonceSize is the AES-GCM nonce size (12 bytes is standard)
	nonceSize = 12

	// keySize is the required key size for AES-256
	keySize = 32
)

var (
	// ErrInvalidKeySize is returned when the sealing key is not 32 bytes.
	ErrInvalidKeySize = errors.New("sealing key must be 32 bytes")

	// ErrInvalidBlobSize is returned when the sealed blob is too small.
	ErrInvalidBlobSize = errors.New("sealed token is too small")

	// ErrUnsupportedVersion is returned when the blob version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported sealed token version")

	// ErrUnsealFailed is returned when opening fails (wrong key or corrupted data).
	ErrUnsealFailed = errors.New("failed to unseal token")
)

// TokenSealer encrypts bearer tokens at rest with AES-256-GCM.
// The sealed format is: version(1) || nonce(12) || ciphertext(N)
// The cache key is bound as additional data so a blob can't be moved
// to another user's row.
type TokenSealer struct {
	gcm cipher.AEAD
}

// NewTokenSealer creates a sealer with the given 32-byte key.
func NewTokenSealer(key []byte) (*TokenSealer, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &TokenSealer{gcm: gcm}, nil
}

// Seal encrypts a token for storage under key.
func (s *TokenSealer) Seal(key string, token domain.BearerToken) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nil, nonce, []byte(token), []byte(key))

	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = sealVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return blob, nil
}

// Open decrypts a blob sealed under key.
func (s *TokenSealer) Open(key string, blob []byte) (domain.BearerToken, error) {
	if len(blob) < 1+nonceSize+s.gcm.Overhead() {
		return "", ErrInvalidBlobSize
	}

	if version := blob[0]; version != sealVersion {
		return "", fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, version)
	}

	nonce := blob[1 : 1+nonceSize]
	plaintext, err := s.gcm.Open(nil, nonce, blob[1+nonceSize:], []byte(key))
	if err != nil {
		return "", ErrUnsealFailed
	}

	return domain.BearerToken(plaintext), nil
}
