package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	hashKeyLen  = 64
	blockKeyLen = 32
)

var ErrEmptySecret = errors.New("session secret is required")

// deriveKeys expands the configured secret into an HMAC key and an AES-256 key for the
// session cookie. The same secret always yields the same keys.
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	if secret == "" {
		return nil, nil, ErrEmptySecret
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("session-cookie"))
	hashKey = make([]byte, hashKeyLen)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive hash key: %w", err)
	}
	blockKey = make([]byte, blockKeyLen)
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive block key: %w", err)
	}
	return hashKey, blockKey, nil
}
