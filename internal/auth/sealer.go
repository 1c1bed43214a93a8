package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrUnseal is returned when a sealed value was tampered with, truncated,
// or sealed under a different secret.
var ErrUnseal = errors.New("auth: cannot unseal value")

const nonceSize = 24

// sealInfo separates this key from anything else derived from the same secret.
var sealInfo = []byte("gitstats access token v1")

// Sealer encrypts the GitHub access token before it is written to the user
// store, so a leaked database file does not leak working credentials.
//
// FORMAT:
//
//	base64url( nonce[24] || secretbox(token) )
//
// secretbox is XSalsa20-Poly1305: the Poly1305 tag makes any modification
// fail to open. The 32-byte key is derived from the server secret with
// HKDF-SHA256, so the JWT secret never doubles as a raw encryption key.
type Sealer struct {
	key [32]byte
}

// NewSealer derives a Sealer key from secret (at least 16 characters).
func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: sealing secret must be at least 16 characters")
	}
	s := &Sealer{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, sealInfo)
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("auth: deriving sealing key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext. The empty string seals to the empty string.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("auth: generating nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal. The empty string opens to the
// empty string.
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrUnseal
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnseal
	}
	return string(plain), nil
}
