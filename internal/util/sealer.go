package util

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealerInfo = "govintel-gateway cookie v1"

var ErrUnsealable = errors.New("cookie value cannot be opened")

// CookieSealer encrypts token cookie values with XChaCha20-Poly1305.
// A zero-secret sealer passes values through unchanged.
type CookieSealer struct {
	aead cipher.AEAD
}

func NewCookieSealer(secret string) (*CookieSealer, error) {
	if secret == "" {
		return &CookieSealer{}, nil
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealerInfo)), key); err != nil {
		return nil, fmt.Errorf("derive cookie key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cookie cipher: %w", err)
	}

	return &CookieSealer{aead: aead}, nil
}

func (s *CookieSealer) Seal(value string) (string, error) {
	if s == nil || s.aead == nil {
		return value, nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *CookieSealer) Open(value string) (string, error) {
	if s == nil || s.aead == nil {
		return value, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", ErrUnsealable
	}

	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrUnsealable
	}

	plain, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrUnsealable
	}

	return string(plain), nil
}
