package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// NewAEAD derives an AES-GCM cipher from secret.
func NewAEAD(secret []byte) (cipher.AEAD, error) {
	key := sha256.Sum256(secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}

// SealedBackend encrypts every value before handing it to Inner.
// Stored layout: nonce || ciphertext.
type SealedBackend struct {
	Inner Backend
	AEAD  cipher.AEAD
}

func (s *SealedBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.Inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	n := s.AEAD.NonceSize()
	if len(data) < n {
		return nil, fmt.Errorf("%w: sealed value too short", ErrCorrupt)
	}
	plain, err := s.AEAD.Open(nil, data[:n], data[n:], []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return plain, nil
}

func (s *SealedBackend) Store(ctx context.Context, key string, value []byte) error {
	nonce := make([]byte, s.AEAD.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.Inner.Store(ctx, key, s.AEAD.Seal(nonce, nonce, value, []byte(key)))
}

func (s *SealedBackend) Remove(ctx context.Context, key string) error {
	return s.Inner.Remove(ctx, key)
}
