// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jeranaias/ragchat/internal/util"
)

// EncryptedPrefix marks a sealed value (format: ENC:base64(nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

// KeySize is the size of the XChaCha20-Poly1305 key.
const KeySize = chacha20poly1305.KeySize

var (
	// ErrInvalidCiphertext indicates a sealed value that cannot be decoded.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates a wrong key or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// Sealed encrypts values before handing them to the wrapped store.
// Keys are stored in the clear.
type Sealed struct {
	inner Store
	aead  cipher.AEAD
}

// NewSealed wraps inner with XChaCha20-Poly1305 using key.
func NewSealed(inner Store, key []byte) (*Sealed, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

// Get decrypts the value stored under key. A value without the ENC: prefix
// was written before encryption was turned on: it is returned as is and
// sealed in place.
func (s *Sealed) Get(key string) (string, error) {
	raw, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(raw, EncryptedPrefix) {
		if err := s.Set(key, raw); err != nil {
			return "", fmt.Errorf("seal plaintext value %q: %w", key, err)
		}
		return raw, nil
	}
	return s.open(key, raw)
}

// Set encrypts value and stores it under key.
func (s *Sealed) Set(key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(key, sealed)
}

// Remove deletes key from the wrapped store.
func (s *Sealed) Remove(key string) error { return s.inner.Remove(key) }

// Path returns the wrapped store's path.
func (s *Sealed) Path() string { return s.inner.Path() }

// Close closes the wrapped store.
func (s *Sealed) Close() error { return s.inner.Close() }

// The key name is bound as associated data so a value cannot be moved
// to another key.
func (s *Sealed) seal(key, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

func (s *Sealed) open(key, raw string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, EncryptedPrefix))
	if err != nil || len(data) < s.aead.NonceSize()+s.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}
	nonce, ct := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ct, []byte(key))
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// LoadOrCreateKey reads the key file at path, generating a random key
// with 0600 permissions when none exists.
func LoadOrCreateKey(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("empty key path")
	}
	data, err := os.ReadFile(path)
	if err == nil {
		key, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if decErr != nil || len(key) != KeySize {
			return nil, fmt.Errorf("key file %s is corrupt", path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key) + "\n"
	if err := util.AtomicWriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}
