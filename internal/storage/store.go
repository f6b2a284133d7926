// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"strings"

	"github.com/jeranaias/ragchat/internal/config"
)

// Store is a string key/value store persisted on the local machine.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Path is the file backing the store.
	Path() string
	// Close releases resources held by the store.
	Close() error
}

// ErrNotFound is returned by Get when a key has no value.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StoreError{Message: "key not found"}

// StoreError represents a storage error.
type StoreError struct {
	Message string
	Key     string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Key)
	}
	return e.Message
}

// Is implements errors.Is support for comparing store errors by message.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

func notFound(key string) error {
	return &StoreError{Message: ErrNotFound.Message, Key: key}
}

// =============================================================================
// FACTORY
// =============================================================================

// Options selects and configures a backend.
type Options struct {
	Backend string // "file" or "sqlite"
	Path    string
	Encrypt bool
	KeyPath string
}

// OptionsFromConfig resolves storage options from cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return Options{}, err
	}
	keyPath, err := cfg.KeyPath()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Backend: cfg.Storage.Backend,
		Path:    path,
		Encrypt: cfg.Storage.Encrypt,
		KeyPath: keyPath,
	}, nil
}

// Open creates the store described by opts.
func Open(opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(opts.Backend) {
	case "", "file":
		s, err = NewFileStore(opts.Path)
	case "sqlite":
		s, err = NewSQLiteStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if !opts.Encrypt {
		return s, nil
	}
	key, err := LoadOrCreateKey(opts.KeyPath)
	if err != nil {
		s.Close()
		return nil, err
	}
	sealed, err := NewSealed(s, key)
	if err != nil {
		s.Close()
		return nil, err
	}
	return sealed, nil
}
