// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local persistent key/value store for ragchat.
//
// It stands in for browser local storage: string keys, string values,
// readable by any part of the client at any time. The session token is the
// main tenant.
//
// # Key Types
//
//   - Store: the key/value interface every backend implements
//   - FileStore: a JSON document written atomically with 0600 permissions
//   - SQLiteStore: a single kv table in a pure-Go SQLite database
//   - Sealed: wraps another Store and encrypts values with XChaCha20-Poly1305
//
// # Usage
//
//	store, err := storage.Open(storage.OptionsFromConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Set("access_token", token)
//	token, err := store.Get("access_token")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // signed out
//	}
//
// # Watching
//
// Watch reports writes made by other processes (a second ragchat logging
// in or out) so the session can follow them.
package storage
