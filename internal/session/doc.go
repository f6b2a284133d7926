// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the signed-in state of the ragchat client.
//
// A session is a bearer token. The Provider persists it in the local
// store under "access_token", restores it at startup without contacting
// the server, and exposes login, register and logout. It is passed to the
// API client as its TokenSource, which reads the store on every request.
//
// # Key Types
//
//   - Provider: session state with a loading flag during restore
//   - Session: the token plus claims decoded for display
//   - ChangedMsg: Bubble Tea message sent when another process changes the token
//
// # Usage
//
//	p := session.NewProvider(store, client, log)
//	p.Restore()
//	if !p.Authenticated() {
//	    err := p.Login(ctx, "ada", "secret")
//	}
//
// Consumers must not branch on Authenticated while Loading is true.
package session
