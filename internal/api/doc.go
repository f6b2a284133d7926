// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chatbot backend.
//
// Every request is made relative to a fixed base URL (for example
// http://localhost:8000/api). The bearer token is obtained from a
// TokenSource on every call and never cached by the client, so a login or
// logout takes effect on the very next request. An empty token means no
// Authorization header is sent.
//
// The client performs no retries, sets no client-side timeout and caches
// nothing. Cancellation is through the context passed to each call.
//
// # Endpoints
//
//	POST /auth/login/     {username, password}  -> {access}
//	POST /auth/register/  {username, password}
//	GET  /chats/                                -> [{id, title, messages}]
//	POST /chats/          {title}               -> {id, title, messages}
//	POST /chat/           {query, chat_id}      -> {response, chat_id}
//	POST /feedback/       {message_id, rating}
//
// # Errors
//
// Non-2xx responses become *APIError. 401 and 403 also match
// ErrUnauthorized via errors.Is.
package api
