// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// Credentials are sent to the login and register endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the part of the login response the client uses.
type loginResponse struct {
	Access string `json:"access"`
}

type createChatRequest struct {
	Title string `json:"title"`
}

type sendRequest struct {
	Query  string `json:"query"`
	ChatID int    `json:"chat_id"`
}

// SendResult is the backend's reply to a query.
type SendResult struct {
	Response string `json:"response"`
	// ChatID is the chat the reply was stored in.
	ChatID int `json:"chat_id"`
}
