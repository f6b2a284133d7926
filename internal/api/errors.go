// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized indicates the backend rejected the credentials or token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status int
	// Message is the server-provided error text, empty when none was sent.
	Message string
	Path    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Path, e.Status)
}

// Unwrap maps status codes to sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// errorBody covers the shapes the backend uses for errors.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func newAPIError(path string, status int, body []byte) *APIError {
	e := &APIError{Status: status, Path: path}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Message = strings.TrimSpace(eb.Error)
		if e.Message == "" {
			e.Message = strings.TrimSpace(eb.Detail)
		}
	}
	return e
}

// ServerMessage returns the server-provided error text carried by err,
// or "" when err does not carry one.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// UserMessage renders err the way auth failures are shown to the user:
// "Error: " followed by the server text, or "Failed" when there is none.
func UserMessage(err error) string {
	if msg := ServerMessage(err); msg != "" {
		return "Error: " + msg
	}
	return "Error: Failed"
}
