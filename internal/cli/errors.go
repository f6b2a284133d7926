// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and display for ragchat commands.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/session"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command step with a reason fit for the user.
type CommandError struct {
	Action string // e.g. "login", "list chats"
	Reason string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Action == "" {
		return e.Reason
	}
	return e.Action + " failed: " + e.Reason
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is a malformed invocation.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// failed wraps err for action, preferring the server's own error text.
func failed(action string, err error) error {
	reason := api.ServerMessage(err)
	if reason == "" {
		reason = err.Error()
	}
	return &CommandError{Action: action, Reason: reason, Err: err}
}

// errNotLoggedIn is returned by commands that need a session.
var errNotLoggedIn = &CommandError{
	Reason: "not logged in, run 'ragchat login' first",
	Err:    session.ErrNotAuthenticated,
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes "Error: msg" to w, plus a hint for usage errors and
// expired sessions.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())

	var (
		usage  *UsageError
		cmdErr *CommandError
	)
	switch {
	case errors.As(err, &usage):
		fmt.Fprintln(w, "Run 'ragchat help' for usage.")
	case errors.As(err, &cmdErr) && (cmdErr.Action == "login" || cmdErr.Action == "register"):
		// Rejected credentials, not an expired session.
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintln(w, "Your session may have expired; run 'ragchat login'.")
	}
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitGeneralError
}
