// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/model"
)

// SendResultMsg carries the outcome of a send. ChatID is the chat that
// was active when the send started.
type SendResultMsg struct {
	ChatID int
	Query  string
	Result api.SendResult
	Err    error
}

// SentMsg is emitted after a SendResultMsg has been applied so the owner
// can reconcile with the server.
type SentMsg struct {
	ChatID int
	Err    error
}

// FeedbackSentMsg reports a finished feedback submission. The window
// ignores it apart from logging failures.
type FeedbackSentMsg struct {
	Feedback model.Feedback
	Err      error
}
