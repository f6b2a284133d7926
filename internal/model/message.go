// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// SendErrorText replaces the reply when a send fails for any reason.
const SendErrorText = "Error sending message."

// Message represents a single message in a chat.
type Message struct {
	// ID is assigned by the server. Nil for messages appended locally.
	ID      *int   `json:"id,omitempty"`
	IsUser  bool   `json:"is_user"`
	Content string `json:"content"`

	// Server metadata, present on messages fetched from the backend.
	Timestamp   Time `json:"timestamp"`
	Feedback    *int `json:"feedback,omitempty"`
	NeedsReview bool `json:"needs_review,omitempty"`

	// Key identifies the message within the client, stable across renders.
	Key string `json:"-"`
}

// NewUserMessage creates an optimistic user message with no server ID.
func NewUserMessage(content string) Message {
	return Message{
		IsUser:    true,
		Content:   content,
		Timestamp: Time{time.Now()},
		Key:       uuid.NewString(),
	}
}

// NewAssistantMessage creates a local assistant message with no server ID.
func NewAssistantMessage(content string) Message {
	return Message{
		IsUser:    false,
		Content:   content,
		Timestamp: Time{time.Now()},
		Key:       uuid.NewString(),
	}
}

// NewErrorMessage creates the assistant message shown after a failed send.
func NewErrorMessage() Message {
	return NewAssistantMessage(SendErrorText)
}

// Role returns the sender role.
func (m Message) Role() Role {
	if m.IsUser {
		return RoleUser
	}
	return RoleAssistant
}

// HasID reports whether the server has assigned an ID.
func (m Message) HasID() bool {
	return m.ID != nil
}

// CanRate reports whether feedback can be submitted for the message.
func (m Message) CanRate() bool {
	return !m.IsUser && m.ID != nil
}

// Preview returns the first line of the content, truncated to maxLen runes.
func (m Message) Preview(maxLen int) string {
	content := strings.TrimSpace(m.Content)
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	runes := []rune(content)
	if maxLen > 3 && len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return content
}

// EnsureKeys assigns client keys to messages that lack one. Server IDs
// are used when present so keys survive a reload.
func EnsureKeys(msgs []Message) {
	for i := range msgs {
		if msgs[i].Key != "" {
			continue
		}
		if msgs[i].ID != nil {
			msgs[i].Key = "srv-" + itoa(*msgs[i].ID)
			continue
		}
		msgs[i].Key = uuid.NewString()
	}
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
