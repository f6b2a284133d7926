// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strconv"
)

// DefaultChatTitle is sent when creating a chat.
const DefaultChatTitle = "New Chat"

// Chat is a titled, ordered conversation owned by the backend.
type Chat struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// MessageCount returns the number of messages in the chat.
func (c Chat) MessageCount() int {
	return len(c.Messages)
}

// CountLabel renders the count as shown in the chat list.
func (c Chat) CountLabel() string {
	return fmt.Sprintf("%d messages", len(c.Messages))
}

// Clone returns a copy whose message slice is not shared with c.
func (c Chat) Clone() Chat {
	out := c
	if c.Messages != nil {
		out.Messages = make([]Message, len(c.Messages))
		copy(out.Messages, c.Messages)
	}
	return out
}

// =============================================================================
// FEEDBACK
// =============================================================================

// Rating is a binary quality rating.
type Rating int

const (
	RatingDown Rating = 0
	RatingUp   Rating = 1
)

// String returns "up" or "down".
func (r Rating) String() string {
	if r == RatingUp {
		return "up"
	}
	return "down"
}

// Symbol returns the glyph used for the rating in the UI.
func (r Rating) Symbol() string {
	if r == RatingUp {
		return "👍"
	}
	return "👎"
}

// ParseRating accepts up/down, +/-, 1/0 and thumbs aliases.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "up", "+", "1", "good", "thumbsup":
		return RatingUp, nil
	case "down", "-", "0", "bad", "thumbsdown":
		return RatingDown, nil
	}
	return 0, fmt.Errorf("invalid rating %q: use up or down", s)
}

// ErrNoMessageID is returned when rating a message the server has not stored.
var ErrNoMessageID = errors.New("message has no server id")

// Feedback is a rating of one assistant message.
type Feedback struct {
	MessageID int    `json:"message_id"`
	Rating    Rating `json:"rating"`
}

// NewFeedback validates and builds a Feedback.
func NewFeedback(messageID int, rating Rating) (Feedback, error) {
	if rating != RatingUp && rating != RatingDown {
		return Feedback{}, fmt.Errorf("invalid rating %d", rating)
	}
	return Feedback{MessageID: messageID, Rating: rating}, nil
}

// FeedbackFor builds Feedback for msg, failing for unsaved or user messages.
func FeedbackFor(msg Message, rating Rating) (Feedback, error) {
	if msg.IsUser {
		return Feedback{}, errors.New("user messages cannot be rated")
	}
	if msg.ID == nil {
		return Feedback{}, ErrNoMessageID
	}
	return NewFeedback(*msg.ID, rating)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
