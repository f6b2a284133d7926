// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// FeedbackHint is shown under a selected assistant message.
const FeedbackHint = "u 👍  d 👎"

// MessageBubble renders one message.
type MessageBubble struct {
	Message       model.Message
	Width         int
	Selected      bool
	ShowTimestamp bool
	Markdown      *Markdown
	Now           func() time.Time
	theme         *styles.Theme
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	if theme == nil {
		theme = styles.NewTheme("auto")
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		Now:           time.Now,
		theme:         theme,
	}
}

// View renders the bubble.
func (b *MessageBubble) View() string {
	if b.Message.IsUser {
		return b.renderUser()
	}
	return b.renderAssistant()
}

// ==========================================================================
// USER BUBBLE - right-aligned, no actions
// ==========================================================================

func (b *MessageBubble) renderUser() string {
	content := b.Message.Content
	if content == "" {
		content = "..."
	}

	maxContent := maxInt(b.Width*3/4-2, 20)
	wrapped := wrap(content, maxContent)
	bubble := b.theme.UserBubble.Render(wrapped)

	header := b.theme.Timestamp.Render("you")
	if ts := b.timestamp(); ts != "" {
		header += " " + ts
	}

	block := lipgloss.JoinVertical(lipgloss.Right, header, bubble)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

// ==========================================================================
// ASSISTANT BUBBLE - left-aligned, markdown, feedback
// ==========================================================================

func (b *MessageBubble) renderAssistant() string {
	innerWidth := maxInt(b.Width*4/5-4, 20)

	content := b.Message.Content
	if b.Markdown != nil {
		content = b.Markdown.Render(content, innerWidth)
	} else {
		content = wrap(content, innerWidth)
	}

	style := b.theme.AssistantBubble
	if b.Selected {
		style = b.theme.SelectedBubble
	}
	bubble := style.Render(content)

	header := b.theme.Timestamp.Render("assistant")
	if ts := b.timestamp(); ts != "" {
		header += " " + ts
	}

	lines := []string{header, bubble}
	if footer := b.footer(); footer != "" {
		lines = append(lines, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// footer shows the review marker, the recorded rating and, when selected,
// the rating keys.
func (b *MessageBubble) footer() string {
	var parts []string
	msg := b.Message

	if msg.NeedsReview {
		parts = append(parts, b.theme.ReviewMarker.Render("needs review"))
	}
	if msg.Feedback != nil {
		switch model.Rating(*msg.Feedback) {
		case model.RatingUp:
			parts = append(parts, b.theme.FeedbackUp.Render(model.RatingUp.Symbol()))
		case model.RatingDown:
			parts = append(parts, b.theme.FeedbackDown.Render(model.RatingDown.Symbol()))
		}
	}
	if b.Selected {
		if msg.CanRate() {
			parts = append(parts, b.theme.FeedbackHint.Render(FeedbackHint))
		} else {
			parts = append(parts, b.theme.FeedbackHint.Render("not yet saved"))
		}
	}
	return strings.Join(parts, "  ")
}

func (b *MessageBubble) timestamp() string {
	if !b.ShowTimestamp {
		return ""
	}
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	ts := formatTimestamp(b.Message.Timestamp.Time, now)
	if ts == "" {
		return ""
	}
	return b.theme.Timestamp.Render(ts)
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// MessageList renders messages in order.
type MessageList struct {
	Messages []model.Message
	Width    int
	Selected int // index of the focused message, -1 for none
	Markdown *Markdown

	// Offsets holds the first line of each message, set by View.
	Offsets []int
	theme   *styles.Theme
}

// NewMessageList creates an empty list.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{Width: 80, Selected: -1, theme: theme}
}

// View renders all bubbles separated by blank lines.
func (ml *MessageList) View() string {
	ml.Offsets = ml.Offsets[:0]
	if len(ml.Messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("No messages yet. Ask a question below.")
	}

	bubbles := make([]string, 0, len(ml.Messages))
	line := 0
	for i, msg := range ml.Messages {
		b := NewMessageBubble(msg, ml.theme)
		b.Width = ml.Width
		b.Markdown = ml.Markdown
		b.Selected = i == ml.Selected
		view := b.View()
		ml.Offsets = append(ml.Offsets, line)
		line += lipgloss.Height(view) + 1
		bubbles = append(bubbles, view)
	}
	return strings.Join(bubbles, "\n\n")
}
