// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

var theme = styles.NewTheme("dark")

func assistant(id int, content string) model.Message {
	return model.Message{ID: model.IntPtr(id), Content: content}
}

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

func TestMessageBubble_UserIsRightAligned(t *testing.T) {
	b := NewMessageBubble(model.Message{IsUser: true, Content: "hi"}, theme)
	b.Width = 60
	b.ShowTimestamp = false

	view := b.View()
	for _, line := range strings.Split(view, "\n") {
		assert.Equal(t, 60, lipgloss.Width(line))
	}
	assert.Contains(t, view, "hi")
	assert.NotContains(t, view, "👍", "user messages have no feedback controls")
}

func TestMessageBubble_AssistantFeedback(t *testing.T) {
	msg := assistant(5, "An index speeds lookups.")
	b := NewMessageBubble(msg, theme)
	b.Width = 60
	assert.NotContains(t, b.View(), FeedbackHint, "hint only when selected")

	b.Selected = true
	assert.Contains(t, b.View(), FeedbackHint)

	msg.Feedback = model.IntPtr(int(model.RatingUp))
	msg.NeedsReview = true
	b.Message = msg
	view := b.View()
	assert.Contains(t, view, "👍")
	assert.Contains(t, view, "needs review")
}

func TestMessageBubble_UnsavedCannotRate(t *testing.T) {
	b := NewMessageBubble(model.NewAssistantMessage("local only"), theme)
	b.Selected = true
	view := b.View()
	assert.NotContains(t, view, FeedbackHint)
	assert.Contains(t, view, "not yet saved")
}

func TestMessageBubble_Timestamp(t *testing.T) {
	now := time.Date(2025, 3, 4, 15, 30, 0, 0, time.Local)
	msg := model.Message{IsUser: true, Content: "q", Timestamp: model.Time{Time: now.Add(-time.Minute)}}
	b := NewMessageBubble(msg, theme)
	b.Now = func() time.Time { return now }
	assert.Contains(t, b.View(), "3:29 PM")

	msg.Timestamp = model.Time{Time: now.AddDate(0, 0, -2)}
	b.Message = msg
	assert.Contains(t, b.View(), "Mar 2")
}

func TestMessageList(t *testing.T) {
	ml := NewMessageList(theme)
	assert.Contains(t, ml.View(), "No messages yet")

	ml.Messages = []model.Message{
		{IsUser: true, Content: "first question"},
		assistant(2, "first answer"),
	}
	ml.Selected = 1
	view := ml.View()
	assert.Less(t, strings.Index(view, "first question"), strings.Index(view, "first answer"))
	assert.Contains(t, view, FeedbackHint)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func sampleChats() []model.Chat {
	return []model.Chat{
		{ID: 4, Title: "Joins", Messages: []model.Message{{IsUser: true}, assistant(1, "a")}},
		{ID: 2, Title: "New Chat"},
	}
}

func TestSidebar_View(t *testing.T) {
	s := NewSidebar(theme)
	s.Width, s.Height = 30, 20
	s.SetChats(sampleChats(), 4)

	view := s.View()
	assert.Contains(t, view, NewChatLabel)
	assert.Contains(t, view, "Joins")
	assert.Contains(t, view, "2 messages")
	assert.Contains(t, view, "0 messages")
	assert.Contains(t, view, SidebarFooter)
}

func TestSidebar_Navigation(t *testing.T) {
	s := NewSidebar(theme)
	s.SetChats(sampleChats(), 2)
	assert.Equal(t, 2, s.Cursor)

	id, isNew := s.Selection()
	assert.Equal(t, 2, id)
	assert.False(t, isNew)

	s.MoveDown()
	assert.Equal(t, 2, s.Cursor, "stops at the bottom")

	s.MoveUp()
	s.MoveUp()
	s.MoveUp()
	assert.Equal(t, 0, s.Cursor)
	_, isNew = s.Selection()
	assert.True(t, isNew)
}

func TestSidebar_EmptyList(t *testing.T) {
	s := NewSidebar(theme)
	s.SetChats(nil, 0)
	assert.Equal(t, 1, s.Rows())
	_, isNew := s.Selection()
	assert.True(t, isNew)
	assert.Contains(t, s.View(), SidebarFooter)
}

// =============================================================================
// ALERT
// =============================================================================

func TestAlert_BlocksUntilDismissed(t *testing.T) {
	a := NewAlert(theme)
	assert.False(t, a.Visible())
	assert.Empty(t, a.View())

	a.Show("Error: Invalid credentials")
	require.True(t, a.Visible())
	assert.Contains(t, a.View(), "Error: Invalid credentials")

	a, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.True(t, a.Visible())
	assert.Nil(t, cmd)

	a, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.Visible())
	require.NotNil(t, cmd)
	assert.IsType(t, AlertDismissedMsg{}, cmd())
}

// =============================================================================
// SPINNER AND MARKDOWN
// =============================================================================

func TestSpinner_StartStop(t *testing.T) {
	s := NewSpinner("Loading...", theme)
	assert.Empty(t, s.View())

	cmd := s.Start()
	assert.NotNil(t, cmd)
	assert.True(t, s.IsActive())
	assert.Contains(t, s.View(), "Loading...")

	s.Stop()
	s, cmd = s.Update(nil)
	assert.Nil(t, cmd)
	assert.Empty(t, s.View())
}

func TestMarkdown_Render(t *testing.T) {
	var nilMD *Markdown
	assert.Equal(t, "**x**", nilMD.Render("**x**", 40))

	md := NewMarkdown("notty")
	out := md.Render("Use `SELECT *` sparingly.", 40)
	assert.Contains(t, out, "SELECT")
	assert.Equal(t, "", md.Render("", 40))
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 5, 0, 0, time.Local)
	assert.Equal(t, "", formatTimestamp(time.Time{}, now))
	assert.Equal(t, "9:05 AM", formatTimestamp(now, now))
	assert.Equal(t, "Jan 9 9:05 AM", formatTimestamp(now.AddDate(0, 0, -1), now))
}

func TestSidebar_RowAt(t *testing.T) {
	s := NewSidebar(theme)
	s.Height = 30
	s.SetChats(sampleChats(), 4)

	row, ok := s.RowAt(2)
	assert.True(t, ok)
	assert.Equal(t, 0, row)

	row, ok = s.RowAt(4)
	assert.True(t, ok)
	assert.Equal(t, 1, row)
	row, ok = s.RowAt(5)
	assert.True(t, ok)
	assert.Equal(t, 1, row, "count line belongs to the chat")

	_, ok = s.RowAt(6)
	assert.False(t, ok, "separator")

	row, ok = s.RowAt(7)
	assert.True(t, ok)
	assert.Equal(t, 2, row)

	_, ok = s.RowAt(10)
	assert.False(t, ok)
	_, ok = s.RowAt(0)
	assert.False(t, ok)
}
