// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ui/styles"
	"github.com/jeranaias/ragchat/internal/util"
)

// Sidebar labels.
const (
	NewChatLabel  = "+ New Chat"
	SidebarFooter = "FAISS + Groq Powered"
	SidebarTitle  = "Chats"
)

// rowsPerChat is title, count and a blank separator.
const rowsPerChat = 3

// Sidebar renders the chat list. Row 0 is the new-chat entry; rows 1..n
// are chats in server order.
type Sidebar struct {
	Chats     []model.Chat
	CurrentID int
	Cursor    int
	Focused   bool
	Width     int
	Height    int
	theme     *styles.Theme
}

// NewSidebar creates a sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{Width: 30, Height: 20, theme: theme}
}

// SetChats replaces the list and moves the cursor onto the current chat.
func (s *Sidebar) SetChats(chats []model.Chat, currentID int) {
	s.Chats = chats
	s.CurrentID = currentID
	s.Cursor = 0
	for i, c := range chats {
		if c.ID == currentID {
			s.Cursor = i + 1
			break
		}
	}
}

// Rows returns the number of selectable rows.
func (s *Sidebar) Rows() int {
	return len(s.Chats) + 1
}

// MoveUp moves the cursor up, stopping at the top.
func (s *Sidebar) MoveUp() {
	if s.Cursor > 0 {
		s.Cursor--
	}
}

// MoveDown moves the cursor down, stopping at the bottom.
func (s *Sidebar) MoveDown() {
	if s.Cursor < s.Rows()-1 {
		s.Cursor++
	}
}

// Selection returns the chat under the cursor. newChat is true when the
// cursor is on the new-chat entry.
func (s *Sidebar) Selection() (chatID int, newChat bool) {
	if s.Cursor <= 0 || s.Cursor > len(s.Chats) {
		return 0, true
	}
	return s.Chats[s.Cursor-1].ID, false
}

// View renders the sidebar at its configured size.
func (s *Sidebar) View() string {
	inner := maxInt(s.Width-3, 8)

	var b strings.Builder
	b.WriteString(s.theme.SidebarTitle.Render(SidebarTitle))
	b.WriteString("\n\n")
	b.WriteString(s.row(0, s.theme.SidebarNew.Render(NewChatLabel)))
	b.WriteString("\n\n")

	available := s.Height - 7
	first := s.firstVisible()

	used := 0
	for i := first; i < len(s.Chats); i++ {
		if available > 0 && used+2 > available {
			break
		}
		c := s.Chats[i]
		title := util.TruncateWidth(c.Title, inner-2)
		if c.ID == s.CurrentID {
			title = s.theme.SidebarItemOn.Render(util.PadWidth(title, inner-2))
		} else {
			title = s.theme.SidebarItem.Render(title)
		}
		b.WriteString(s.row(i+1, title))
		b.WriteString("\n")
		b.WriteString("  " + s.theme.SidebarMeta.Render(c.CountLabel()))
		b.WriteString("\n")
		used += rowsPerChat
		if i < len(s.Chats)-1 {
			b.WriteString("\n")
		}
	}

	body := b.String()
	bodyHeight := lipgloss.Height(body)
	gap := s.Height - bodyHeight - 2
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	body += "\n" + s.theme.SidebarFooter.Render(SidebarFooter)

	return s.theme.Sidebar.
		Width(s.Width - 1).
		Height(s.Height).
		Render(body)
}

// firstVisible returns the index of the first chat drawn, scrolled so the
// cursor stays on screen.
func (s *Sidebar) firstVisible() int {
	available := s.Height - 7
	if available <= 0 || s.Cursor <= 0 {
		return 0
	}
	visible := maxInt(available/rowsPerChat, 1)
	if s.Cursor > visible {
		return s.Cursor - visible
	}
	return 0
}

// RowAt maps a line within the sidebar to a row index.
func (s *Sidebar) RowAt(y int) (int, bool) {
	const newChatLine, firstChatLine = 2, 4
	if y == newChatLine {
		return 0, true
	}
	if y < firstChatLine {
		return 0, false
	}
	i := s.firstVisible() + (y-firstChatLine)/rowsPerChat
	if (y-firstChatLine)%rowsPerChat == 2 || i >= len(s.Chats) {
		return 0, false
	}
	return i + 1, true
}

// row prefixes the rendered row with a focus marker when the cursor is on it.
func (s *Sidebar) row(index int, rendered string) string {
	if s.Focused && s.Cursor == index {
		return s.theme.SidebarFocusBar.Render("▌") + rendered
	}
	return " " + rendered
}
