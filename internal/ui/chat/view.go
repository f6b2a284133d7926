// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Placeholder is shown when no chat is selected.
const Placeholder = "Select or create a chat"

// View renders the window.
func (m Model) View() string {
	if !m.HasChat() {
		return lipgloss.Place(maxInt(m.width, 1), maxInt(m.height, 1),
			lipgloss.Center, lipgloss.Center,
			m.theme.Placeholder.Render(Placeholder))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderActivity(),
		m.renderInput(),
		m.renderHelp(),
	)
}

// renderActivity shows the spinner for the displayed chat, or the status.
func (m Model) renderActivity() string {
	if m.pendingChat != 0 && m.pendingChat == m.chatID {
		return m.spinner.View()
	}
	if m.status != "" {
		return m.theme.ThinkingText.Render(m.status)
	}
	return ""
}

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(m.input.View())
}

func (m Model) renderHelp() string {
	bindings := m.keys.InputHelp()
	if m.focus == FocusMessages {
		bindings = m.keys.MessagesHelp()
	}
	return m.renderBindings(bindings)
}

func (m Model) renderBindings(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return " " + strings.Join(parts, "  ")
}
