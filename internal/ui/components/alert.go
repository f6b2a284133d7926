// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// AlertDismissedMsg is sent when the user closes an alert.
type AlertDismissedMsg struct{}

// Alert is a blocking modal. While visible it swallows every key.
type Alert struct {
	Title   string
	Message string
	visible bool
	theme   *styles.Theme
}

// NewAlert creates a hidden alert.
func NewAlert(theme *styles.Theme) Alert {
	return Alert{Title: "Error", theme: theme}
}

// Show displays msg.
func (a *Alert) Show(msg string) {
	a.Message = msg
	a.visible = true
}

// Visible reports whether the alert is open.
func (a Alert) Visible() bool {
	return a.visible
}

// Update closes the alert on enter, esc or space. Other keys are ignored
// while it is open.
func (a Alert) Update(msg tea.Msg) (Alert, tea.Cmd) {
	if !a.visible {
		return a, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter", "esc", " ":
			a.visible = false
			return a, func() tea.Msg { return AlertDismissedMsg{} }
		}
	}
	return a, nil
}

// View renders the alert box, or "" when hidden.
func (a Alert) View() string {
	if !a.visible {
		return ""
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		a.theme.AlertTitle.Render(a.Title),
		"",
		a.theme.AlertMessage.Render(wrap(a.Message, 50)),
		"",
		a.theme.ShortcutKey.Render("enter")+" "+a.theme.ShortcutDesc.Render("OK"),
	)
	return a.theme.AlertBox.Render(body)
}

// Overlay centers the alert in a width x height area.
func (a Alert) Overlay(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, a.View())
}
