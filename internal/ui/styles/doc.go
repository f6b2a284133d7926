// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and Lip Gloss styles for the ragchat TUI.

All colors are lipgloss.AdaptiveColor values so they follow the terminal's
light or dark background. The configured theme ("dark", "light" or "auto")
decides which side is used.

# Color System (colors.go)

  - Indigo - Brand accent, user bubbles, the active chat
  - Slate  - Assistant bubbles and surfaces
  - Emerald / Rose - Positive and negative feedback
  - Amber - Replies flagged for review

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	header := theme.SidebarTitle.Render("Chats")
	md := theme.GlamourStyle() // "dark" or "light" for glamour
*/
package styles
