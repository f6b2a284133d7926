// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Indigo - Brand accent, user messages, selected chat
var Indigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

// IndigoDeep - Darker indigo for backgrounds
var IndigoDeep = lipgloss.AdaptiveColor{Light: "#3730A3", Dark: "#312E81"}

// Emerald - Thumbs up, success
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Thumbs down, errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// RoseDeep - Darker rose for alert backgrounds
var RoseDeep = lipgloss.AdaptiveColor{Light: "#FFE4E6", Dark: "#881337"}

// Amber - Needs-review marker
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}

// SurfaceDim - Sidebar and status line
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}

// =============================================================================
// TEXT COLORS
// =============================================================================

var TextPrimary = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#D1D5DB"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User bubble - solid brand color
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#4338CA"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#EEF2FF"}

// Assistant bubble - neutral gray
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F3F4F6"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}

// SelectionBorder marks the message focused for rating.
var SelectionBorder = Indigo

// =============================================================================
// STATUS HELPERS
// =============================================================================

// RenderError renders text in the error color.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).Render(message)
}

// RenderMuted renders de-emphasized text.
func RenderMuted(message string) string {
	return lipgloss.NewStyle().Foreground(TextMuted).Render(message)
}
