// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application.
type Theme struct {
	// Name is the configured theme: "dark", "light" or "auto".
	Name         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Auth screen
	AuthBox      lipgloss.Style
	AuthTitle    lipgloss.Style
	AuthTab      lipgloss.Style
	AuthTabOn    lipgloss.Style
	AuthLabel    lipgloss.Style
	AuthHint     lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	// Sidebar
	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarItemOn   lipgloss.Style
	SidebarMeta     lipgloss.Style
	SidebarNew      lipgloss.Style
	SidebarFooter   lipgloss.Style
	SidebarFocusBar lipgloss.Style

	// Chat window
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SelectedBubble  lipgloss.Style
	Timestamp       lipgloss.Style
	FeedbackHint    lipgloss.Style
	FeedbackUp      lipgloss.Style
	FeedbackDown    lipgloss.Style
	ReviewMarker    lipgloss.Style
	Placeholder     lipgloss.Style
	InputContainer  lipgloss.Style
	InputPrompt     lipgloss.Style
	Spinner         lipgloss.Style
	ThinkingText    lipgloss.Style

	// Status line and alerts
	StatusBar    lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	AlertBox     lipgloss.Style
	AlertTitle   lipgloss.Style
	AlertMessage lipgloss.Style
}

// NewTheme creates a theme. name is "dark", "light" or "auto"; anything
// else is treated as "auto".
func NewTheme(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	profile := termenv.ColorProfile()

	var isDark bool
	switch name {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		name = "auto"
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	// Auth
	t.AuthBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 3)

	t.AuthTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		MarginBottom(1)

	t.AuthTab = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.AuthTabOn = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true).
		Padding(0, 1)

	t.AuthLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.AuthHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2)

	t.ButtonActive = t.Button.
		Foreground(TextInverse).
		Background(Indigo).
		BorderForeground(Indigo).
		Bold(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.SidebarItemOn = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true).
		Padding(0, 1)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.SidebarNew = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true).
		Padding(0, 1)

	t.SidebarFooter = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(0, 1)

	t.SidebarFocusBar = lipgloss.NewStyle().
		Foreground(Indigo)

	// Bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.SelectedBubble = t.AssistantBubble.
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(SelectionBorder)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.FeedbackHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.FeedbackUp = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.FeedbackDown = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ReviewMarker = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Status and alert
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusError = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(Rose).
		Bold(true).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.AlertBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 3)

	t.AlertTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.AlertMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)
}

// LayoutMode is the responsive layout for a given width.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// LayoutFor returns the layout mode for width.
func LayoutFor(width int) LayoutMode {
	if width < 60 {
		return LayoutNarrow
	}
	if width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}
