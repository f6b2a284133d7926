// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme("dark")
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}
	if !theme.IsDark {
		t.Error("dark theme should report IsDark")
	}
	if theme.GlamourStyle() != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", theme.GlamourStyle())
	}

	light := NewTheme("LIGHT")
	if light.IsDark || light.Name != "light" {
		t.Errorf("light theme: IsDark=%v Name=%q", light.IsDark, light.Name)
	}
	if light.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle() = %q, want light", light.GlamourStyle())
	}

	if NewTheme("sepia").Name != "auto" {
		t.Error("unknown theme names should fall back to auto")
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"AuthBox", theme.AuthBox},
		{"Sidebar", theme.Sidebar},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"SelectedBubble", theme.SelectedBubble},
		{"AlertBox", theme.AlertBox},
		{"StatusBar", theme.StatusBar},
	}
	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style lost its content", s.name)
		}
	}
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		if got := LayoutFor(tt.width); got != tt.want {
			t.Errorf("LayoutFor(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestRenderHelpers(t *testing.T) {
	if !strings.Contains(RenderError("boom"), "boom") {
		t.Error("RenderError lost its content")
	}
	if !strings.Contains(RenderMuted("quiet"), "quiet") {
		t.Error("RenderMuted lost its content")
	}
}
