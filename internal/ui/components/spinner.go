// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// showElapsedAfter is how long a request runs before the wait time appears.
const showElapsedAfter = 2 * time.Second

var asciiSpinner = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    100 * time.Millisecond,
}

// Spinner shows that a request is in flight, with a label and, for slow
// requests, the time spent waiting.
type Spinner struct {
	inner   spinner.Model
	label   string
	since   time.Time
	running bool
	theme   *styles.Theme
}

func NewSpinner(label string, theme *styles.Theme) Spinner {
	return Spinner{
		inner: spinner.New(spinner.WithSpinner(asciiSpinner)),
		label: label,
		theme: theme,
	}
}

// Start resets the clock and returns the first tick.
func (s *Spinner) Start() tea.Cmd {
	s.running, s.since = true, time.Now()
	return s.inner.Tick
}

func (s *Spinner) Stop()         { s.running = false }
func (s Spinner) IsActive() bool { return s.running }

// Update forwards ticks while running. A stopped spinner lets its tick
// chain die out.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.running {
		return s, nil
	}
	var cmd tea.Cmd
	s.inner, cmd = s.inner.Update(msg)
	return s, cmd
}

func (s Spinner) View() string {
	if !s.running {
		return ""
	}
	line := s.theme.Spinner.Render(s.inner.View()) + " " + s.theme.ThinkingText.Render(s.label)
	waited := time.Since(s.since)
	if waited < showElapsedAfter {
		return line
	}
	return line + s.theme.Timestamp.Render(" ("+waited.Round(time.Second).String()+")")
}
