// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth is the sign-in screen: a login/register form with a
// blocking error alert.
package auth

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/ui/components"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// Title is the heading of the form.
const Title = "SQL/NoSQL Chatbot"

// Authenticator performs the sign-in operations.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) error
}

// Mode selects which operation the form submits.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "Register"
	}
	return "Login"
}

// ResultMsg carries the outcome of a submission.
type ResultMsg struct {
	Mode Mode
	Err  error
}

// AuthenticatedMsg tells the router the session now exists.
type AuthenticatedMsg struct{}

// focus ring positions
const (
	fieldMode = iota
	fieldUsername
	fieldPassword
	fieldSubmit
	fieldCount
)

// KeyMap holds the form bindings.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	ToggleMode key.Binding
	Submit     key.Binding
	Left       key.Binding
	Right      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:       key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-tab", "previous")),
		ToggleMode: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("C-t", "login/register")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Left:       key.NewBinding(key.WithKeys("left", "h")),
		Right:      key.NewBinding(key.WithKeys("right", "l")),
	}
}

// Model is the auth screen.
type Model struct {
	auth  Authenticator
	log   *zap.Logger
	theme *styles.Theme
	keys  KeyMap

	mode       Mode
	username   textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	alert      components.Alert

	width  int
	height int
}

// New creates the auth screen in login mode.
func New(auth Authenticator, theme *styles.Theme, log *zap.Logger) Model {
	user := textinput.New()
	user.Placeholder = "Username"
	user.Prompt = ""
	user.CharLimit = 150
	user.Width = 30
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "Password"
	pass.Prompt = ""
	pass.CharLimit = 128
	pass.Width = 30
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return Model{
		auth:     auth,
		log:      logging.OrNop(log),
		theme:    theme,
		keys:     DefaultKeyMap(),
		username: user,
		password: pass,
		focus:    fieldUsername,
		alert:    components.NewAlert(theme),
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Mode returns the form mode.
func (m Model) Mode() Mode { return m.mode }

// Submitting reports whether a request is in flight.
func (m Model) Submitting() bool { return m.submitting }

// AlertVisible reports whether the error alert is open.
func (m Model) AlertVisible() bool { return m.alert.Visible() }

// AlertMessage returns the alert text.
func (m Model) AlertMessage() string { return m.alert.Message }

// SetSize sets the screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reset clears the form, keeping the username.
func (m *Model) Reset() tea.Cmd {
	m.password.Reset()
	m.submitting = false
	return m.setFocus(fieldUsername)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.alert.Visible() {
		var cmd tea.Cmd
		m.alert, cmd = m.alert.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ResultMsg:
		return m.handleResult(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.ToggleMode):
		m.toggleMode()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % fieldCount)

	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)

	case key.Matches(msg, m.keys.Submit):
		switch m.focus {
		case fieldMode:
			m.toggleMode()
			return m, nil
		case fieldUsername:
			return m, m.setFocus(fieldPassword)
		default:
			return m.submit()
		}
	}

	if m.focus == fieldMode && (key.Matches(msg, m.keys.Left) || key.Matches(msg, m.keys.Right)) {
		m.toggleMode()
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldUsername:
		m.username, cmd = m.username.Update(msg)
	case fieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleMode() {
	if m.mode == ModeLogin {
		m.mode = ModeRegister
	} else {
		m.mode = ModeLogin
	}
}

func (m *Model) setFocus(field int) tea.Cmd {
	m.focus = field
	m.username.Blur()
	m.password.Blur()
	switch field {
	case fieldUsername:
		return m.username.Focus()
	case fieldPassword:
		return m.password.Focus()
	}
	return nil
}

// submit runs the provider operation when both fields are filled.
func (m Model) submit() (Model, tea.Cmd) {
	user := m.username.Value()
	pass := m.password.Value()
	if user == "" || pass == "" {
		return m, nil
	}

	m.submitting = true
	mode := m.mode
	auth := m.auth
	m.log.Debug("auth submit", zap.Stringer("mode", mode), zap.String("username", user))
	return m, func() tea.Msg {
		var err error
		if mode == ModeRegister {
			err = auth.Register(context.Background(), user, pass)
		} else {
			err = auth.Login(context.Background(), user, pass)
		}
		return ResultMsg{Mode: mode, Err: err}
	}
}

func (m Model) handleResult(msg ResultMsg) (Model, tea.Cmd) {
	m.submitting = false
	if msg.Err != nil {
		m.alert.Show(api.UserMessage(msg.Err))
		return m, nil
	}
	m.password.Reset()
	return m, func() tea.Msg { return AuthenticatedMsg{} }
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the form, or the alert over it.
func (m Model) View() string {
	if m.alert.Visible() {
		return m.alert.Overlay(maxInt(m.width, 1), maxInt(m.height, 1))
	}

	tabs := make([]string, 0, 2)
	for _, mode := range []Mode{ModeLogin, ModeRegister} {
		style := m.theme.AuthTab
		if mode == m.mode {
			style = m.theme.AuthTabOn
		}
		tabs = append(tabs, style.Render(mode.String()))
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.focus == fieldMode {
		tabRow = m.theme.InputPrompt.Render("› ") + tabRow
	} else {
		tabRow = "  " + tabRow
	}

	label := m.mode.String()
	if m.submitting {
		label = "Please wait..."
	}
	button := m.theme.Button.Render(label)
	if m.focus == fieldSubmit {
		button = m.theme.ButtonActive.Render(label)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.AuthTitle.Render(Title),
		tabRow,
		"",
		m.field("Username", m.username.View(), m.focus == fieldUsername),
		"",
		m.field("Password", m.password.View(), m.focus == fieldPassword),
		"",
		button,
		"",
		m.theme.AuthHint.Render("ctrl+t switch mode · tab next field · ctrl+c quit"),
	)
	box := m.theme.AuthBox.Render(form)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) field(label, input string, focused bool) string {
	marker := "  "
	if focused {
		marker = m.theme.InputPrompt.Render("› ")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.AuthLabel.Render(label),
		marker+input,
	)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
