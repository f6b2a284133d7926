// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the top-level Bubble Tea model. It routes between the
// auth screen and the protected home screen based on the session.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/ui/auth"
	"github.com/jeranaias/ragchat/internal/ui/chat"
	"github.com/jeranaias/ragchat/internal/ui/components"
	"github.com/jeranaias/ragchat/internal/ui/home"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// LoadingText is shown while the session is restored.
const LoadingText = "Loading..."

// Screen is a route.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenAuth
	ScreenRoot
)

func (s Screen) String() string {
	switch s {
	case ScreenAuth:
		return "auth"
	case ScreenRoot:
		return "root"
	default:
		return "loading"
	}
}

// Sessions is the session state the router reads.
type Sessions interface {
	auth.Authenticator
	Restore()
	Loading() bool
	Authenticated() bool
	Session() *session.Session
	Logout() error
}

// RestoredMsg is sent once the stored session has been read.
type RestoredMsg struct{}

// Options configures the app.
type Options struct {
	Sessions     Sessions
	Client       home.Client
	Theme        *styles.Theme
	Log          *zap.Logger
	Markdown     *components.Markdown
	SidebarWidth int

	// Changes delivers external session changes, see session.Provider.Follow.
	Changes <-chan bool
}

// Model is the router.
type Model struct {
	opts   Options
	log    *zap.Logger
	theme  *styles.Theme
	logout key.Binding
	quit   key.Binding

	screen  Screen
	auth    auth.Model
	home    home.Model
	loading components.Spinner

	width  int
	height int
}

// New creates the router in the loading state.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	log := logging.OrNop(opts.Log)
	return Model{
		opts:    opts,
		log:     log,
		theme:   opts.Theme,
		logout:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("C-l", "logout")),
		quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),
		screen:  ScreenLoading,
		auth:    auth.New(opts.Sessions, opts.Theme, log),
		loading: components.NewSpinner(LoadingText, opts.Theme),
	}
}

// Init restores the session and starts following external changes.
func (m Model) Init() tea.Cmd {
	sessions := m.opts.Sessions
	restore := func() tea.Msg {
		if sessions.Loading() {
			sessions.Restore()
		}
		return RestoredMsg{}
	}
	return tea.Batch(m.loading.Start(), restore, session.WaitForChange(m.opts.Changes))
}

// Screen returns the active route.
func (m Model) Screen() Screen { return m.screen }

// Home returns the home screen. It is only meaningful on ScreenRoot.
func (m Model) Home() home.Model { return m.home }

// Auth returns the auth screen.
func (m Model) Auth() auth.Model { return m.auth }

// Err returns the error that ended the program, if any.
func (m Model) Err() error {
	return m.home.Err()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.auth.SetSize(msg.Width, msg.Height)
		if m.screen == ScreenRoot {
			m.home.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			return m, tea.Quit
		}
		if m.screen == ScreenRoot && key.Matches(msg, m.logout) {
			if err := m.opts.Sessions.Logout(); err != nil {
				m.log.Warn("logout", zap.Error(err))
			}
			return m.route()
		}

	case RestoredMsg:
		m.loading.Stop()
		return m.route()

	case auth.AuthenticatedMsg:
		return m.route()

	case session.ChangedMsg:
		m.log.Info("session changed externally", zap.Bool("authenticated", msg.Authenticated))
		next, cmd := m.route()
		return next, tea.Batch(cmd, session.WaitForChange(m.opts.Changes))

	case spinner.TickMsg:
		if m.screen == ScreenLoading {
			var cmd tea.Cmd
			m.loading, cmd = m.loading.Update(msg)
			return m, cmd
		}

	case home.ChatsLoadedMsg, home.ChatCreatedMsg, chat.SendResultMsg, chat.SentMsg, chat.FeedbackSentMsg:
		// Requests started before logout finish, but their results are dropped.
		if m.screen != ScreenRoot {
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.screen {
	case ScreenAuth:
		m.auth, cmd = m.auth.Update(msg)
	case ScreenRoot:
		m.home, cmd = m.home.Update(msg)
	}
	return m, cmd
}

// route picks the screen for the current session state. Nothing is
// decided while the session is still loading.
func (m Model) route() (Model, tea.Cmd) {
	sessions := m.opts.Sessions
	switch {
	case sessions.Loading():
		m.screen = ScreenLoading
		return m, nil

	case !sessions.Authenticated():
		if m.screen == ScreenAuth {
			return m, nil
		}
		m.screen = ScreenAuth
		m.home = home.Model{}
		return m, m.auth.Reset()

	default:
		if m.screen == ScreenRoot {
			return m, nil
		}
		m.screen = ScreenRoot
		user := ""
		if s := sessions.Session(); s != nil {
			user = s.DisplayName()
		}
		m.home = home.New(m.opts.Client, m.theme, m.log, home.Options{
			SidebarWidth: m.opts.SidebarWidth,
			Markdown:     m.opts.Markdown,
			User:         user,
		})
		if m.width > 0 {
			m.home.SetSize(m.width, m.height)
		}
		return m, m.home.Init()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen.
func (m Model) View() string {
	switch m.screen {
	case ScreenAuth:
		return m.auth.View()
	case ScreenRoot:
		return m.home.View()
	}
	text := m.loading.View()
	if text == "" {
		text = LoadingText
	}
	if m.width == 0 || m.height == 0 {
		return text
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
}
