// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package home is the protected main screen: the chat list on the left and
// the chat window on the right.
//
// Home owns the chat list through a chatstore.Store. It loads the list on
// init, selects the first chat when none is selected, creates chats, and
// reloads the full list after every successful send or creation so local
// optimistic state is replaced by the server's copy.
package home

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/chatstore"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ui/chat"
	"github.com/jeranaias/ragchat/internal/ui/components"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// Client is the part of the API Home uses.
type Client interface {
	chat.Client
	ListChats(ctx context.Context) ([]model.Chat, error)
	CreateChat(ctx context.Context, title string) (model.Chat, error)
}

// ChatsLoadedMsg carries a fetched chat list.
type ChatsLoadedMsg struct {
	Chats []model.Chat
	Err   error
}

// ChatCreatedMsg carries the result of a create request.
type ChatCreatedMsg struct {
	Chat model.Chat
	Err  error
}

// Pane is the focused half of the screen.
type Pane int

const (
	PaneChat Pane = iota
	PaneSidebar
)

// KeyMap holds the bindings handled by Home itself.
type KeyMap struct {
	SwitchPane key.Binding
	NewChat    key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		SwitchPane: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "chats")),
		NewChat:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("C-n", "new chat")),
		Up:         key.NewBinding(key.WithKeys("up", "k")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Select:     key.NewBinding(key.WithKeys("enter")),
	}
}

// Model is the home screen.
type Model struct {
	client Client
	store  *chatstore.Store
	log    *zap.Logger
	theme  *styles.Theme
	keys   KeyMap

	sidebar      *components.Sidebar
	window       chat.Model
	sidebarWidth int
	pane         Pane

	user     string
	status   string
	creating bool
	loaded   bool
	err      error

	width  int
	height int
}

// Options configures Home.
type Options struct {
	SidebarWidth int
	Markdown     *components.Markdown
	User         string
}

// New creates the home screen.
func New(client Client, theme *styles.Theme, log *zap.Logger, opts Options) Model {
	log = logging.OrNop(log)
	store := chatstore.New()
	window := chat.New(client, store, theme, log)
	if opts.Markdown != nil {
		window.SetMarkdown(opts.Markdown)
	}
	width := opts.SidebarWidth
	if width <= 0 {
		width = 30
	}
	return Model{
		client:       client,
		store:        store,
		log:          log,
		theme:        theme,
		keys:         DefaultKeyMap(),
		sidebar:      components.NewSidebar(theme),
		window:       window,
		sidebarWidth: width,
		user:         opts.User,
	}
}

// Init fetches the chat list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.window.Init())
}

// Err returns the fatal error that stopped the program, if any.
func (m Model) Err() error { return m.err }

// Store returns the chat store.
func (m Model) Store() *chatstore.Store { return m.store }

// Window returns the chat window.
func (m Model) Window() chat.Model { return m.window }

// Sidebar returns the sidebar.
func (m Model) Sidebar() *components.Sidebar { return m.sidebar }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Loaded reports whether the first fetch has completed.
func (m Model) Loaded() bool { return m.loaded }

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the home screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ChatsLoadedMsg:
		return m.handleLoaded(msg)

	case ChatCreatedMsg:
		return m.handleCreated(msg)

	case chat.SentMsg:
		if msg.Err != nil {
			m.showCurrent()
			return m, nil
		}
		return m, m.loadCmd()

	case chat.SendResultMsg, chat.FeedbackSentMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.window, cmd = m.window.Update(msg)
		m.syncSidebar()
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.window, cmd = m.window.Update(msg)
	return m, cmd
}

func (m Model) handleLoaded(msg ChatsLoadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = fmt.Errorf("load chats: %w", msg.Err)
		m.log.Error("chat list fetch failed", zap.Error(msg.Err))
		return m, tea.Quit
	}

	m.loaded = true
	m.store.Replace(msg.Chats)
	m.store.SelectFirst()
	m.showCurrent()
	m.log.Debug("chats loaded", zap.Int("count", len(msg.Chats)))
	return m, nil
}

func (m Model) handleCreated(msg ChatCreatedMsg) (Model, tea.Cmd) {
	m.creating = false
	if msg.Err != nil {
		reason := api.ServerMessage(msg.Err)
		if reason == "" {
			reason = msg.Err.Error()
		}
		m.status = "Could not create chat: " + reason
		m.log.Warn("create chat failed", zap.Error(msg.Err))
		return m, nil
	}

	m.status = ""
	m.store.Upsert(msg.Chat)
	m.store.SetCurrent(msg.Chat.ID)
	m.showCurrent()
	m.pane = PaneChat
	m.sidebar.Focused = false
	cmd := m.window.Focus()
	return m, tea.Batch(cmd, m.loadCmd())
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewChat):
		return m.createChat()

	case key.Matches(msg, m.keys.SwitchPane):
		return m.switchPane()
	}

	if m.pane == PaneSidebar {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.sidebar.MoveUp()
		case key.Matches(msg, m.keys.Down):
			m.sidebar.MoveDown()
		case key.Matches(msg, m.keys.Select):
			return m.activateRow()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.window, cmd = m.window.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.sidebarVisible() && msg.X < m.sidebarWidth {
		if msg.Type != tea.MouseLeft {
			return m, nil
		}
		row, ok := m.sidebar.RowAt(msg.Y)
		if !ok {
			return m, nil
		}
		m.sidebar.Cursor = row
		return m.activateRow()
	}
	var cmd tea.Cmd
	m.window, cmd = m.window.Update(msg)
	return m, cmd
}

func (m Model) switchPane() (Model, tea.Cmd) {
	if m.pane == PaneChat {
		m.pane = PaneSidebar
		m.sidebar.Focused = true
		m.window.Blur()
		return m, nil
	}
	m.pane = PaneChat
	m.sidebar.Focused = false
	return m, m.window.Focus()
}

// activateRow selects the chat under the sidebar cursor or creates one.
func (m Model) activateRow() (Model, tea.Cmd) {
	id, isNew := m.sidebar.Selection()
	if isNew {
		return m.createChat()
	}
	m.SelectChat(id)
	m.pane = PaneChat
	m.sidebar.Focused = false
	return m, m.window.Focus()
}

// SelectChat makes id current and shows its messages.
func (m *Model) SelectChat(id int) {
	m.store.SetCurrent(id)
	m.status = ""
	m.showCurrent()
}

func (m Model) createChat() (Model, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	m.creating = true
	m.status = "Creating chat..."
	return m, m.createCmd()
}

// showCurrent pushes the current chat into the window and the sidebar. A
// chat already on screen with a send in flight keeps its optimistic view
// until the reply.
func (m *Model) showCurrent() {
	if cur, ok := m.store.Current(); ok {
		if m.window.ChatID() != cur.ID || m.window.PendingChat() != cur.ID {
			m.window.SetChat(cur)
		}
	} else if m.store.CurrentID() == 0 {
		m.window.ClearChat()
	}
	m.syncSidebar()
}

func (m *Model) syncSidebar() {
	cursor := m.sidebar.Cursor
	m.sidebar.SetChats(m.store.Chats(), m.store.CurrentID())
	if m.pane == PaneSidebar && cursor < m.sidebar.Rows() {
		m.sidebar.Cursor = cursor
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		chats, err := client.ListChats(context.Background())
		return ChatsLoadedMsg{Chats: chats, Err: err}
	}
}

func (m Model) createCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		c, err := client.CreateChat(context.Background(), model.DefaultChatTitle)
		return ChatCreatedMsg{Chat: c, Err: err}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// SetSize lays out both panes above the status line.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	paneHeight := maxInt(height-1, 1)

	m.sidebar.Width = m.sidebarWidth
	m.sidebar.Height = paneHeight
	chatWidth := width
	if m.sidebarVisible() {
		chatWidth = width - m.sidebarWidth
	}
	m.window.SetSize(maxInt(chatWidth, 1), paneHeight)
}

func (m Model) sidebarVisible() bool {
	return m.width == 0 || styles.LayoutFor(m.width) != styles.LayoutNarrow || m.pane == PaneSidebar
}

// View renders the screen.
func (m Model) View() string {
	var body string
	switch {
	case styles.LayoutFor(m.width) == styles.LayoutNarrow && m.width > 0:
		if m.pane == PaneSidebar {
			body = m.sidebar.View()
		} else {
			body = m.window.View()
		}
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.window.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
}

func (m Model) renderStatus() string {
	style := m.theme.StatusBar
	if m.width > 0 {
		style = style.Width(m.width)
	}
	if m.status != "" && !m.creating {
		return m.theme.StatusError.Width(maxInt(m.width, 1)).Render(m.status)
	}

	left := m.status
	if left == "" && m.user != "" {
		left = m.user
	}
	hints := []key.Binding{m.keys.SwitchPane, m.keys.NewChat}
	var right string
	for _, b := range hints {
		h := b.Help()
		right += m.theme.ShortcutKey.Render(h.Key) + " " + m.theme.ShortcutDesc.Render(h.Desc) + "  "
	}
	right += m.theme.ShortcutKey.Render("C-l") + " " + m.theme.ShortcutDesc.Render("logout")
	gap := maxInt(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return style.Render(left + strings.Repeat(" ", gap) + right)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
