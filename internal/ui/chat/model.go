// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/chatstore"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ui/components"
	"github.com/jeranaias/ragchat/internal/ui/styles"
	"github.com/jeranaias/ragchat/internal/util"
)

// InputPlaceholder is shown in the empty input line.
const InputPlaceholder = "Ask about SQL or NoSQL..."

// ThinkingText is shown while a reply is pending.
const ThinkingText = "Thinking..."

// Client is the part of the API the chat window uses.
type Client interface {
	Send(ctx context.Context, chatID int, query string) (api.SendResult, error)
	SubmitFeedback(ctx context.Context, fb model.Feedback) error
}

// Focus is the part of the window receiving keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusMessages
)

// Model is the chat window.
type Model struct {
	client   Client
	store    *chatstore.Store
	log      *zap.Logger
	theme    *styles.Theme
	markdown *components.Markdown
	keys     KeyMap

	chatID      int
	messages    []model.Message
	pendingChat int // chat with a send in flight, 0 when idle
	focus       Focus
	selected    int
	offsets     []int
	status      string

	width    int
	height   int
	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner
}

// New creates a chat window. store is shared with the owner of the chat list.
func New(client Client, store *chatstore.Store, theme *styles.Theme, log *zap.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = InputPlaceholder
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	return Model{
		client:   client,
		store:    store,
		log:      logging.OrNop(log),
		theme:    theme,
		keys:     DefaultKeyMap(),
		selected: -1,
		viewport: vp,
		input:    ti,
		spinner:  components.NewSpinner(ThinkingText, theme),
	}
}

// SetMarkdown enables markdown rendering of replies.
func (m *Model) SetMarkdown(md *components.Markdown) {
	m.markdown = md
	m.refresh()
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// STATE
// =============================================================================

// SetSize lays the window out in width x height cells.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// spinner/status line, input border and line, help line
	const reserved = 4
	m.viewport.Width = maxInt(width, 1)
	m.viewport.Height = maxInt(height-reserved, 1)

	const promptLen = 2
	m.input.Width = maxInt(width-4-promptLen, 10)
	m.refresh()
}

// SetChat shows chat, replacing the displayed messages, and scrolls to the
// newest message.
func (m *Model) SetChat(chat model.Chat) {
	if chat.ID != m.chatID {
		m.status = ""
		m.selected = -1
	}
	m.chatID = chat.ID
	m.messages = chat.Clone().Messages
	if m.selected >= len(m.messages) {
		m.selected = -1
	}
	m.refresh()
	m.viewport.GotoBottom()
}

// ClearChat shows the placeholder.
func (m *Model) ClearChat() {
	m.chatID = 0
	m.messages = nil
	m.selected = -1
	m.status = ""
	m.refresh()
}

// ChatID returns the displayed chat, or 0.
func (m Model) ChatID() int { return m.chatID }

// HasChat reports whether a chat is displayed.
func (m Model) HasChat() bool { return m.chatID != 0 }

// Messages returns the displayed messages.
func (m Model) Messages() []model.Message { return m.messages }

// Loading reports whether a send is in flight.
func (m Model) Loading() bool { return m.pendingChat != 0 }

// PendingChat returns the chat with a send in flight, or 0.
func (m Model) PendingChat() int { return m.pendingChat }

// Selected returns the index of the selected message, or -1.
func (m Model) Selected() int { return m.selected }

// FocusArea returns which part of the window receives keys.
func (m Model) FocusArea() Focus { return m.focus }

// Status returns the window's transient status text.
func (m Model) Status() string { return m.status }

// InputValue returns the current input text.
func (m Model) InputValue() string { return m.input.Value() }

// SetInput replaces the input text.
func (m *Model) SetInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// Focus gives the input keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.focus = FocusInput
	m.refresh()
	return m.input.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.input.Blur()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the window.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		return m.handleSendResult(msg)

	case FeedbackSentMsg:
		if msg.Err != nil {
			m.log.Debug("feedback failed",
				zap.Int("message_id", msg.Feedback.MessageID),
				zap.Error(msg.Err))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == FocusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == FocusMessages {
		return m.handleMessagesKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.send()

	case key.Matches(msg, m.keys.ToggleFocus):
		if !m.HasChat() {
			return m, nil
		}
		m.focus = FocusMessages
		m.input.Blur()
		if m.selected < 0 {
			m.selected = m.lastReply()
		}
		m.refresh()
		m.scrollToSelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMessagesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if i := m.prevReply(m.selected); i >= 0 {
			m.selected = i
		}
	case key.Matches(msg, m.keys.Down):
		if i := m.nextReply(m.selected); i >= 0 {
			m.selected = i
		}
	case key.Matches(msg, m.keys.RateUp):
		return m.rate(model.RatingUp)
	case key.Matches(msg, m.keys.RateDown):
		return m.rate(model.RatingDown)
	case key.Matches(msg, m.keys.ToggleFocus), key.Matches(msg, m.keys.Insert):
		m.status = ""
		cmd := m.Focus()
		return m, cmd
	default:
		return m, nil
	}
	m.status = ""
	m.refresh()
	m.scrollToSelected()
	return m, nil
}

// send appends the query optimistically and starts the request. Blank
// input, a send already in flight, or no selected chat make it a no-op.
func (m Model) send() (Model, tea.Cmd) {
	query := m.input.Value()
	if util.IsBlank(query) || m.pendingChat != 0 || m.chatID == 0 {
		return m, nil
	}

	chatID := m.chatID
	userMsg := model.NewUserMessage(query)
	m.store.AppendMessage(chatID, userMsg)
	m.messages = append(m.messages, userMsg)
	m.input.Reset()
	m.pendingChat = chatID
	m.status = ""

	m.refresh()
	m.viewport.GotoBottom()

	m.log.Debug("sending query", zap.Int("chat_id", chatID), zap.Int("length", len(query)))
	return m, tea.Batch(m.spinner.Start(), sendCmd(m.client, chatID, query))
}

func (m Model) handleSendResult(msg SendResultMsg) (Model, tea.Cmd) {
	var reply model.Message
	if msg.Err != nil {
		m.log.Warn("send failed", zap.Int("chat_id", msg.ChatID), zap.Error(msg.Err))
		reply = model.NewErrorMessage()
	} else {
		reply = model.NewAssistantMessage(msg.Result.Response)
	}

	m.store.AppendMessage(msg.ChatID, reply)
	if msg.ChatID == m.chatID {
		m.messages = append(m.messages, reply)
	}
	if msg.ChatID == m.pendingChat {
		m.pendingChat = 0
		m.spinner.Stop()
	}

	m.refresh()
	m.viewport.GotoBottom()

	done := SentMsg{ChatID: msg.ChatID, Err: msg.Err}
	return m, func() tea.Msg { return done }
}

// rate submits feedback for the selected reply once per key press. The
// bubble is left as it is; a stored rating only shows after the chat is
// reloaded from the server.
func (m Model) rate(r model.Rating) (Model, tea.Cmd) {
	if m.selected < 0 || m.selected >= len(m.messages) {
		return m, nil
	}
	fb, err := model.FeedbackFor(m.messages[m.selected], r)
	if err != nil {
		m.status = "This reply is not saved yet and cannot be rated."
		return m, nil
	}
	return m, feedbackCmd(m.client, fb)
}

// Feedback returns a command submitting one rating. The outcome arrives as
// a FeedbackSentMsg and has no visible effect.
func (m Model) Feedback(messageID int, rating model.Rating) tea.Cmd {
	fb, err := model.NewFeedback(messageID, rating)
	if err != nil {
		return nil
	}
	return feedbackCmd(m.client, fb)
}

// =============================================================================
// COMMANDS
// =============================================================================

func sendCmd(client Client, chatID int, query string) tea.Cmd {
	return func() tea.Msg {
		res, err := client.Send(context.Background(), chatID, query)
		return SendResultMsg{ChatID: chatID, Query: query, Result: res, Err: err}
	}
}

func feedbackCmd(client Client, fb model.Feedback) tea.Cmd {
	return func() tea.Msg {
		err := client.SubmitFeedback(context.Background(), fb)
		return FeedbackSentMsg{Feedback: fb, Err: err}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) refresh() {
	ml := components.NewMessageList(m.theme)
	ml.Width = maxInt(m.viewport.Width-1, 20)
	ml.Messages = m.messages
	ml.Markdown = m.markdown
	if m.focus == FocusMessages {
		ml.Selected = m.selected
	}
	m.viewport.SetContent(ml.View())
	m.offsets = append(m.offsets[:0], ml.Offsets...)
}

func (m *Model) scrollToSelected() {
	if m.selected < 0 || m.selected >= len(m.offsets) {
		return
	}
	top := m.offsets[m.selected]
	bottom := m.viewport.TotalLineCount()
	if m.selected+1 < len(m.offsets) {
		bottom = m.offsets[m.selected+1] - 1
	}
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(maxInt(bottom-m.viewport.Height, top))
	}
}

func (m Model) lastReply() int {
	return m.prevReply(len(m.messages))
}

func (m Model) prevReply(from int) int {
	for i := from - 1; i >= 0; i-- {
		if i < len(m.messages) && !m.messages[i].IsUser {
			return i
		}
	}
	return -1
}

func (m Model) nextReply(from int) int {
	for i := from + 1; i < len(m.messages); i++ {
		if !m.messages[i].IsUser {
			return i
		}
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
