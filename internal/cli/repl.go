// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-mode chat for terminals where the full-screen TUI is
// unwanted.
//
// Command: repl [--chat ID]
// Aliases: chat
//
// Interactive commands:
//
//	/help, /h           Show available commands
//	/chats              List chats
//	/use ID             Switch to another chat
//	/new [TITLE]        Create a chat and switch to it
//	/history            Print the current chat
//	/up [MSG_ID]        Rate a reply (default: the last one) up
//	/down [MSG_ID]      Rate a reply down
//	/quit, /q           Exit
//	Ctrl+D              Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/util"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads REPL input lines.
type LineReader interface {
	// Prompt returns the next line. io.EOF ends the session; ErrAborted
	// discards the current line.
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// ErrAborted is returned by Prompt when the user cancels the line.
var ErrAborted = errors.New("aborted")

// linerReader is the liner-backed LineReader with history persisted in the
// config directory.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader() (*linerReader, error) {
	if !IsTTY() {
		return nil, &TTYRequiredError{Operation: "run the REPL"}
	}
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &linerReader{line: line, historyFile: filepath.Join(dir, "repl_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r, nil
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	s, err := r.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrAborted
	}
	return s, err
}

func (r *linerReader) AppendHistory(line string) {
	r.line.AppendHistory(line)
}

// Close saves history with owner-only permissions and restores the terminal.
func (r *linerReader) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	return r.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

type repl struct {
	env   *Env
	input LineReader

	chat      model.Chat
	hasChat   bool
	lastReply *int
}

func (e *Env) runREPL(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)

	input, err := e.NewLineReader()
	if err != nil {
		return err
	}
	defer input.Close()

	r := &repl{env: e, input: input}
	if raw := p.FirstFlag("chat", "c"); raw != "" {
		id, err := ParseID(raw, "chat id")
		if err != nil {
			return err
		}
		c, err := findChat(ctx, e.Client, id)
		if err != nil {
			return err
		}
		r.use(c)
	} else {
		chats, err := e.Client.ListChats(ctx)
		if err != nil {
			return failed("list chats", err)
		}
		if len(chats) > 0 {
			r.use(chats[0])
		}
	}

	r.welcome()
	return r.loop(ctx)
}

func (r *repl) welcome() {
	e := r.env
	e.println(TitleStyle.Render("SQL/NoSQL Chatbot"))
	e.printf("Signed in as %s. ", e.Sessions.Session().DisplayName())
	if r.hasChat {
		e.printf("Chat %d: %s.\n", r.chat.ID, r.chat.Title)
	} else {
		e.println("No chat selected; your first question starts one.")
	}
	e.println(DimStyle.Render("Type /help for commands, /quit to exit."))
}

func (r *repl) prompt() string {
	if r.hasChat {
		return fmt.Sprintf("[%d] > ", r.chat.ID)
	}
	return "> "
}

func (r *repl) use(c model.Chat) {
	r.chat = c
	r.hasChat = true
	r.lastReply = nil
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].CanRate() {
			r.lastReply = c.Messages[i].ID
			break
		}
	}
}

func (r *repl) loop(ctx context.Context) error {
	for {
		line, err := r.input.Prompt(r.prompt())
		if errors.Is(err, ErrAborted) {
			continue
		}
		if err == io.EOF {
			r.env.println()
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.input.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			quit, err := r.command(ctx, line)
			if err != nil {
				DisplayError(r.env.Out, err)
			}
			if quit {
				return nil
			}
			continue
		}
		r.send(ctx, line)
	}
}

// send posts the query and prints the reply, or the fixed send error text.
func (r *repl) send(ctx context.Context, query string) {
	e := r.env
	chatID := 0
	if r.hasChat {
		chatID = r.chat.ID
	}

	fmt.Fprint(e.Out, DimStyle.Render("Thinking..."))
	res, err := e.Client.Send(ctx, chatID, query)
	fmt.Fprint(e.Out, "\r\033[K")
	if err != nil {
		e.Log.Warn("repl send failed", zap.Int("chat_id", chatID), zap.Error(err))
		e.println(ErrorStyle.Render(model.SendErrorText))
		return
	}
	e.println(e.render(res.Response))

	// Reload the chat so the new reply has its server id for /up and /down.
	if c, err := findChat(ctx, e.Client, res.ChatID); err == nil {
		r.use(c)
	} else {
		e.Log.Debug("repl reload failed", zap.Int("chat_id", res.ChatID), zap.Error(err))
		r.chat.ID = res.ChatID
		r.hasChat = true
		r.lastReply = nil
	}
}

// command runs a slash command and reports whether the REPL should exit.
func (r *repl) command(ctx context.Context, line string) (bool, error) {
	e := r.env
	fields := strings.Fields(line)
	name, rest := fields[0], fields[1:]

	switch name {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h", "/?":
		r.help()

	case "/chats":
		chats, err := e.Client.ListChats(ctx)
		if err != nil {
			return false, failed("list chats", err)
		}
		e.printChats(chats)

	case "/use":
		if len(rest) == 0 {
			return false, usageErrorf("/use needs a chat id")
		}
		id, err := ParseID(rest[0], "chat id")
		if err != nil {
			return false, err
		}
		c, err := findChat(ctx, e.Client, id)
		if err != nil {
			return false, err
		}
		r.use(c)
		e.printf("Switched to chat %d: %s (%s)\n", c.ID, c.Title, c.CountLabel())

	case "/new":
		title := strings.Join(rest, " ")
		if title == "" {
			title = model.DefaultChatTitle
		}
		c, err := e.Client.CreateChat(ctx, title)
		if err != nil {
			return false, failed("create chat", err)
		}
		r.use(c)
		e.printf("%s Created chat %d: %s\n", SuccessStyle.Render("✓"), c.ID, c.Title)

	case "/history":
		if !r.hasChat {
			e.println("Select or create a chat")
			return false, nil
		}
		c, err := findChat(ctx, e.Client, r.chat.ID)
		if err != nil {
			return false, err
		}
		r.use(c)
		e.printHistory(c)

	case "/up", "/down":
		return false, r.rate(ctx, name == "/up", rest)

	default:
		return false, usageErrorf("unknown command %s, try /help", name)
	}
	return false, nil
}

func (r *repl) rate(ctx context.Context, up bool, rest []string) error {
	e := r.env
	var id int
	switch {
	case len(rest) > 0:
		v, err := strconv.Atoi(rest[0])
		if err != nil || v <= 0 {
			return usageErrorf("message id must be a positive number")
		}
		id = v
	case r.lastReply != nil:
		id = *r.lastReply
	default:
		return usageErrorf("no saved reply to rate yet")
	}

	rating := model.RatingDown
	if up {
		rating = model.RatingUp
	}
	fb, err := model.NewFeedback(id, rating)
	if err != nil {
		return err
	}
	if err := e.Client.SubmitFeedback(ctx, fb); err != nil {
		e.Log.Debug("feedback failed", zap.Int("message_id", id), zap.Error(err))
		return failed("feedback", err)
	}
	e.printf("Rated message %d %s\n", id, rating.Symbol())
	return nil
}

func (r *repl) help() {
	rows := [][2]string{
		{"/chats", "List chats"},
		{"/use ID", "Switch to another chat"},
		{"/new [TITLE]", "Create a chat and switch to it"},
		{"/history", "Print the current chat"},
		{"/up [MSG_ID]", "Rate a reply up (default: the last one)"},
		{"/down [MSG_ID]", "Rate a reply down"},
		{"/quit", "Exit (or Ctrl+D)"},
	}
	for _, row := range rows {
		r.env.printf("  %s %s\n", util.PadWidth(row[0], 16), DimStyle.Render(row[1]))
	}
}
