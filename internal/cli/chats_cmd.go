// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats_cmd.go - Scriptable chat commands.
//
// Examples:
//
//	ragchat chats
//	ragchat new --title "Indexes"
//	ragchat ask --chat 5 "What is a primary key?"
//	ragchat history --chat 5 --json
//	ragchat feedback 42 up
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/util"
)

// =============================================================================
// CHATS
// =============================================================================

func (e *Env) runChats(ctx context.Context, args Args) error {
	return OutputJSON(e.Out, args.JSON, "chats", func() (interface{}, error) {
		chats, err := e.Client.ListChats(ctx)
		if err != nil {
			return nil, failed("list chats", err)
		}
		if !args.JSON {
			e.printChats(chats)
		}
		return chats, nil
	})
}

func (e *Env) printChats(chats []model.Chat) {
	if len(chats) == 0 {
		e.println(DimStyle.Render("No chats yet. Create one with 'ragchat new'."))
		return
	}
	for _, c := range chats {
		title := util.TruncateWidth(c.Title, 48)
		e.printf("%5d  %s  %s\n", c.ID, util.PadWidth(title, 48), DimStyle.Render(c.CountLabel()))
	}
}

func (e *Env) runNew(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	title := p.FirstFlag("title", "t")
	if title == "" {
		title = JoinPositionalArgs(p, 0)
	}
	if util.IsBlank(title) {
		title = model.DefaultChatTitle
	}

	return OutputJSON(e.Out, args.JSON, "new", func() (interface{}, error) {
		c, err := e.Client.CreateChat(ctx, title)
		if err != nil {
			return nil, failed("create chat", err)
		}
		if !args.JSON {
			e.printf("%s Created chat %d: %s\n", SuccessStyle.Render("✓"), c.ID, c.Title)
		}
		return c, nil
	})
}

// =============================================================================
// ASK
// =============================================================================

// AskData is the JSON shape of ask.
type AskData struct {
	ChatID   int    `json:"chat_id"`
	Query    string `json:"query"`
	Response string `json:"response"`
}

// runAsk sends one query. Without --chat the server picks a new chat, and
// its id is reported so follow-up questions can reuse it.
func (e *Env) runAsk(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	chatID := 0
	if raw := p.FirstFlag("chat", "c"); raw != "" {
		id, err := ParseID(raw, "chat id")
		if err != nil {
			return err
		}
		chatID = id
	}

	query := strings.TrimSpace(JoinPositionalArgs(p, 0))
	if (query == "" || query == "-") && !isTerminal(e.In) {
		// echo "..." | ragchat ask
		data, err := io.ReadAll(e.reader())
		if err != nil {
			return fmt.Errorf("failed to read query: %w", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		return usageErrorf("ask needs a query")
	}

	return OutputJSON(e.Out, args.JSON, "ask", func() (interface{}, error) {
		res, err := e.Client.Send(ctx, chatID, query)
		if err != nil {
			return nil, failed("ask", err)
		}
		if !args.JSON {
			e.println(e.render(res.Response))
			if chatID == 0 {
				fmt.Fprintln(e.ErrOut, DimStyle.Render(fmt.Sprintf("(chat %d)", res.ChatID)))
			}
		}
		return AskData{ChatID: res.ChatID, Query: query, Response: res.Response}, nil
	})
}

// =============================================================================
// HISTORY
// =============================================================================

// findChat lists chats and returns the one with id.
func findChat(ctx context.Context, client *api.Client, id int) (model.Chat, error) {
	chats, err := client.ListChats(ctx)
	if err != nil {
		return model.Chat{}, failed("list chats", err)
	}
	for _, c := range chats {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Chat{}, &CommandError{Reason: fmt.Sprintf("chat %d not found", id)}
}

func (e *Env) runHistory(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	raw := p.FirstFlag("chat", "c")
	if raw == "" {
		raw = p.Positional(0)
	}
	id, err := ParseID(raw, "chat id")
	if err != nil {
		return err
	}

	return OutputJSON(e.Out, args.JSON, "history", func() (interface{}, error) {
		c, err := findChat(ctx, e.Client, id)
		if err != nil {
			return nil, err
		}
		if !args.JSON {
			e.printHistory(c)
		}
		return c, nil
	})
}

func (e *Env) printHistory(c model.Chat) {
	e.println(TitleStyle.Render(c.Title))
	e.println(RenderSeparator(0))
	if len(c.Messages) == 0 {
		e.println(DimStyle.Render("No messages yet."))
		return
	}
	for _, m := range c.Messages {
		e.printMessage(m)
	}
}

// printMessage prints one message with its id, so replies can be rated
// with 'ragchat feedback'.
func (e *Env) printMessage(m model.Message) {
	var head strings.Builder
	if m.IsUser {
		head.WriteString(UserStyle.Render(m.Role().DisplayName()))
	} else {
		head.WriteString(AssistantStyle.Render(m.Role().DisplayName()))
	}
	if m.ID != nil {
		head.WriteString(DimStyle.Render(fmt.Sprintf(" #%d", *m.ID)))
	}
	if !m.Timestamp.IsZero() {
		head.WriteString(DimStyle.Render("  " + m.Timestamp.Local().Format("Jan 2 15:04")))
	}
	if m.NeedsReview {
		head.WriteString("  " + WarningStyle.Render("needs review"))
	}
	if m.Feedback != nil {
		head.WriteString("  " + model.Rating(*m.Feedback).Symbol())
	}
	e.println(head.String())

	if m.IsUser {
		e.println(m.Content)
	} else {
		e.println(e.render(m.Content))
	}
	e.println()
}

// =============================================================================
// FEEDBACK
// =============================================================================

func (e *Env) runFeedback(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	id, err := ParseID(p.Positional(0), "message id")
	if err != nil {
		return err
	}
	if p.Positional(1) == "" {
		return usageErrorf("feedback needs a rating: up or down")
	}
	rating, err := model.ParseRating(p.Positional(1))
	if err != nil {
		return usageErrorf("%v", err)
	}
	fb, err := model.NewFeedback(id, rating)
	if err != nil {
		return usageErrorf("%v", err)
	}

	if err := e.Client.SubmitFeedback(ctx, fb); err != nil {
		return failed("feedback", err)
	}
	if !args.JSON {
		e.printf("%s Rated message %d %s\n", SuccessStyle.Render("✓"), id, rating.Symbol())
		return nil
	}
	return NewJSONResponse("feedback", fb).Print(e.Out)
}
