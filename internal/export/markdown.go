// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/ragchat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports chats to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// ErrEmptyChat is returned by the document exporters for a chat with no
// messages.
var ErrEmptyChat = errors.New("chat has no messages")

// Export converts a chat to Markdown format.
func (e *MarkdownExporter) Export(chat model.Chat) ([]byte, error) {
	if len(chat.Messages) == 0 {
		return nil, ErrEmptyChat
	}
	title := chatTitle(chat)
	first, last := timeRange(chat)

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(title)))
		sb.WriteString(fmt.Sprintf("chat_id: %d\n", chat.ID))
		if !first.IsZero() {
			sb.WriteString(fmt.Sprintf("date: %s\n", first.Format(time.RFC3339)))
			sb.WriteString(fmt.Sprintf("updated: %s\n", last.Format(time.RFC3339)))
		}
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(chat.Messages)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", e.options.clock().Format(time.RFC3339)))
		sb.WriteString("generator: ragchat\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(title)))

	for i, msg := range chat.Messages {
		label := msg.Role().DisplayName()
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp.Time)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if !msg.IsUser && e.options.IncludeMetadata {
			if notes := e.formatMessageNotes(msg); notes != "" {
				sb.WriteString(notes)
				sb.WriteString("\n\n")
			}
		}

		if i < len(chat.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from ragchat on %s*\n",
		e.options.clock().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// formatMessageNotes renders the rating and review flag of a reply.
func (e *MarkdownExporter) formatMessageNotes(msg model.Message) string {
	var parts []string
	if msg.ID != nil {
		parts = append(parts, fmt.Sprintf("Message #%d", *msg.ID))
	}
	if r, ok := ratingOf(msg); ok {
		parts = append(parts, "Rated "+r.Symbol())
	}
	if msg.NeedsReview {
		parts = append(parts, "Needs review")
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("<sub>%s</sub>", strings.Join(parts, " | "))
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

func chatTitle(chat model.Chat) string {
	// Titles are single-line; folding whitespace keeps them out of the
	// frontmatter structure.
	if t := strings.Join(strings.Fields(chat.Title), " "); t != "" {
		return t
	}
	return model.DefaultChatTitle
}

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
