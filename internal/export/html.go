// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jeranaias/ragchat/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports chats to a standalone HTML page with embedded CSS.
// Replies are rendered from Markdown; raw HTML in message content is
// dropped, never passed through.
type HTMLExporter struct {
	options *Options
	md      goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options: opts,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Export converts a chat to HTML format.
func (e *HTMLExporter) Export(chat model.Chat) ([]byte, error) {
	if len(chat.Messages) == 0 {
		return nil, ErrEmptyChat
	}
	title := chatTitle(chat)

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString("    <meta name=\"generator\" content=\"ragchat\">\n")
	sb.WriteString(e.css())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.theme()))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(chat, title))
	} else {
		sb.WriteString(fmt.Sprintf("        <h1>%s</h1>\n", html.EscapeString(title)))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range chat.Messages {
		body, err := e.renderMessage(msg)
		if err != nil {
			return nil, err
		}
		sb.WriteString(body)
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>ragchat</strong> on %s</p>\n",
		e.options.clock().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) theme() string {
	if strings.EqualFold(e.options.Theme, "light") {
		return "light"
	}
	return "dark"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(chat model.Chat, title string) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Chat:</strong> %d</span>\n", chat.ID))
	if first, _ := timeRange(chat); !first.IsZero() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Started:</strong> %s</span>\n", formatTimestamp(first)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(chat.Messages)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

func (e *HTMLExporter) renderMessage(msg model.Message) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", msg.Role()))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", msg.Role().DisplayName()))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp.Time)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	if msg.IsUser {
		sb.WriteString("<p>" + strings.ReplaceAll(html.EscapeString(strings.TrimSpace(msg.Content)), "\n", "<br>\n") + "</p>\n")
	} else {
		var buf bytes.Buffer
		if err := e.md.Convert([]byte(msg.Content), &buf); err != nil {
			return "", fmt.Errorf("render message: %w", err)
		}
		sb.Write(buf.Bytes())
	}
	sb.WriteString("                </div>\n")

	if !msg.IsUser && e.options.IncludeMetadata {
		sb.WriteString(e.renderMessageNotes(msg))
	}

	sb.WriteString("            </div>\n")
	return sb.String(), nil
}

func (e *HTMLExporter) renderMessageNotes(msg model.Message) string {
	var parts []string
	if msg.ID != nil {
		parts = append(parts, fmt.Sprintf("<span class=\"stat\">#%d</span>", *msg.ID))
	}
	if r, ok := ratingOf(msg); ok {
		parts = append(parts, fmt.Sprintf("<span class=\"stat rating-%s\">%s</span>", r, r.Symbol()))
	}
	if msg.NeedsReview {
		parts = append(parts, "<span class=\"stat review\">Needs review</span>")
	}
	if len(parts) == 0 {
		return ""
	}
	return "                <div class=\"message-stats\">" + strings.Join(parts, " ") + "</div>\n"
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

func (e *HTMLExporter) css() string {
	return `    <style>
        * { box-sizing: border-box; }
        body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
        .dark-theme { background: #1e1e2e; color: #cdd6f4; }
        .light-theme { background: #f8fafc; color: #1e293b; }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header h1 { margin-bottom: 0.25rem; }
        .metadata { display: flex; gap: 1.5rem; font-size: 0.9rem; opacity: 0.75; }
        .message { border-radius: 8px; padding: 0.75rem 1rem; margin: 1rem 0; }
        .dark-theme .user-message { background: #313244; }
        .dark-theme .assistant-message { background: #181825; border-left: 3px solid #10b981; }
        .light-theme .user-message { background: #e0e7ff; }
        .light-theme .assistant-message { background: #ffffff; border-left: 3px solid #10b981; }
        .message-header { display: flex; justify-content: space-between; font-weight: 600; }
        .timestamp { font-weight: normal; font-size: 0.8rem; opacity: 0.6; }
        .message-stats { font-size: 0.8rem; opacity: 0.7; }
        .stat { margin-right: 0.75rem; }
        .review { color: #f59e0b; }
        pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; background: rgba(127, 127, 127, 0.15); }
        code { font-family: "JetBrains Mono", Menlo, Consolas, monospace; font-size: 0.9em; }
        table { border-collapse: collapse; }
        th, td { border: 1px solid rgba(127, 127, 127, 0.4); padding: 0.25rem 0.5rem; }
        .footer { margin-top: 2rem; font-size: 0.8rem; opacity: 0.6; text-align: center; }
    </style>
`
}
