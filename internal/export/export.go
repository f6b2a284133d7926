// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/ragchat/internal/model"
)

// Exporter renders one chat as a file body.
type Exporter interface {
	Export(chat model.Chat) ([]byte, error)
	// FileExtension includes the leading dot.
	FileExtension() string
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

var formatAliases = map[string]Format{
	"":         FormatMarkdown,
	"md":       FormatMarkdown,
	"markdown": FormatMarkdown,
	"json":     FormatJSON,
	"htm":      FormatHTML,
	"html":     FormatHTML,
}

// ParseFormat accepts a format name or file extension, case-insensitively.
// Empty means markdown.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimPrefix(s, "."))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (markdown, json, html)", s)
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Options controls what an export contains and where ExportToFile puts it.
type Options struct {
	OutputDir         string
	OpenAfterExport   bool
	IncludeMetadata   bool // header block and ratings
	IncludeTimestamps bool
	Theme             string // "light" or "dark", HTML only

	now func() time.Time
}

func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

func (o *Options) clock() time.Time {
	if o.now == nil {
		return time.Now()
	}
	return o.now()
}

// ExportToFile renders chat and writes it under opts.OutputDir, creating
// the directory if needed. It returns the written path. A failure to open
// the file afterwards only prints a warning.
func ExportToFile(chat model.Chat, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	body, err := exporter.Export(chat)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, Filename(chat, exporter, opts.clock()))
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open %s: %v\n", path, err)
		}
	}
	return path, nil
}

// Filename is chat_<id>_<title>_<yyyymmdd_hhmmss><ext>.
func Filename(chat model.Chat, exporter Exporter, at time.Time) string {
	return fmt.Sprintf("chat_%d_%s_%s%s",
		chat.ID, sanitizeFilename(chat.Title), at.Format("20060102_150405"), exporter.FileExtension())
}

const maxTitleInFilename = 50

// sanitizeFilename keeps at most 50 runes of the title. Whitespace becomes
// '_'; path separators, reserved Windows characters and controls become '-'.
func sanitizeFilename(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) == 0 {
		return "chat"
	}
	if len(runes) > maxTitleInFilename {
		runes = runes[:maxTitleInFilename]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ', r == '\t', r == '\n', r == '\r':
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 32, r == 127:
			return '-'
		}
		return r
	}, string(runes))
}

func openFile(path string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "linux", "freebsd", "openbsd":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start", `""`}
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return exec.Command(name, append(args, path)...).Start()
}

func ratingOf(msg model.Message) (model.Rating, bool) {
	if msg.Feedback == nil {
		return 0, false
	}
	return model.Rating(*msg.Feedback), true
}

func formatTimestamp(t time.Time) string      { return t.Format("2006-01-02 15:04:05") }
func formatShortTimestamp(t time.Time) string { return t.Format("15:04:05") }

// timeRange is the earliest and latest message time, ignoring messages
// without one.
func timeRange(chat model.Chat) (first, last time.Time) {
	for _, m := range chat.Messages {
		t := m.Timestamp.Time
		if t.IsZero() {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return first, last
}
