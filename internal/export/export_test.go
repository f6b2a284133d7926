// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ragchat/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testOptions() *Options {
	opts := DefaultOptions()
	opts.now = func() time.Time { return fixedNow }
	return opts
}

func sampleChat() model.Chat {
	up := int(model.RatingUp)
	ts := model.Time{Time: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	return model.Chat{
		ID:    7,
		Title: "Indexes: B-tree vs hash",
		Messages: []model.Message{
			{ID: model.IntPtr(1), IsUser: true, Content: "When is a <b>hash</b> index better?", Timestamp: ts},
			{ID: model.IntPtr(2), Content: "For equality lookups.\n\n```sql\nCREATE INDEX ix ON t USING hash (k);\n```\n<script>alert(1)</script>", Timestamp: ts, Feedback: &up},
			{ID: model.IntPtr(3), Content: "Not sure.", NeedsReview: true, Timestamp: ts},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{".json", FormatJSON, false},
		{"HTML", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions()).Export(sampleChat())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(out)

	for _, want := range []string{
		"title: \"Indexes: B-tree vs hash\"\n",
		"chat_id: 7\n",
		"messages: 3\n",
		"# Indexes: B-tree vs hash\n",
		"### You <sub>09:00:00</sub>",
		"### Assistant",
		"Message #2 | Rated 👍",
		"Message #3 | Needs review",
		"*Exported from ragchat on March 14, 2025 at 9:26 AM*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Index(md, "When is a") > strings.Index(md, "For equality") {
		t.Error("messages out of order")
	}
}

func TestMarkdownWithoutMetadata(t *testing.T) {
	opts := testOptions()
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false
	out, err := NewMarkdownExporter(opts).Export(sampleChat())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(out)
	if strings.HasPrefix(md, "---") || strings.Contains(md, "Rated") || strings.Contains(md, "<sub>") {
		t.Errorf("metadata leaked into export:\n%s", md)
	}
}

func TestYAMLNewlineInjection(t *testing.T) {
	chat := sampleChat()
	chat.Title = "Test\nInjection: malicious"
	out, err := NewMarkdownExporter(testOptions()).Export(chat)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if strings.Contains(string(out), "\nInjection: malicious\n") {
		t.Error("newline in title escaped the frontmatter")
	}
}

func TestHTMLExportEscapes(t *testing.T) {
	out, err := NewHTMLExporter(testOptions()).Export(sampleChat())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	page := string(out)

	if strings.Contains(page, "<script>alert(1)</script>") {
		t.Error("raw HTML in a reply was passed through")
	}
	if !strings.Contains(page, "&lt;b&gt;hash&lt;/b&gt;") {
		t.Error("user content was not escaped")
	}
	if !strings.Contains(page, "<code class=\"language-sql\">") {
		t.Error("code fence was not rendered")
	}
	if !strings.Contains(page, "class=\"dark-theme\"") {
		t.Error("default theme should be dark")
	}
	if !strings.Contains(page, "Needs review") {
		t.Error("review flag missing")
	}
}

func TestJSONExportRoundTrips(t *testing.T) {
	chat := sampleChat()
	out, err := NewJSONExporter(nil).Export(chat)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var back model.Chat
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.ID != chat.ID || len(back.Messages) != 3 || *back.Messages[1].Feedback != 1 {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestEmptyChat(t *testing.T) {
	empty := model.Chat{ID: 1, Title: "Empty"}
	if _, err := NewMarkdownExporter(nil).Export(empty); err != ErrEmptyChat {
		t.Errorf("markdown err = %v, want ErrEmptyChat", err)
	}
	if _, err := NewHTMLExporter(nil).Export(empty); err != ErrEmptyChat {
		t.Errorf("html err = %v, want ErrEmptyChat", err)
	}
	out, err := NewJSONExporter(nil).Export(empty)
	if err != nil || !strings.Contains(string(out), `"messages": []`) {
		t.Errorf("json export of empty chat = %s, %v", out, err)
	}
}

func TestExportToFile(t *testing.T) {
	opts := testOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "out")

	path, err := ExportToFile(sampleChat(), NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	if filepath.Base(path) != "chat_7_Indexes-_B-tree_vs_hash_20250314_092653.md" {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "chat"},
		{"a/b\\c", "a-b-c"},
		{"what?", "what-"},
		{strings.Repeat("x", 60), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
