// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat to a file for sharing or archiving.
//
// # Supported Formats
//
//   - Markdown: Human-readable with frontmatter and ratings
//   - JSON: The chat exactly as the backend returned it
//   - HTML: Self-contained page, light or dark
//
// # Usage
//
//	exp, err := export.New(export.FormatMarkdown, nil)
//	path, err := export.ExportToFile(chat, exp, &export.Options{OutputDir: "."})
package export
