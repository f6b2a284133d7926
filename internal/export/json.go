// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"

	"github.com/jeranaias/ragchat/internal/model"
)

// JSONExporter writes a chat in the same shape GET /chat/{id} returns it,
// so the file decodes straight back into model.Chat.
type JSONExporter struct {
	options *Options
}

func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export never fails on an empty chat; messages is written as [].
func (e *JSONExporter) Export(chat model.Chat) ([]byte, error) {
	if chat.Messages == nil {
		chat.Messages = make([]model.Message, 0)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	// SQL in answers is full of < and >, keep it readable.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(chat); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *JSONExporter) FileExtension() string { return ".json" }
func (e *JSONExporter) MimeType() string      { return "application/json" }
