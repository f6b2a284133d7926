// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Save a chat as Markdown, JSON or HTML.
//
// Examples:
//
//	ragchat export --chat 5                      Markdown in the current directory
//	ragchat export --chat 5 --format html --open Write and open in the browser
//	ragchat export 5 --format json -o -          Print to stdout
package cli

import (
	"context"
	"errors"

	"github.com/jeranaias/ragchat/internal/export"
)

// ExportData is the JSON shape of export.
type ExportData struct {
	ChatID int    `json:"chat_id"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

func (e *Env) runExport(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw, "open", "no-metadata")
	raw := p.FirstFlag("chat", "c")
	if raw == "" {
		raw = p.Positional(0)
	}
	id, err := ParseID(raw, "chat id")
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(p.FirstFlag("format", "f"))
	if err != nil {
		return usageErrorf("%v", err)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = p.FlagOrDefault("o", p.FlagOrDefault("output", "."))
	opts.OpenAfterExport = p.BoolFlag("open")
	opts.IncludeMetadata = !p.BoolFlag("no-metadata")
	opts.Theme = e.Config.UI.Theme
	exporter, err := export.New(format, opts)
	if err != nil {
		return usageErrorf("%v", err)
	}

	c, err := findChat(ctx, e.Client, id)
	if err != nil {
		return err
	}

	if opts.OutputDir == "-" {
		data, err := exporter.Export(c)
		if err != nil {
			return exportFailed(err)
		}
		_, err = e.Out.Write(data)
		return err
	}

	return OutputJSON(e.Out, args.JSON, "export", func() (interface{}, error) {
		path, err := export.ExportToFile(c, exporter, opts)
		if err != nil {
			return nil, exportFailed(err)
		}
		if !args.JSON {
			e.printf("%s Exported chat %d to %s\n", SuccessStyle.Render("✓"), c.ID, path)
		}
		return ExportData{ChatID: c.ID, Format: string(format), Path: path}, nil
	})
}

func exportFailed(err error) error {
	if errors.Is(err, export.ErrEmptyChat) {
		return &CommandError{Action: "export", Reason: "chat has no messages yet", Err: err}
	}
	return &CommandError{Action: "export", Reason: err.Error(), Err: err}
}
