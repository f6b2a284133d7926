// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger used across ragchat.
//
// The TUI owns stdout and stderr while it runs, so output goes to a file
// (~/.ragchat/ragchat.log by default). CLI commands use the same file so a
// session can be traced across both surfaces.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/ragchat/internal/config"
)

// Options selects level, encoding and destination.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	Path   string // file path; "stderr" or "stdout" are accepted too
}

// FromConfig derives Options from the log section of cfg.
func FromConfig(cfg *config.Config) (Options, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return Options{}, err
	}
	return Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Path: path}, nil
}

// New builds a logger from opts. Unknown levels fall back to info.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	var zc zap.Config
	if opts.Format == "json" {
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.Encoding = "console"
		zc.Development = false
	}
	zc.Level = level
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true

	out := opts.Path
	if out == "" {
		out = "stderr"
	}
	if out != "stderr" && out != "stdout" {
		if err := os.MkdirAll(filepath.Dir(out), 0700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		// zap opens with 0666; pre-create so the umask-independent mode sticks.
		f, err := os.OpenFile(out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		f.Close()
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{out}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
