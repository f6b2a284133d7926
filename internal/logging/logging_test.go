// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/ragchat/internal/config"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ragchat.log")

	logger, err := New(Options{Level: "debug", Format: "json", Path: path})
	require.NoError(t, err)
	logger.Info("chat loaded")
	logger.Debug("debug line")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chat loaded")
	assert.Contains(t, string(data), "debug line")
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.log")

	logger, err := New(Options{Level: "warn", Format: "console", Path: path})
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
	assert.Contains(t, string(data), "shown")
}

func TestNew_BadLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.log")
	logger, err := New(Options{Level: "loud", Path: path})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RAGCHAT_HOME", dir)
	cfg := config.Default()

	opts, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ragchat.log"), opts.Path)
	assert.Equal(t, "info", opts.Level)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}

