// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
//
// Supports both TOML and JSON configuration formats, with defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - APIConfig: backend base URL and client identity
//   - StorageConfig: where the session token is persisted
//   - LogConfig: log file location and level
//   - UIConfig: theme and rendering switches
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RAGCHAT_*), including values from ./.env
//   - ~/.ragchat/config.toml
//   - ~/.ragchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.New(cfg.API.BaseURL, tokens)
package config
