// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI commands of ragchat: login and
// logout, scriptable chat commands, a line REPL and config management.
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	cfg, err := cli.LoadConfig(args)
//	env, err := cli.NewEnv(cfg)
//	err = cli.Run(ctx, cmd, args, env)
//
// Commands print human-readable output, or a JSON envelope with --json.
// Errors are shown as "Error: msg" by DisplayError.
package cli
