// ragchat - A terminal client for the SQL/NoSQL chatbot.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/cli"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/ui/app"
	"github.com/jeranaias/ragchat/internal/ui/components"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	// Commands that need neither config nor a session.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return
	case cli.CmdVersion:
		exitOn(cli.RunVersion(args, os.Stdout))
		return
	case cli.CmdUnknown:
		exitOn(cli.UnknownCommandError(args.Name))
		return
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		exitOn(err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd == cli.CmdConfig {
		// Config must work even when the store cannot be opened.
		exitOn(cli.RunConfig(args, cfg, os.Stdout))
		return
	}

	env, err := cli.NewEnv(cfg)
	if err != nil {
		exitOn(err)
		return
	}

	if cmd == cli.CmdTUI {
		err = runTUI(ctx, cfg, env)
	} else {
		err = cli.Run(ctx, cmd, args, env)
	}
	env.Close()
	stop()
	exitOn(err)
}

// exitOn prints err and exits with its code. A nil err returns.
func exitOn(err error) {
	if err == nil {
		return
	}
	cli.DisplayError(os.Stderr, err)
	os.Exit(cli.GetExitCode(err))
}

// runTUI starts the full-screen client on the alternate screen.
func runTUI(ctx context.Context, cfg *config.Config, env *cli.Env) error {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return &cli.TTYRequiredError{Operation: "start the TUI (try 'ragchat repl' or 'ragchat ask')"}
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	var md *components.Markdown
	if cfg.UI.Markdown {
		md = components.NewMarkdown(theme.GlamourStyle())
	}

	// Logins and logouts from other ragchat processes.
	changes, err := env.Sessions.Follow(ctx)
	if err != nil {
		env.Log.Warn("session watch disabled", zap.Error(err))
	}

	m := app.New(app.Options{
		Sessions:     env.Sessions,
		Client:       env.Client,
		Theme:        theme,
		Log:          env.Log,
		Markdown:     md,
		SidebarWidth: cfg.UI.SidebarWidth,
		Changes:      changes,
	})

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return fmt.Errorf("error running ragchat: %w", err)
	}
	if fm, ok := final.(app.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
