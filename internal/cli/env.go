// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/storage"
	"github.com/jeranaias/ragchat/internal/ui/components"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// Env is everything a command needs: the wired client stack plus the
// process's streams. Tests build one around a fake backend and buffers.
type Env struct {
	Config   *config.Config
	Store    storage.Store
	Sessions *session.Provider
	Client   *api.Client
	Log      *zap.Logger

	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader

	// ReadPassword reads a secret without echo.
	ReadPassword func(prompt string) (string, error)

	// NewLineReader opens the line editor used by the REPL.
	NewLineReader func() (LineReader, error)

	// Markdown renders replies; nil prints them as-is.
	Markdown *components.Markdown
	Width    int

	in *bufio.Reader
}

// LoadConfig loads the config named by args, or the default one, and
// applies the global flag overrides. A broken default config file is
// reported on stderr and replaced by defaults, the way the TUI starts.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}
	if args.Debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// NewEnv builds the client stack from cfg: logger, token store, session
// provider and API client. The stored session is restored before return.
func NewEnv(cfg *config.Config) (*Env, error) {
	logOpts, err := logging.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	storeOpts, err := storage.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storeOpts)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	provider := session.NewProvider(store, nil, log)
	client := api.New(cfg.API.BaseURL, provider).
		WithLogger(log).
		WithUserAgent(cfg.API.UserAgent)
	provider.SetAuthenticator(client)
	provider.Restore()

	env := &Env{
		Config:   cfg,
		Store:    store,
		Sessions: provider,
		Client:   client,
		Log:      log,
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
		In:       os.Stdin,
		Width:    GetTerminalWidth(),
	}
	env.ReadPassword = func(prompt string) (string, error) {
		return readPassword(env.ErrOut, prompt)
	}
	env.NewLineReader = func() (LineReader, error) {
		return newLinerReader()
	}
	if cfg.UI.Markdown && IsStdoutTTY() && ColorsEnabled() {
		env.Markdown = components.NewMarkdown(styles.NewTheme(cfg.UI.Theme).GlamourStyle())
	}
	return env, nil
}

// Close releases the store and flushes the log.
func (e *Env) Close() error {
	_ = e.Log.Sync()
	return e.Store.Close()
}

func (e *Env) reader() *bufio.Reader {
	if e.in == nil {
		e.in = bufio.NewReader(e.In)
	}
	return e.in
}

func (e *Env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) println(args ...interface{}) {
	fmt.Fprintln(e.Out, args...)
}

// render formats an assistant reply for the terminal.
func (e *Env) render(content string) string {
	return e.Markdown.Render(content, e.Width-4)
}

// requireSession fails fast when no token is stored.
func (e *Env) requireSession() error {
	if !e.Sessions.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes a non-TUI command. CmdTUI is started by main.
func Run(ctx context.Context, cmd Command, args Args, env *Env) error {
	if cmd.NeedsSession() {
		if err := env.requireSession(); err != nil {
			return err
		}
	}
	env.Log.Debug("command", zap.Stringer("cmd", cmd), zap.Strings("args", args.Raw))

	switch cmd {
	case CmdLogin:
		return env.runLogin(ctx, args, false)
	case CmdRegister:
		return env.runLogin(ctx, args, true)
	case CmdLogout:
		return env.runLogout()
	case CmdWhoami:
		return env.runWhoami(args)
	case CmdChats:
		return env.runChats(ctx, args)
	case CmdNew:
		return env.runNew(ctx, args)
	case CmdAsk:
		return env.runAsk(ctx, args)
	case CmdHistory:
		return env.runHistory(ctx, args)
	case CmdFeedback:
		return env.runFeedback(ctx, args)
	case CmdExport:
		return env.runExport(ctx, args)
	case CmdREPL:
		return env.runREPL(ctx, args)
	case CmdConfig:
		return RunConfig(args, env.Config, env.Out)
	case CmdVersion:
		return RunVersion(args, env.Out)
	case CmdHelp:
		PrintUsage(env.Out)
		return nil
	}
	return UnknownCommandError(args.Name)
}

// RunVersion prints the version, as JSON with --json.
func RunVersion(args Args, w io.Writer) error {
	return OutputJSON(w, args.JSON, "version", func() (interface{}, error) {
		if !args.JSON {
			PrintVersion(w)
		}
		return VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: goVersion(),
		}, nil
	})
}
