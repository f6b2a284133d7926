// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "flag with value",
			args:    []string{"--chat", "5", "hello"},
			wantSub: "hello",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("chat") != "5" {
					t.Errorf("Flag(chat) = %q, want %q", p.Flag("chat"), "5")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"--title=Indexes and keys"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("title") != "Indexes and keys" {
					t.Errorf("Flag(title) = %q", p.Flag("title"))
				}
			},
		},
		{
			name:    "declared boolean does not swallow positional",
			args:    []string{"init", "--force", "extra"},
			bools:   []string{"force"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be true")
				}
				if p.Positional(1) != "extra" {
					t.Errorf("Positional(1) = %q, want extra", p.Positional(1))
				}
			},
		},
		{
			name:    "short flag",
			args:    []string{"-u", "ada"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if got := p.FirstFlag("u", "username"); got != "ada" {
					t.Errorf("FirstFlag = %q, want ada", got)
				}
			},
		},
		{
			name:    "dash is a value",
			args:    []string{"42", "-"},
			wantSub: "42",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(1) != "-" {
					t.Errorf("Positional(1) = %q, want -", p.Positional(1))
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"--", "--not-a-flag", "x"},
			wantSub: "--not-a-flag",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 2 {
					t.Errorf("PositionalCount() = %d, want 2", p.PositionalCount())
				}
			},
		},
		{
			name:    "multi-word query",
			args:    []string{"--chat", "3", "What", "is", "a", "primary", "key?"},
			wantSub: "What",
			validate: func(t *testing.T, p *ArgParser) {
				if got := JoinPositionalArgs(p, 0); got != "What is a primary key?" {
					t.Errorf("JoinPositionalArgs = %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args, tt.bools...)
			if p.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", p.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"5", 5, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in, "chat id")
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
		var usage *UsageError
		if err != nil && !errors.As(err, &usage) {
			t.Errorf("ParseID(%q) error should be a UsageError, got %T", tt.in, err)
		}
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1", "on"} {
		if v, err := ParseBoolString(s); err != nil || !v {
			t.Errorf("ParseBoolString(%q) = %v, %v", s, v, err)
		}
	}
	for _, s := range []string{"false", "no", "N", "0", "off"} {
		if v, err := ParseBoolString(s); err != nil || v {
			t.Errorf("ParseBoolString(%q) = %v, %v", s, v, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should fail")
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{name: "no args starts tui", argv: nil, wantCmd: CmdTUI},
		{name: "tui", argv: []string{"tui"}, wantCmd: CmdTUI},
		{name: "login", argv: []string{"login", "-u", "ada"}, wantCmd: CmdLogin,
			check: func(t *testing.T, a Args) {
				if strings.Join(a.Raw, " ") != "-u ada" {
					t.Errorf("Raw = %v", a.Raw)
				}
			}},
		{name: "register alias", argv: []string{"signup"}, wantCmd: CmdRegister},
		{name: "chats alias", argv: []string{"ls"}, wantCmd: CmdChats},
		{name: "repl alias", argv: []string{"chat"}, wantCmd: CmdREPL},
		{name: "case insensitive", argv: []string{"HISTORY", "--chat", "2"}, wantCmd: CmdHistory},
		{name: "version flag", argv: []string{"--version"}, wantCmd: CmdVersion},
		{name: "help flag", argv: []string{"-h"}, wantCmd: CmdHelp},
		{name: "global flags anywhere", argv: []string{"--debug", "chats", "--json", "--api", "http://x:1/api"}, wantCmd: CmdChats,
			check: func(t *testing.T, a Args) {
				if !a.Debug || !a.JSON || a.APIURL != "http://x:1/api" {
					t.Errorf("globals not parsed: %+v", a)
				}
				if len(a.Raw) != 0 {
					t.Errorf("Raw = %v, want empty", a.Raw)
				}
			}},
		{name: "config equals", argv: []string{"--config=/tmp/c.toml", "config", "show"}, wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				if a.ConfigPath != "/tmp/c.toml" {
					t.Errorf("ConfigPath = %q", a.ConfigPath)
				}
			}},
		{name: "unknown", argv: []string{"chast"}, wantCmd: CmdUnknown,
			check: func(t *testing.T, a Args) {
				if a.Name != "chast" {
					t.Errorf("Name = %q", a.Name)
				}
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("Parse(%v) = %v, want %v", tt.argv, cmd, tt.wantCmd)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestNeedsSession(t *testing.T) {
	for _, c := range []Command{CmdChats, CmdNew, CmdAsk, CmdHistory, CmdFeedback, CmdExport, CmdREPL} {
		if !c.NeedsSession() {
			t.Errorf("%v should need a session", c)
		}
	}
	for _, c := range []Command{CmdLogin, CmdRegister, CmdLogout, CmdWhoami, CmdConfig, CmdVersion} {
		if c.NeedsSession() {
			t.Errorf("%v should not need a session", c)
		}
	}
}

// =============================================================================
// SUGGESTIONS AND ERRORS
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"chast", "chat"},
		{"chtas", "chats"},
		{"logn", "login"},
		{"hlep", "help"},
		{"regster", "register"},
		{"histroy", "history"},
		{"x", ""},
		{"login", ""},
		{"zzzzzzzz", ""},
	}
	for _, tt := range tests {
		if got := SuggestCommand(tt.input); got != tt.want {
			t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestUnknownCommandError(t *testing.T) {
	err := UnknownCommandError("logn")
	if !strings.Contains(err.Error(), `did you mean "login"`) {
		t.Errorf("error = %q", err.Error())
	}

	var buf bytes.Buffer
	DisplayError(&buf, err)
	out := buf.String()
	if !strings.HasPrefix(out, "Error: unknown command") {
		t.Errorf("DisplayError output = %q", out)
	}
	if !strings.Contains(out, "ragchat help") {
		t.Errorf("usage errors should point at help, got %q", out)
	}
	if GetExitCode(err) != ExitGeneralError {
		t.Errorf("GetExitCode = %d", GetExitCode(err))
	}
	if GetExitCode(nil) != ExitSuccess {
		t.Errorf("GetExitCode(nil) = %d", GetExitCode(nil))
	}
}

func TestPrintUsageMentionsEveryCommand(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	out := buf.String()
	for _, name := range commandNames {
		if !strings.Contains(out, name) {
			t.Errorf("usage text does not mention %q", name)
		}
	}
}

func TestArgParser_DashValue(t *testing.T) {
	p := NewArgParser([]string{"5", "-o", "-", "--format", "json"})
	if p.Flag("o") != "-" {
		t.Errorf("Flag(o) = %q, want -", p.Flag("o"))
	}
	if p.Positional(0) != "5" || p.PositionalCount() != 1 {
		t.Errorf("positionals = %v", p.PositionalFrom(0))
	}
}
