// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and usage text for ragchat.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdRegister
	CmdLogout
	CmdWhoami
	CmdChats
	CmdNew
	CmdAsk
	CmdHistory
	CmdFeedback
	CmdExport
	CmdREPL
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:      "tui",
	CmdLogin:    "login",
	CmdRegister: "register",
	CmdLogout:   "logout",
	CmdWhoami:   "whoami",
	CmdChats:    "chats",
	CmdNew:      "new",
	CmdAsk:      "ask",
	CmdHistory:  "history",
	CmdFeedback: "feedback",
	CmdExport:   "export",
	CmdREPL:     "repl",
	CmdConfig:   "config",
	CmdVersion:  "version",
	CmdHelp:     "help",
}

// String returns the command name as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// NeedsSession reports whether the command talks to the protected API.
func (c Command) NeedsSession() bool {
	switch c {
	case CmdChats, CmdNew, CmdAsk, CmdHistory, CmdFeedback, CmdExport, CmdREPL:
		return true
	}
	return false
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config PATH
	APIURL     string // --api URL, overrides api.base_url
	Debug      bool   // --debug, sets log level to debug
	JSON       bool   // --json, machine-readable output

	// Name is the command as typed, kept for unknown-command errors.
	Name string

	// Raw holds the arguments after the command name.
	Raw []string
}

const usageText = `ragchat - terminal client for the SQL/NoSQL chatbot

Usage:
  ragchat                          Start the TUI (default)
  ragchat tui                      Start the TUI
  ragchat login [-u USER]          Log in; the password is read without echo
  ragchat register [-u USER]       Create an account and log in
  ragchat logout                   Forget the stored session
  ragchat whoami                   Show the current session
  ragchat chats                    List your chats
  ragchat new [--title TITLE]      Create a chat
  ragchat ask [--chat ID] QUERY    Send one query and print the reply
  ragchat history --chat ID        Print a chat's messages
  ragchat feedback MSG_ID up|down  Rate an assistant message
  ragchat export --chat ID [--format md|json|html] [-o DIR|-]
                                   Save a chat to a file, or stdout with -o -
  ragchat repl [--chat ID]         Interactive line chat with history
  ragchat config [show|path|init|get KEY|set KEY VALUE]
  ragchat version                  Show version information
  ragchat help                     Show this help

Global flags:
  --config PATH   Use a specific config file (TOML or JSON)
  --api URL       Override the API base URL
  --debug         Log at debug level
  --json          JSON output for chats, history, whoami and version

TUI keys:
  tab             Switch between chat list and conversation
  ctrl+n          New chat
  esc / i         Leave / enter the input box
  u / d           Rate the selected reply up / down
  ctrl+l          Log out
  ctrl+c          Quit

Config: ~/.ragchat/config.toml (override the directory with RAGCHAT_HOME)

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "ragchat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
}

// VersionData is the JSON shape of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	name := strings.ToLower(remaining[0])
	parsed.Name = name
	parsed.Raw = remaining[1:]

	switch name {
	case "tui":
		return CmdTUI, parsed
	case "login", "signin":
		return CmdLogin, parsed
	case "register", "signup":
		return CmdRegister, parsed
	case "logout", "signout":
		return CmdLogout, parsed
	case "whoami", "status":
		return CmdWhoami, parsed
	case "chats", "ls":
		return CmdChats, parsed
	case "new":
		return CmdNew, parsed
	case "ask":
		return CmdAsk, parsed
	case "history", "show":
		return CmdHistory, parsed
	case "feedback", "rate":
		return CmdFeedback, parsed
	case "export":
		return CmdExport, parsed
	case "repl", "chat":
		return CmdREPL, parsed
	case "config":
		return CmdConfig, parsed
	case "version", "-v", "--version":
		return CmdVersion, parsed
	case "help", "-h", "--help":
		return CmdHelp, parsed
	default:
		return CmdUnknown, parsed
	}
}

// parseGlobalFlags extracts global flags wherever they appear and returns
// the remaining args in order.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--debug":
			parsed.Debug = true
		case arg == "--json":
			parsed.JSON = true
		case arg == "--config" && i+1 < len(args):
			i++
			parsed.ConfigPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--api" && i+1 < len(args):
			i++
			parsed.APIURL = args[i]
		case strings.HasPrefix(arg, "--api="):
			parsed.APIURL = strings.TrimPrefix(arg, "--api=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

// UnknownCommandError reports a command name that did not parse.
func UnknownCommandError(name string) error {
	if s := SuggestCommand(name); s != "" {
		return usageErrorf("unknown command %q, did you mean %q?", name, s)
	}
	return usageErrorf("unknown command %q", name)
}

func goVersion() string {
	return runtime.Version()
}
