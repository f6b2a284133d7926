// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Output width bounds for wrapped answers.
const (
	DefaultTerminalWidth = 80
	MinTerminalWidth     = 40
)

func fdIsTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// IsTTY reports whether stdin is interactive.
func IsTTY() bool { return fdIsTerminal(os.Stdin) }

// IsStdoutTTY reports whether stdout is interactive.
func IsStdoutTTY() bool { return fdIsTerminal(os.Stdout) }

// isTerminal is true only for an *os.File attached to a terminal. Buffers
// and pipes count as piped input.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && fdIsTerminal(f)
}

// GetTerminalWidth is the stdout width clamped to MinTerminalWidth.
func GetTerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil, w <= 0:
		return DefaultTerminalWidth
	case w < MinTerminalWidth:
		return MinTerminalWidth
	}
	return w
}

var colors = sync.OnceValue(func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return IsStdoutTTY()
})

// ColorsEnabled applies NO_COLOR, then FORCE_COLOR, then TTY detection.
// The answer is computed once per process.
func ColorsEnabled() bool { return colors() }

func GetColorProfile() termenv.Profile {
	if colors() {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

// TTYRequiredError reports an interactive operation attempted without a
// terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	return fmt.Sprintf("stdin is not a terminal; cannot %s interactively", e.Operation)
}

// readPassword reads a secret with echo off. The prompt and the newline
// after it go to w.
func readPassword(w io.Writer, prompt string) (string, error) {
	if !IsTTY() {
		return "", &TTYRequiredError{Operation: "read a password"}
	}
	fmt.Fprint(w, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// promptLine reads one trimmed line. A last line without a newline is
// accepted; EOF with nothing read is an error.
func promptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
