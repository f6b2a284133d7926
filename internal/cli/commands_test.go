// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/apitest"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/storage"
)

type testEnv struct {
	*Env
	srv      *apitest.Server
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	password string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("ada", "lovelace")

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	provider := session.NewProvider(store, nil, logging.Nop())
	client := api.New(srv.BaseURL(), provider)
	provider.SetAuthenticator(client)
	provider.Restore()

	te := &testEnv{
		srv:      srv,
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
		password: "lovelace",
	}
	te.Env = &Env{
		Config:   config.Default(),
		Store:    store,
		Sessions: provider,
		Client:   client,
		Log:      logging.Nop(),
		Out:      te.out,
		ErrOut:   te.errOut,
		In:       strings.NewReader(""),
		Width:    80,
	}
	te.ReadPassword = func(string) (string, error) { return te.password, nil }
	return te
}

// signIn stores a valid token, as a previous login would have.
func (te *testEnv) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, te.Store.Set(session.TokenKey, te.srv.Token("ada")))
	te.Sessions.Restore()
	require.True(t, te.Sessions.Authenticated())
}

func (te *testEnv) run(cmd Command, raw ...string) error {
	te.out.Reset()
	te.errOut.Reset()
	return Run(context.Background(), cmd, Args{Name: cmd.String(), Raw: raw}, te.Env)
}

func (te *testEnv) runJSON(cmd Command, raw ...string) error {
	te.out.Reset()
	return Run(context.Background(), cmd, Args{Name: cmd.String(), Raw: raw, JSON: true}, te.Env)
}

// =============================================================================
// AUTH
// =============================================================================

func TestLoginPersistsSession(t *testing.T) {
	te := newTestEnv(t)

	require.NoError(t, te.run(CmdLogin, "-u", "ada"))
	assert.Contains(t, te.out.String(), "Logged in as ada")

	token, err := te.Store.Get(session.TokenKey)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// A fresh provider on the same store, as the next process would see it.
	next := session.NewProvider(te.Store, nil, nil)
	next.Restore()
	assert.True(t, next.Authenticated())
}

func TestLoginUsernamePrompt(t *testing.T) {
	te := newTestEnv(t)
	te.In = strings.NewReader("ada\n")

	require.NoError(t, te.run(CmdLogin))
	assert.Contains(t, te.errOut.String(), "Username: ")
	assert.True(t, te.Sessions.Authenticated())
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	te := newTestEnv(t)
	te.password = "wrong"

	err := te.run(CmdLogin, "-u", "ada")
	require.Error(t, err)
	assert.Equal(t, "login failed: Invalid credentials", err.Error())
	assert.False(t, te.Sessions.Authenticated())

	var buf bytes.Buffer
	DisplayError(&buf, err)
	assert.Equal(t, "Error: login failed: Invalid credentials\n", buf.String())
}

func TestLoginRequiresBothFields(t *testing.T) {
	te := newTestEnv(t)
	te.password = ""

	err := te.run(CmdLogin, "-u", "ada")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Zero(t, te.srv.Count("POST", "/auth/login/"))
}

func TestRegisterLogsIn(t *testing.T) {
	te := newTestEnv(t)
	te.password = "secret"

	require.NoError(t, te.run(CmdRegister, "--username", "bob"))
	assert.True(t, te.Sessions.Authenticated())
	assert.Equal(t, 1, te.srv.Count("POST", "/auth/register/"))
	assert.Equal(t, 1, te.srv.Count("POST", "/auth/login/"))

	err := te.run(CmdRegister, "bob")
	require.Error(t, err)
	assert.Equal(t, "register failed: Username already exists", err.Error())
}

func TestLogout(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)

	require.NoError(t, te.run(CmdLogout))
	assert.Contains(t, te.out.String(), "Logged out.")
	_, err := te.Store.Get(session.TokenKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, te.run(CmdLogout))
	assert.Contains(t, te.out.String(), "Not logged in.")
}

func TestProtectedCommandsNeedSession(t *testing.T) {
	te := newTestEnv(t)
	for _, cmd := range []Command{CmdChats, CmdNew, CmdAsk, CmdHistory, CmdFeedback, CmdExport, CmdREPL} {
		err := te.run(cmd, "1", "hello")
		assert.ErrorIs(t, err, session.ErrNotAuthenticated, cmd.String())
	}
	assert.Empty(t, te.srv.Requests())
}

func TestWhoami(t *testing.T) {
	te := newTestEnv(t)

	require.NoError(t, te.run(CmdWhoami))
	assert.Contains(t, te.out.String(), "Not logged in.")

	te.signIn(t)
	require.NoError(t, te.run(CmdWhoami))
	assert.Contains(t, te.out.String(), "ada")
	assert.Contains(t, te.out.String(), te.srv.BaseURL())
	assert.Contains(t, te.out.String(), "(in ")

	require.NoError(t, te.runJSON(CmdWhoami))
	var resp struct {
		Success bool       `json:"success"`
		Data    WhoamiData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Authenticated)
	assert.Equal(t, "ada", resp.Data.Username)
	assert.NotNil(t, resp.Data.ExpiresAt)
	assert.False(t, resp.Data.Expired)
	left, err := time.ParseDuration(resp.Data.ExpiresIn)
	require.NoError(t, err)
	assert.Greater(t, left, time.Duration(0))
}

// =============================================================================
// CHATS
// =============================================================================

func TestChatsList(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)

	require.NoError(t, te.run(CmdChats))
	assert.Contains(t, te.out.String(), "No chats yet")

	te.srv.AddChat("ada", "T1", model.Message{IsUser: true, Content: "hi"})
	te.srv.AddChat("someone-else", "Hidden")
	require.NoError(t, te.run(CmdChats))
	assert.Contains(t, te.out.String(), "T1")
	assert.Contains(t, te.out.String(), "1 messages")
	assert.NotContains(t, te.out.String(), "Hidden")
}

func TestChatsJSON(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "T1")

	require.NoError(t, te.runJSON(CmdChats))
	var resp struct {
		Success bool         `json:"success"`
		Data    []model.Chat `json:"data"`
		Command string       `json:"command"`
	}
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "chats", resp.Command)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "T1", resp.Data[0].Title)
}

func TestChatsServerError(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.SetFail("GET", "/chats/", 500)

	err := te.run(CmdChats)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "list chats failed: "))
}

func TestNewChat(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)

	require.NoError(t, te.run(CmdNew, "--title", "Indexes"))
	assert.Contains(t, te.out.String(), "Created chat 1: Indexes")

	require.NoError(t, te.run(CmdNew))
	assert.Contains(t, te.out.String(), model.DefaultChatTitle)
	assert.Equal(t, 2, te.srv.Count("POST", "/chats/"))
}

func TestAsk(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	c := te.srv.AddChat("ada", "Keys")
	te.srv.Reply = func(q string) (string, bool) {
		return "A primary key uniquely identifies a row.", true
	}

	require.NoError(t, te.run(CmdAsk, "--chat", "1", "What", "is", "a", "primary", "key?"))
	assert.Contains(t, te.out.String(), "uniquely identifies a row")

	got, ok := te.srv.Chat(c.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "What is a primary key?", got.Messages[0].Content)
	assert.True(t, got.Messages[0].IsUser)
}

func TestAskWithoutChatReportsNewChat(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)

	require.NoError(t, te.run(CmdAsk, "hello"))
	assert.Contains(t, te.out.String(), apitest.FallbackReply)
	assert.Contains(t, te.errOut.String(), "(chat 1)")
}

func TestAskReadsPipedQuery(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "Keys")
	te.In = strings.NewReader("What is NoSQL?\n")

	require.NoError(t, te.run(CmdAsk, "--chat", "1"))
	got, _ := te.srv.Chat(1)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "What is NoSQL?", got.Messages[0].Content)
}

func TestAskBlankQueryNeverSends(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.In = strings.NewReader("   \n")

	err := te.run(CmdAsk, "--chat", "1")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Zero(t, te.srv.Count("POST", "/chat/"))
}

func TestAskJSON(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "Keys")

	require.NoError(t, te.runJSON(CmdAsk, "--chat", "1", "hi"))
	var resp struct {
		Data AskData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.ChatID)
	assert.Equal(t, "hi", resp.Data.Query)
	assert.Equal(t, apitest.FallbackReply, resp.Data.Response)
}

func TestHistory(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	up := int(model.RatingUp)
	te.srv.AddChat("ada", "Keys",
		model.Message{IsUser: true, Content: "What is a key?"},
		model.Message{IsUser: false, Content: "Something unique.", Feedback: &up},
		model.Message{IsUser: false, Content: "Not sure.", NeedsReview: true},
	)

	require.NoError(t, te.run(CmdHistory, "--chat", "1"))
	out := te.out.String()
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "You #1")
	assert.Contains(t, out, "Assistant #2")
	assert.Contains(t, out, "👍")
	assert.Contains(t, out, "needs review")
	assert.Less(t, strings.Index(out, "What is a key?"), strings.Index(out, "Something unique."))

	err := te.run(CmdHistory, "99")
	require.Error(t, err)
	assert.Equal(t, "chat 99 not found", err.Error())

	err = te.run(CmdHistory)
	var usage *UsageError
	assert.ErrorAs(t, err, &usage)
}

func TestFeedback(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)

	require.NoError(t, te.run(CmdFeedback, "7", "up"))
	require.NoError(t, te.run(CmdFeedback, "8", "-"))
	assert.Equal(t, []model.Feedback{
		{MessageID: 7, Rating: model.RatingUp},
		{MessageID: 8, Rating: model.RatingDown},
	}, te.srv.Feedback())

	var usage *UsageError
	assert.ErrorAs(t, te.run(CmdFeedback, "7", "sideways"), &usage)
	assert.ErrorAs(t, te.run(CmdFeedback, "7"), &usage)
	assert.ErrorAs(t, te.run(CmdFeedback, "x", "up"), &usage)
	assert.Len(t, te.srv.Feedback(), 2)
}

func TestExpiredTokenHint(t *testing.T) {
	te := newTestEnv(t)
	require.NoError(t, te.Store.Set(session.TokenKey, "not-a-valid-token"))
	te.Sessions.Restore()

	err := te.run(CmdChats)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))

	var buf bytes.Buffer
	DisplayError(&buf, err)
	assert.Contains(t, buf.String(), "ragchat login")
}

// =============================================================================
// CONFIG AND VERSION
// =============================================================================

func TestConfigCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RAGCHAT_HOME", home)
	var out bytes.Buffer

	args := func(raw ...string) Args { return Args{Name: "config", Raw: raw} }

	require.NoError(t, RunConfig(args("init"), config.Default(), &out))
	path := filepath.Join(home, "config.toml")
	assert.FileExists(t, path)
	assert.Error(t, RunConfig(args("init"), config.Default(), &out))
	require.NoError(t, RunConfig(args("init", "--force"), config.Default(), &out))

	require.NoError(t, RunConfig(args("set", "ui.theme", "light"), config.Default(), &out))
	require.NoError(t, RunConfig(args("set", "ui.mouse", "off"), config.Default(), &out))

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.False(t, cfg.UI.Mouse)

	var usage *UsageError
	assert.ErrorAs(t, RunConfig(args("set", "ui.theme", "purple"), config.Default(), &out), &usage)
	assert.ErrorAs(t, RunConfig(args("set", "ui.mouse", "maybe"), config.Default(), &out), &usage)
	assert.ErrorAs(t, RunConfig(args("set", "nope.key", "x"), config.Default(), &out), &usage)
	assert.ErrorAs(t, RunConfig(args("frobnicate"), config.Default(), &out), &usage)

	out.Reset()
	require.NoError(t, RunConfig(args("get", "ui.theme"), cfg, &out))
	assert.Equal(t, "light\n", out.String())

	out.Reset()
	require.NoError(t, RunConfig(args("show"), cfg, &out))
	assert.Contains(t, out.String(), "base_url")

	out.Reset()
	require.NoError(t, RunConfig(args("path"), cfg, &out))
	assert.Contains(t, out.String(), path)
}

func TestConfigSetJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ragchat.json")
	var out bytes.Buffer

	require.NoError(t, RunConfig(Args{ConfigPath: path, Raw: []string{"set", "api.base_url", "https://chat.example.com/api"}}, config.Default(), &out))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://chat.example.com/api")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunVersion(Args{}, &out))
	assert.Contains(t, out.String(), "ragchat version "+Version)

	out.Reset()
	require.NoError(t, RunVersion(Args{JSON: true}, &out))
	var resp struct {
		Data VersionData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(io.Reader(&out)).Decode(&resp))
	assert.Equal(t, Version, resp.Data.Version)
}

// =============================================================================
// REPL
// =============================================================================

// scriptedInput feeds fixed lines to the REPL, then io.EOF.
type scriptedInput struct {
	lines   []string
	history []string
	closed  bool
}

func (s *scriptedInput) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedInput) AppendHistory(line string) { s.history = append(s.history, line) }

func (s *scriptedInput) Close() error {
	s.closed = true
	return nil
}

func (te *testEnv) script(lines ...string) *scriptedInput {
	in := &scriptedInput{lines: lines}
	te.NewLineReader = func() (LineReader, error) { return in, nil }
	return in
}

func TestREPLSession(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "T1")
	in := te.script("What is SQL?", "", "/up", "/new Indexes", "/history", "/quit", "never read")

	require.NoError(t, te.run(CmdREPL))
	out := te.out.String()

	assert.Contains(t, out, "Signed in as ada")
	assert.Contains(t, out, "Chat 1: T1")
	assert.Contains(t, out, apitest.FallbackReply)
	assert.Contains(t, out, "Rated message 2")
	assert.Contains(t, out, "Created chat 2: Indexes")
	assert.Contains(t, out, "No messages yet.")

	assert.Equal(t, 1, te.srv.Count("POST", "/chat/"))
	assert.Equal(t, []model.Feedback{{MessageID: 2, Rating: model.RatingUp}}, te.srv.Feedback())
	assert.Equal(t, []string{"never read"}, in.lines)
	assert.NotContains(t, in.history, "")
	assert.True(t, in.closed)
}

func TestREPLFirstQuestionStartsChat(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.script("hello", "/down")

	require.NoError(t, te.run(CmdREPL))
	assert.Contains(t, te.out.String(), "No chat selected")

	c, ok := te.srv.Chat(1)
	require.True(t, ok)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, []model.Feedback{{MessageID: 2, Rating: model.RatingDown}}, te.srv.Feedback())
}

func TestREPLSendFailure(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "T1")
	te.srv.SetFail("POST", "/chat/", 500)
	te.script("hello", "/up", "/bogus", "/use 42")

	require.NoError(t, te.run(CmdREPL))
	out := te.out.String()
	assert.Contains(t, out, model.SendErrorText)
	assert.Contains(t, out, "no saved reply to rate yet")
	assert.Contains(t, out, "unknown command /bogus")
	assert.Contains(t, out, "chat 42 not found")
	assert.Empty(t, te.srv.Feedback())
}

func TestREPLNeedsLineReader(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.NewLineReader = func() (LineReader, error) {
		return nil, &TTYRequiredError{Operation: "run the REPL"}
	}

	err := te.run(CmdREPL)
	var tty *TTYRequiredError
	assert.ErrorAs(t, err, &tty)
	assert.Empty(t, te.srv.Requests())
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportToDirectory(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "Keys",
		model.Message{IsUser: true, Content: "What is a key?"},
		model.Message{Content: "Something unique."},
	)
	dir := t.TempDir()

	require.NoError(t, te.run(CmdExport, "--chat", "1", "--format", "html", "-o", dir))
	assert.Contains(t, te.out.String(), "Exported chat 1 to "+dir)

	matches, err := filepath.Glob(filepath.Join(dir, "chat_1_Keys_*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Something unique.")
}

func TestExportToStdout(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "Keys", model.Message{IsUser: true, Content: "hi"})

	require.NoError(t, te.run(CmdExport, "1", "--format", "json", "-o", "-"))
	var c model.Chat
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &c))
	assert.Equal(t, "Keys", c.Title)
	require.Len(t, c.Messages, 1)
}

func TestExportErrors(t *testing.T) {
	te := newTestEnv(t)
	te.signIn(t)
	te.srv.AddChat("ada", "Empty")

	var usage *UsageError
	assert.ErrorAs(t, te.run(CmdExport, "1", "--format", "pdf"), &usage)
	assert.ErrorAs(t, te.run(CmdExport), &usage)

	err := te.run(CmdExport, "1", "-o", "-")
	require.Error(t, err)
	assert.Equal(t, "export failed: chat has no messages yet", err.Error())
}
