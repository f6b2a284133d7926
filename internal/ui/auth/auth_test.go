// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/apitest"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/storage"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

type fakeAuth struct {
	loginErr    error
	registerErr error
	logins      []string
	registers   []string
}

func (f *fakeAuth) Login(_ context.Context, u, p string) error {
	f.logins = append(f.logins, u+":"+p)
	return f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, u, p string) error {
	f.registers = append(f.registers, u+":"+p)
	return f.registerErr
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, t tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: t})
}

func fill(m Model, user, pass string) Model {
	m = typeText(m, user)
	m, _ = press(m, tea.KeyTab)
	return typeText(m, pass)
}

func TestSubmit_RequiresBothFields(t *testing.T) {
	fa := &fakeAuth{}
	m := New(fa, styles.NewTheme("dark"), nil)

	m = typeText(m, "ada")
	m, _ = press(m, tea.KeyTab)
	m, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.Submitting())
	assert.Empty(t, fa.logins)
}

func TestLogin_Success(t *testing.T) {
	fa := &fakeAuth{}
	m := New(fa, styles.NewTheme("dark"), nil)
	m = fill(m, "ada", "lovelace")

	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.Submitting())

	res := cmd()
	assert.Equal(t, ResultMsg{Mode: ModeLogin}, res)
	assert.Equal(t, []string{"ada:lovelace"}, fa.logins)

	m, cmd = m.Update(res)
	require.NotNil(t, cmd)
	assert.IsType(t, AuthenticatedMsg{}, cmd())
	assert.False(t, m.Submitting())
}

func TestRegister_ToggleMode(t *testing.T) {
	fa := &fakeAuth{}
	m := New(fa, styles.NewTheme("dark"), nil)
	m, _ = press(m, tea.KeyCtrlT)
	assert.Equal(t, ModeRegister, m.Mode())
	assert.Contains(t, m.View(), "Register")

	m = fill(m, "grace", "hopper")
	_, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, ResultMsg{Mode: ModeRegister}, cmd())
	assert.Equal(t, []string{"grace:hopper"}, fa.registers)
	assert.Empty(t, fa.logins)
}

func TestFailure_ShowsBlockingAlert(t *testing.T) {
	fa := &fakeAuth{loginErr: errors.New("dial tcp: refused")}
	m := New(fa, styles.NewTheme("dark"), nil)
	m = fill(m, "ada", "x")
	m, cmd := press(m, tea.KeyEnter)
	m, _ = m.Update(cmd())

	require.True(t, m.AlertVisible())
	assert.Equal(t, "Error: Failed", m.AlertMessage())
	assert.Contains(t, m.View(), "Error: Failed")

	// Keys do not reach the form while the alert is open.
	m = typeText(m, "zzz")
	m, cmd = press(m, tea.KeyEnter)
	assert.False(t, m.AlertVisible())
	require.NotNil(t, cmd)

	m, cmd = press(m, tea.KeyEnter)
	require.NotNil(t, cmd, "form submits again after dismissal")
	assert.Equal(t, []string{"ada:x"}, fa.logins)
	cmd()
	assert.Equal(t, []string{"ada:x", "ada:x"}, fa.logins, "typed text while blocked was dropped")
}

func TestView_Title(t *testing.T) {
	m := New(&fakeAuth{}, styles.NewTheme("dark"), nil)
	m.SetSize(100, 30)
	view := m.View()
	assert.Contains(t, view, Title)
	assert.Contains(t, view, "Username")
	assert.Contains(t, view, "Password")
}

func TestPasswordIsMasked(t *testing.T) {
	m := New(&fakeAuth{}, styles.NewTheme("dark"), nil)
	m = fill(m, "ada", "secret")
	assert.NotContains(t, m.View(), "secret")
}

func TestProviderIntegration_ServerMessage(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "lovelace")
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	p := session.NewProvider(store, nil, nil)
	p.SetAuthenticator(api.New(srv.BaseURL(), p))
	p.Restore()

	m := New(p, styles.NewTheme("dark"), nil)
	m = fill(m, "ada", "wrong")
	m, cmd := press(m, tea.KeyEnter)
	m, _ = m.Update(cmd())
	assert.Equal(t, "Error: Invalid credentials", m.AlertMessage())
	assert.False(t, p.Authenticated())

	// Focus stays on the password after dismissal.
	m, _ = press(m, tea.KeyEsc)
	for i := 0; i < len("wrong"); i++ {
		m, _ = press(m, tea.KeyBackspace)
	}
	m = typeText(m, "lovelace")
	m, cmd = press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	assert.IsType(t, AuthenticatedMsg{}, cmd())
	assert.True(t, p.Authenticated())
}
