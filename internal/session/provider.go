// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/storage"
)

// ErrNotAuthenticated is returned by operations that need a session.
var ErrNotAuthenticated = errors.New("not signed in")

// Authenticator is the part of the API client the provider uses.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, creds api.Credentials) error
}

// Provider owns the session state.
type Provider struct {
	mu      sync.RWMutex
	store   storage.Store
	auth    Authenticator
	log     *zap.Logger
	session *Session
	loading bool
}

// NewProvider creates a provider in the loading state. Call Restore
// before reading Authenticated.
func NewProvider(store storage.Store, auth Authenticator, log *zap.Logger) *Provider {
	return &Provider{
		store:   store,
		auth:    auth,
		log:     logging.OrNop(log),
		loading: true,
	}
}

// SetAuthenticator sets the client used for login and register. It lets
// the API client be built with the provider as its TokenSource.
func (p *Provider) SetAuthenticator(auth Authenticator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.auth = auth
}

// Restore reads the stored token. A present token is trusted as-is; the
// server is not asked whether it is still valid. Loading is false after.
func (p *Provider) Restore() {
	token := p.readToken()

	p.mu.Lock()
	defer p.mu.Unlock()
	if token != "" {
		p.session = NewSession(token)
	} else {
		p.session = nil
	}
	p.loading = false
	p.log.Debug("session restored", zap.Bool("authenticated", token != ""))
}

// Loading reports whether Restore has not completed yet.
func (p *Provider) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Authenticated reports whether a session is present.
func (p *Provider) Authenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session != nil
}

// Session returns a copy of the current session, or nil.
func (p *Provider) Session() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil {
		return nil
	}
	cp := *p.session
	return &cp
}

// Token implements api.TokenSource. The store is read on every call.
func (p *Provider) Token() string {
	return p.readToken()
}

func (p *Provider) readToken() string {
	token, err := p.store.Get(TokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("read token", zap.Error(err))
		}
		return ""
	}
	return token
}

// Login submits credentials. On success the token is persisted first,
// then the in-memory session is set. Errors are returned unchanged.
func (p *Provider) Login(ctx context.Context, username, password string) error {
	p.mu.RLock()
	auth := p.auth
	p.mu.RUnlock()
	if auth == nil {
		return errors.New("session: no authenticator configured")
	}

	token, err := auth.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		p.log.Info("login failed", zap.String("username", username), zap.Error(err))
		return err
	}
	if err := p.store.Set(TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	p.mu.Lock()
	p.session = NewSession(token)
	p.loading = false
	p.mu.Unlock()

	p.log.Info("logged in", zap.String("username", username))
	return nil
}

// Register creates the account and then logs in with the same credentials.
func (p *Provider) Register(ctx context.Context, username, password string) error {
	p.mu.RLock()
	auth := p.auth
	p.mu.RUnlock()
	if auth == nil {
		return errors.New("session: no authenticator configured")
	}

	if err := auth.Register(ctx, api.Credentials{Username: username, Password: password}); err != nil {
		p.log.Info("register failed", zap.String("username", username), zap.Error(err))
		return err
	}
	return p.Login(ctx, username, password)
}

// Logout clears the persisted token and the in-memory session.
func (p *Provider) Logout() error {
	err := p.store.Remove(TokenKey)

	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()

	if err != nil {
		p.log.Warn("remove token", zap.Error(err))
		return fmt.Errorf("clear token: %w", err)
	}
	p.log.Info("logged out")
	return nil
}

// Sync re-reads the store and reports whether the authenticated state
// changed. Used when another process logs in or out.
func (p *Provider) Sync() bool {
	token := p.readToken()

	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.session != nil
	switch {
	case token == "":
		p.session = nil
	case p.session == nil || p.session.Token != token:
		p.session = NewSession(token)
	}
	return was != (p.session != nil)
}

// =============================================================================
// WATCHING
// =============================================================================

// ChangedMsg is sent when an external change flipped the authenticated state.
type ChangedMsg struct {
	Authenticated bool
}

// Follow watches the store and returns a channel that receives the new
// authenticated state each time an external change flips it.
func (p *Provider) Follow(ctx context.Context) (<-chan bool, error) {
	changes, err := storage.Watch(ctx, p.store, storage.DefaultDebounce, p.log)
	if err != nil {
		return nil, err
	}
	out := make(chan bool)
	go func() {
		defer close(out)
		for range changes {
			if !p.Sync() {
				continue
			}
			select {
			case out <- p.Authenticated():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// WaitForChange returns a command that delivers the next value from ch as
// a ChangedMsg. It returns nil once ch is closed.
func WaitForChange(ch <-chan bool) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		authed, ok := <-ch
		if !ok {
			return nil
		}
		return ChangedMsg{Authenticated: authed}
	}
}

// ExpiresIn returns the time until the session token expires, or 0 if it
// carries no expiry.
func (p *Provider) ExpiresIn(now time.Time) time.Duration {
	s := p.Session()
	if s == nil || s.Claims.ExpiresAt.IsZero() {
		return 0
	}
	return s.Claims.ExpiresAt.Sub(now)
}
