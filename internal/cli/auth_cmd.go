// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, register, logout and whoami.
//
// Examples:
//
//	ragchat login -u alice        Prompt for the password and log in
//	ragchat register -u bob       Create the account, then log in
//	ragchat whoami --json         Session status for scripts
package cli

import (
	"context"
	"fmt"
	"time"
)

// runLogin logs in, or registers and then logs in. Both fields must be
// non-empty before the network is touched.
func (e *Env) runLogin(ctx context.Context, args Args, register bool) error {
	p := NewArgParser(args.Raw)
	action := "login"
	if register {
		action = "register"
	}

	username := p.FirstFlag("u", "username")
	if username == "" {
		username = p.Positional(0)
	}
	if username == "" {
		var err error
		if username, err = promptLine(e.reader(), e.ErrOut, "Username: "); err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, err := e.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	if username == "" || password == "" {
		return usageErrorf("username and password are required")
	}

	if register {
		err = e.Sessions.Register(ctx, username, password)
	} else {
		err = e.Sessions.Login(ctx, username, password)
	}
	if err != nil {
		return failed(action, err)
	}

	e.printf("%s Logged in as %s\n", SuccessStyle.Render("✓"), e.Sessions.Session().DisplayName())
	return nil
}

func (e *Env) runLogout() error {
	if !e.Sessions.Authenticated() {
		e.println("Not logged in.")
		return nil
	}
	if err := e.Sessions.Logout(); err != nil {
		return failed("logout", err)
	}
	e.println("Logged out.")
	return nil
}

// WhoamiData is the JSON shape of whoami.
type WhoamiData struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired,omitempty"`
	ExpiresIn     string     `json:"expires_in,omitempty"`
	API           string     `json:"api"`
	Store         string     `json:"store"`
}

func (e *Env) runWhoami(args Args) error {
	return OutputJSON(e.Out, args.JSON, "whoami", func() (interface{}, error) {
		data := WhoamiData{
			Authenticated: e.Sessions.Authenticated(),
			API:           e.Client.BaseURL(),
			Store:         e.Store.Path(),
		}
		if s := e.Sessions.Session(); s != nil {
			data.Username = s.DisplayName()
			data.Subject = s.Claims.Subject
			if !s.Claims.ExpiresAt.IsZero() {
				exp := s.Claims.ExpiresAt
				data.ExpiresAt = &exp
			}
			now := time.Now()
			data.Expired = s.Expired(now)
			if left := e.Sessions.ExpiresIn(now); left > 0 {
				data.ExpiresIn = left.Round(time.Second).String()
			}
		}
		if !args.JSON {
			e.printWhoami(data)
		}
		return data, nil
	})
}

func (e *Env) printWhoami(d WhoamiData) {
	if !d.Authenticated {
		e.println("Not logged in.")
	} else {
		e.printf("%s%s\n", RenderLabel("User"), ValueStyle.Render(d.Username))
		if d.Subject != "" && d.Subject != d.Username {
			e.printf("%s%s\n", RenderLabel("Subject"), d.Subject)
		}
		switch {
		case d.ExpiresAt == nil:
			e.printf("%s%s\n", RenderLabel("Expires"), DimStyle.Render("no expiry in token"))
		case d.Expired:
			e.printf("%s%s\n", RenderLabel("Expires"), ErrorStyle.Render("expired "+d.ExpiresAt.Local().Format(time.RFC1123)))
		default:
			e.printf("%s%s %s\n", RenderLabel("Expires"), d.ExpiresAt.Local().Format(time.RFC1123),
				DimStyle.Render("(in "+d.ExpiresIn+")"))
		}
	}
	e.printf("%s%s\n", RenderLabel("API"), d.API)
	e.printf("%s%s\n", RenderLabel("Store"), DimStyle.Render(d.Store))
}
