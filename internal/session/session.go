// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKey is the local store key holding the bearer token.
const TokenKey = "access_token"

// Claims are read from the token without verifying its signature. They are
// for display only and never decide whether the user is signed in.
type Claims struct {
	Subject   string
	Username  string
	ExpiresAt time.Time
}

// Session is an authenticated identity.
type Session struct {
	Token  string
	Claims Claims
}

// NewSession builds a Session, decoding claims when the token is a JWT.
func NewSession(token string) *Session {
	s := &Session{Token: token}
	if claims, err := DecodeClaims(token); err == nil {
		s.Claims = claims
	}
	return s
}

// DecodeClaims parses a JWT without verification.
func DecodeClaims(token string) (Claims, error) {
	var mc jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &mc); err != nil {
		return Claims{}, fmt.Errorf("decode token: %w", err)
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	for _, k := range []string{"username", "user_name", "name"} {
		if v, ok := mc[k].(string); ok && v != "" {
			c.Username = v
			break
		}
	}
	if c.Username == "" {
		// SimpleJWT puts the numeric user id in user_id.
		if id, ok := mc["user_id"]; ok {
			c.Username = fmt.Sprintf("user %v", id)
		} else {
			c.Username = c.Subject
		}
	}
	return c, nil
}

// DisplayName is the name shown for the signed-in user.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Claims.Username != "" {
		return s.Claims.Username
	}
	return "signed in"
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim never expire here; the server is the authority.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Claims.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.Claims.ExpiresAt)
}
