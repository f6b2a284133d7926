// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragchat/internal/apitest"
	"github.com/jeranaias/ragchat/internal/model"
)

// mutableToken mimics a token read from local storage on every call.
type mutableToken struct {
	mu  sync.Mutex
	tok string
}

func (m *mutableToken) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

func (m *mutableToken) set(t string) {
	m.mu.Lock()
	m.tok = t
	m.mu.Unlock()
}

func TestLogin_ReturnsAccessToken(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "lovelace")
	c := New(srv.BaseURL(), nil)

	tok, err := c.Login(context.Background(), Credentials{Username: "ada", Password: "lovelace"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/auth/login/", reqs[0].Path)
	assert.JSONEq(t, `{"username":"ada","password":"lovelace"}`, reqs[0].Body)
	assert.Empty(t, reqs[0].Authorization, "no token, no header")
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "lovelace")
	c := New(srv.BaseURL(), nil)

	_, err := c.Login(context.Background(), Credentials{Username: "ada", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", ServerMessage(err))
	assert.Equal(t, "Error: Invalid credentials", UserMessage(err))
}

func TestRegister_DuplicateUser(t *testing.T) {
	srv := apitest.New(t)
	c := New(srv.BaseURL(), nil)
	creds := Credentials{Username: "grace", Password: "hopper"}

	require.NoError(t, c.Register(context.Background(), creds))
	err := c.Register(context.Background(), creds)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Username already exists", apiErr.Message)
}

func TestTokenReadOnEveryCall(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "pw")
	tokens := &mutableToken{}
	c := New(srv.BaseURL(), tokens)

	_, err := c.ListChats(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	tok := srv.Token("ada")
	tokens.set(tok)
	_, err = c.ListChats(context.Background())
	require.NoError(t, err)

	tokens.set("")
	_, err = c.ListChats(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	reqs := srv.Requests()
	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[0].Authorization)
	assert.Equal(t, "Bearer "+tok, reqs[1].Authorization)
	assert.Empty(t, reqs[2].Authorization, "cleared token sends no header")
}

func TestChatsAndSend(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "pw")
	srv.AddChat("ada", "T1")
	srv.Reply = func(q string) (string, bool) {
		if strings.Contains(q, "primary key") {
			return "A primary key uniquely identifies a row.", true
		}
		return "", false
	}
	c := New(srv.BaseURL(), StaticToken(srv.Token("ada")))
	ctx := context.Background()

	chats, err := c.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "T1", chats[0].Title)
	assert.Empty(t, chats[0].Messages)

	created, err := c.CreateChat(ctx, model.DefaultChatTitle)
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)
	assert.Equal(t, "New Chat", created.Title)

	res, err := c.Send(ctx, created.ID, "What is a primary key?")
	require.NoError(t, err)
	assert.Equal(t, "A primary key uniquely identifies a row.", res.Response)
	assert.Equal(t, created.ID, res.ChatID)

	res, err = c.Send(ctx, created.ID, "weather?")
	require.NoError(t, err)
	assert.Equal(t, apitest.FallbackReply, res.Response)

	chats, err = c.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	msgs := chats[1].Messages
	require.Len(t, msgs, 4)
	assert.True(t, msgs[0].IsUser)
	assert.False(t, msgs[1].IsUser)
	assert.True(t, msgs[3].NeedsReview)
	for _, m := range msgs {
		assert.NotNil(t, m.ID)
		assert.NotEmpty(t, m.Key)
	}
}

func TestSend_WireFormat(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "pw")
	chat := srv.AddChat("ada", "T")
	c := New(srv.BaseURL(), StaticToken(srv.Token("ada")))

	_, err := c.Send(context.Background(), chat.ID, "hi")
	require.NoError(t, err)

	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "/api/chat/", last.Path)
	assert.JSONEq(t, `{"query":"hi","chat_id":1}`, last.Body)
}

func TestSubmitFeedback(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "pw")
	chat := srv.AddChat("ada", "T", model.Message{IsUser: false, Content: "answer"})
	c := New(srv.BaseURL(), StaticToken(srv.Token("ada")))

	fb, err := model.FeedbackFor(chat.Messages[0], model.RatingDown)
	require.NoError(t, err)
	require.NoError(t, c.SubmitFeedback(context.Background(), fb))

	got := srv.Feedback()
	require.Len(t, got, 1)
	assert.Equal(t, *chat.Messages[0].ID, got[0].MessageID)
	assert.Equal(t, model.RatingDown, got[0].Rating)
}

func TestServerError_NoMessage(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "pw")
	srv.SetFail(http.MethodPost, "/chat/", http.StatusInternalServerError)
	c := New(srv.BaseURL(), StaticToken(srv.Token("ada")))

	_, err := c.Send(context.Background(), 1, "hi")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestUserMessage_Fallback(t *testing.T) {
	assert.Equal(t, "Error: Failed", UserMessage(errors.New("connection refused")))
	assert.Equal(t, "Error: Failed", UserMessage(&APIError{Status: 500}))
}

func TestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := New(ts.URL+"/api/", StaticToken("abc")).WithUserAgent("ragchat-test")
	assert.Equal(t, ts.URL+"/api", c.BaseURL())
	require.NoError(t, c.SubmitFeedback(context.Background(), model.Feedback{MessageID: 1, Rating: 1}))

	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "ragchat-test", got.Get("User-Agent"))
}

func TestResponseTooLarge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		chunk := []byte(strings.Repeat("x", 1<<20))
		for i := 0; i < 11; i++ {
			w.Write(chunk)
		}
	}))
	defer ts.Close()

	_, err := New(ts.URL, nil).ListChats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestContextCancel(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ada", "pw")
	srv.SendGate = make(chan struct{})
	defer close(srv.SendGate)
	c := New(srv.BaseURL(), StaticToken(srv.Token("ada")))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Send(ctx, 1, "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
