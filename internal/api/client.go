// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/model"
)

const (
	// DefaultUserAgent identifies the client to the backend.
	DefaultUserAgent = "ragchat-tui"

	// MaxResponseSize is the maximum accepted response body size.
	MaxResponseSize = 10 * 1024 * 1024
)

// TokenSource supplies the bearer token for a request.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns t.
func (t StaticToken) Token() string { return string(t) }

// Client talks to the chatbot backend.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	userAgent  string
	log        *zap.Logger
}

// New creates a client for baseURL. tokens may be nil for unauthenticated use.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		// No Timeout: requests are bounded by their context only.
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
		log:        zap.NewNop(),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *Client) WithLogger(l *zap.Logger) *Client {
	c.log = logging.OrNop(l)
	return c
}

// BaseURL returns the base URL requests are made against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", creds, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", errors.New("login response carried no access token")
	}
	return resp.Access, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodPost, "/auth/register/", creds, nil)
}

// ListChats returns every chat of the signed-in user with its messages.
func (c *Client) ListChats(ctx context.Context) ([]model.Chat, error) {
	var chats []model.Chat
	if err := c.do(ctx, http.MethodGet, "/chats/", nil, &chats); err != nil {
		return nil, err
	}
	for i := range chats {
		model.EnsureKeys(chats[i].Messages)
	}
	return chats, nil
}

// CreateChat creates a chat with the given title.
func (c *Client) CreateChat(ctx context.Context, title string) (model.Chat, error) {
	var chat model.Chat
	if err := c.do(ctx, http.MethodPost, "/chats/", createChatRequest{Title: title}, &chat); err != nil {
		return model.Chat{}, err
	}
	model.EnsureKeys(chat.Messages)
	return chat, nil
}

// Send submits query to the chat and returns the assistant's reply.
func (c *Client) Send(ctx context.Context, chatID int, query string) (SendResult, error) {
	var res SendResult
	if err := c.do(ctx, http.MethodPost, "/chat/", sendRequest{Query: query, ChatID: chatID}, &res); err != nil {
		return SendResult{}, err
	}
	if res.ChatID == 0 {
		res.ChatID = chatID
	}
	return res, nil
}

// SubmitFeedback records a rating. The response body is ignored.
func (c *Client) SubmitFeedback(ctx context.Context, fb model.Feedback) error {
	return c.do(ctx, http.MethodPost, "/feedback/", fb, nil)
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do sends one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, in != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

// readResponse reads the body, refusing anything over MaxResponseSize.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
