// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest runs an in-memory chatbot backend for tests.
//
// It serves the same endpoints as the real backend under /api, issues
// HS256 JWTs on login, and records every request so tests can assert on
// what the client sent (for example, whether an Authorization header was
// present).
//
//	srv := apitest.New(t)
//	srv.AddUser("ada", "pw")
//	client := api.New(srv.BaseURL(), tokens)
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/ragchat/internal/model"
)

// FallbackReply is returned when Reply is unset or finds no answer.
const FallbackReply = "Sorry, I can only answer questions related to SQL and NoSQL databases."

var signingKey = []byte("apitest-signing-key")

// Request is one recorded request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

// Server is a fake backend. All exported fields may be changed between
// requests; they are read under the server lock.
type Server struct {
	// Reply answers a query. ok=false yields FallbackReply with needs_review.
	Reply func(query string) (answer string, ok bool)

	// Fail maps "METHOD /path/" to a status code the endpoint returns instead.
	Fail map[string]int

	// SendGate, when set, blocks POST /chat/ until a value is received.
	SendGate chan struct{}

	mu       sync.Mutex
	srv      *httptest.Server
	users    map[string]string // username -> password
	chats    []*chatRecord
	nextChat int
	nextMsg  int
	requests []Request
	feedback []model.Feedback
}

type chatRecord struct {
	owner string
	chat  model.Chat
}

// New starts a server and registers its shutdown with t.
func New(t testing.TB) *Server {
	s := &Server{
		Fail:     make(map[string]int),
		users:    make(map[string]string),
		nextChat: 1,
		nextMsg:  1,
	}
	s.srv = httptest.NewServer(s.router())
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login/", s.handleLogin)
		r.Post("/auth/register/", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/chats/", s.handleListChats)
			r.Post("/chats/", s.handleCreateChat)
			r.Post("/chat/", s.handleChat)
			r.Post("/feedback/", s.handleFeedback)
		})
	})
	return r
}

// BaseURL returns the API base, e.g. http://127.0.0.1:1234/api.
func (s *Server) BaseURL() string {
	return s.srv.URL + "/api"
}

// =============================================================================
// SEEDING AND INSPECTION
// =============================================================================

// AddUser registers a user directly.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// AddChat creates a chat for owner with the given messages. Messages get
// server IDs assigned.
func (s *Server) AddChat(owner, title string, msgs ...model.Message) model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addChatLocked(owner, title, msgs...)
}

func (s *Server) addChatLocked(owner, title string, msgs ...model.Message) model.Chat {
	c := model.Chat{ID: s.nextChat, Title: title, Messages: []model.Message{}}
	s.nextChat++
	for _, m := range msgs {
		c.Messages = append(c.Messages, s.stampLocked(m))
	}
	s.chats = append(s.chats, &chatRecord{owner: owner, chat: c})
	return c.Clone()
}

func (s *Server) stampLocked(m model.Message) model.Message {
	m.ID = model.IntPtr(s.nextMsg)
	s.nextMsg++
	m.Key = ""
	if m.Timestamp.IsZero() {
		m.Timestamp = model.Time{Time: time.Now().UTC()}
	}
	return m
}

// Token returns a signed token for username, as login would.
func (s *Server) Token(username string) string {
	claims := jwt.MapClaims{
		"sub":      username,
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return tok
}

// Requests returns a copy of all requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == "/api"+path {
			n++
		}
	}
	return n
}

// Feedback returns all recorded feedback submissions.
func (s *Server) Feedback() []model.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Feedback, len(s.feedback))
	copy(out, s.feedback)
	return out
}

// Chat returns the server's copy of chat id.
func (s *Server) Chat(id int) (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.chats {
		if rec.chat.ID == id {
			return rec.chat.Clone(), true
		}
	}
	return model.Chat{}, false
}

// SetFail makes "METHOD path" return status (0 clears it).
func (s *Server) SetFail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.Fail, key)
		return
	}
	s.Fail[key] = status
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type ctxUser struct{}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = readCloser(body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		status, failing := s.Fail[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		s.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		tok, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return signingKey, nil
		})
		if err != nil || !tok.Valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		sub, _ := tok.Claims.GetSubject()
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), sub)))
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	s.mu.Lock()
	pw, ok := s.users[c.Username]
	s.mu.Unlock()
	if !ok || pw != c.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": s.Token(c.Username), "refresh": "unused"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" || c.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[c.Username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username already exists"})
		return
	}
	s.users[c.Username] = c.Password
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	s.mu.Lock()
	out := []model.Chat{}
	for _, rec := range s.chats {
		if rec.owner == user {
			out = append(out, rec.chat.Clone())
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Title == "" {
		req.Title = model.DefaultChatTitle
	}
	s.mu.Lock()
	c := s.addChatLocked(userFrom(r.Context()), req.Title)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query  string `json:"query"`
		ChatID int    `json:"chat_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	s.mu.Lock()
	gate := s.SendGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	user := userFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *chatRecord
	if req.ChatID == 0 {
		s.addChatLocked(user, model.DefaultChatTitle)
		rec = s.chats[len(s.chats)-1]
	} else {
		for _, c := range s.chats {
			if c.chat.ID == req.ChatID && c.owner == user {
				rec = c
			}
		}
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	answer, ok := FallbackReply, false
	if s.Reply != nil {
		if a, found := s.Reply(req.Query); found {
			answer, ok = a, true
		}
	}

	rec.chat.Messages = append(rec.chat.Messages,
		s.stampLocked(model.Message{IsUser: true, Content: req.Query}),
		s.stampLocked(model.Message{IsUser: false, Content: answer, NeedsReview: !ok}),
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{"response": answer, "chat_id": rec.chat.ID})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb model.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, fb)
	for _, rec := range s.chats {
		for i := range rec.chat.Messages {
			if id := rec.chat.Messages[i].ID; id != nil && *id == fb.MessageID {
				rating := int(fb.Rating)
				rec.chat.Messages[i].Feedback = &rating
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
