// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatstore holds the client's in-memory view of the user's chats
// and which one is selected.
//
// The server is authoritative. Replace installs a freshly fetched list;
// local appends exist only so a reply shows up before the next reload.
package chatstore

import (
	"sync"

	"github.com/jeranaias/ragchat/internal/model"
)

// Store is safe for concurrent use. Chats returned are copies.
type Store struct {
	mu      sync.RWMutex
	chats   []model.Chat
	current int // 0 when nothing is selected
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Replace installs the list as fetched, preserving server order. A current
// selection that no longer exists is kept as an ID only; Current then
// returns false until the chat appears.
func (s *Store) Replace(chats []model.Chat) {
	cp := make([]model.Chat, len(chats))
	for i, c := range chats {
		cp[i] = c.Clone()
		model.EnsureKeys(cp[i].Messages)
	}

	s.mu.Lock()
	s.chats = cp
	s.mu.Unlock()
}

// Chats returns a copy of all chats.
func (s *Store) Chats() []model.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Chat, len(s.chats))
	for i, c := range s.chats {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of chats.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// Get returns the chat with the given ID.
func (s *Store) Get(id int) (model.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.chats[i].Clone(), true
	}
	return model.Chat{}, false
}

// Upsert replaces the chat with the same ID, or appends it.
func (s *Store) Upsert(c model.Chat) {
	c = c.Clone()
	model.EnsureKeys(c.Messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(c.ID); i >= 0 {
		s.chats[i] = c
		return
	}
	s.chats = append(s.chats, c)
}

// SetCurrent selects a chat by ID. Zero clears the selection.
func (s *Store) SetCurrent(id int) {
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
}

// CurrentID returns the selected chat ID, or 0.
func (s *Store) CurrentID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Current returns the selected chat if it is in the list.
func (s *Store) Current() (model.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == 0 {
		return model.Chat{}, false
	}
	if i := s.indexLocked(s.current); i >= 0 {
		return s.chats[i].Clone(), true
	}
	return model.Chat{}, false
}

// SelectFirst selects the first chat when nothing is selected. It reports
// whether the selection changed.
func (s *Store) SelectFirst() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != 0 || len(s.chats) == 0 {
		return false
	}
	s.current = s.chats[0].ID
	return true
}

// AppendMessage adds msg to the chat with chatID. Results of a send are
// always written to the chat that was active when the send started, even
// if the selection has moved since. It reports whether the chat exists.
func (s *Store) AppendMessage(chatID int, msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(chatID)
	if i < 0 {
		return false
	}
	s.chats[i].Messages = append(s.chats[i].Messages, msg)
	return true
}

func (s *Store) indexLocked(id int) int {
	for i := range s.chats {
		if s.chats[i].ID == id {
			return i
		}
	}
	return -1
}
