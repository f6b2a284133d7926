// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
//
// These mirror the chatbot backend's JSON. Chats and server messages are
// decoded straight from API responses. Messages the client appends before
// the server has seen them carry no ID.
//
// # Key Types
//
//   - Chat: a titled, ordered conversation owned by the backend
//   - Message: one turn, from the user or the assistant
//   - Feedback: a thumbs up (1) or down (0) on an assistant message
//   - Role: message sender (user, assistant)
//
// # Usage
//
//	msg := model.NewUserMessage("What is a primary key?")
//	chat.Messages = append(chat.Messages, msg)
//
//	fb, err := model.NewFeedback(*reply.ID, model.RatingUp)
package model
