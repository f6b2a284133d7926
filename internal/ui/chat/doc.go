// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat window of the TUI: the message list, the
// input line and the feedback controls for one selected chat.
//
// Messages live in a chatstore.Store shared with the home screen. Sending
// appends the user's message optimistically, clears the input and issues
// a command bound to the chat that was active at that moment; the reply
// (or the error placeholder) is appended to that chat even if the user has
// switched away.
//
// Keys while the input is focused:
//
//	enter    send
//	esc      focus messages
//
// Keys while messages are focused:
//
//	up/k down/j   select a reply
//	u or +        rate the selected reply 👍
//	d or -        rate the selected reply 👎
//	esc / i       back to the input
package chat
