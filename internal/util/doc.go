// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the ragchat packages.
//
// String helpers are display-width aware (go-runewidth) so that chat titles
// and message previews line up in the terminal. AtomicWriteFile is used for
// every file ragchat persists: the config file, the token store and the REPL
// history.
//
//	title := util.TruncateWidth(chat.Title, 24)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
