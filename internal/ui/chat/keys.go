// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the chat window bindings.
type KeyMap struct {
	Submit      key.Binding
	ToggleFocus key.Binding
	Insert      key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	RateUp      key.Binding
	RateDown    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		ToggleFocus: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "rate replies"),
		),
		Insert: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "type"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		RateUp: key.NewBinding(
			key.WithKeys("u", "+"),
			key.WithHelp("u", "👍"),
		),
		RateDown: key.NewBinding(
			key.WithKeys("d", "-"),
			key.WithHelp("d", "👎"),
		),
	}
}

// InputHelp returns the bindings shown while typing.
func (k KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleFocus}
}

// MessagesHelp returns the bindings shown while rating.
func (k KeyMap) MessagesHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.RateUp, k.RateDown, k.Insert}
}
