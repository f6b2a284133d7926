// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable visual pieces of the ragchat TUI.

# Components

  - MessageBubble: one chat message. User messages are right-aligned;
    assistant messages are left-aligned, rendered as markdown and carry
    the feedback controls.
  - Sidebar: the chat list with message counts, a "+ New Chat" entry and
    the footer.
  - Alert: a blocking modal that must be dismissed.
  - Spinner: loading indicator built on bubbles/spinner.
  - Markdown: a glamour renderer cached per wrap width.

Components are plain values with View methods; the screens in ui/chat,
ui/home and ui/auth own their state and route key presses.
*/
package components
