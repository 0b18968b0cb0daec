// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for discussions, messages,
// agents, and the transient chat thread projection.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CHAT ROLE
// =============================================================================

// ChatRole identifies the sender of a UI-projected message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatRoleFor maps a durable message role to its UI projection role.
// System messages have no projection; callers exclude them before mapping.
func ChatRoleFor(who Role) ChatRole {
	if who == RoleUser {
		return ChatRoleUser
	}
	return ChatRoleAssistant
}

// =============================================================================
// CHAT MESSAGE
// =============================================================================

// ChatMessage is a single entry in the UI projection of a discussion.
//
// IDs come in two forms:
//   - "msg-{durableId}" for messages backed by a persisted Message
//   - "pending-{uuid}" for placeholders that exist only in the projection
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// IsError marks a synthetic inline error bubble. Error bubbles are
	// UI-only and never persisted.
	IsError bool `json:"is_error,omitempty"`
}

// IsPlaceholder reports whether the message exists only in the projection.
func (m *ChatMessage) IsPlaceholder() bool {
	return strings.HasPrefix(m.ID, "pending-")
}

// NewPlaceholderID generates a fresh placeholder message ID.
func NewPlaceholderID() string {
	return "pending-" + uuid.NewString()
}

// DurableChatID returns the projection ID for a persisted message.
func DurableChatID(messageID int64) string {
	return "msg-" + strconv.FormatInt(messageID, 10)
}

// ChatMessageFrom projects a durable message into the UI representation.
func ChatMessageFrom(msg *Message) ChatMessage {
	return ChatMessage{
		ID:        DurableChatID(msg.ID),
		Role:      ChatRoleFor(msg.Who),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// =============================================================================
// CHAT THREAD
// =============================================================================

// ChatThread is the per-thread UI message list.
//
// It is a derived, disposable view: it must always be reconstructible from
// Discussion + Message state and is never the system of record.
type ChatThread struct {
	ID       string        `json:"id"`
	Messages []ChatMessage `json:"messages"`
}

// MessageCount returns the number of projected messages.
func (t *ChatThread) MessageCount() int {
	return len(t.Messages)
}

// Find returns the index of the message with the given ID, or -1.
func (t *ChatThread) Find(id string) int {
	for i := range t.Messages {
		if t.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the thread, safe to hand to a renderer while
// the original continues to mutate.
func (t *ChatThread) Clone() ChatThread {
	clone := ChatThread{ID: t.ID}
	if len(t.Messages) > 0 {
		clone.Messages = make([]ChatMessage, len(t.Messages))
		copy(clone.Messages, t.Messages)
	}
	return clone
}
