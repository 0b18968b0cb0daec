// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for discussions, messages,
// agents, and the transient chat thread projection.
package model

import (
	"strings"
	"time"
)

// TitleMaxLen is the maximum discussion title length before truncation.
// Titles are derived from the first message of a discussion.
const TitleMaxLen = 50

// =============================================================================
// DISCUSSION TYPE
// =============================================================================

// Discussion holds the durable metadata of a conversation with an agent.
//
// A discussion is created on demand when the first message is sent to an
// agent with no active discussion. UpdatedAt is bumped by the store on every
// appended message. The session bridge holds a non-owning, mutable working
// copy of the active discussion; the store remains the system of record.
type Discussion struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	IsFavorite bool      `json:"is_favorite"`
	AgentID    int64     `json:"agent_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GetTitle returns the discussion title or a default.
func (d *Discussion) GetTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return "New discussion"
}

// =============================================================================
// DISCUSSION META
// =============================================================================

// DiscussionMeta holds lightweight metadata for listing discussions.
type DiscussionMeta struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	IsFavorite   bool      `json:"is_favorite"`
	AgentID      int64     `json:"agent_id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// DiscussionTitle derives a title from the first message of a discussion:
// the first TitleMaxLen characters, ellipsis-truncated if longer.
// Newlines are flattened and truncation is rune-based for Unicode safety.
func DiscussionTitle(firstMessage string) string {
	title := strings.ReplaceAll(firstMessage, "\n", " ")
	title = strings.ReplaceAll(title, "\r", "")
	title = strings.TrimSpace(title)
	if title == "" {
		return "New discussion"
	}
	runes := []rune(title)
	if len(runes) <= TitleMaxLen {
		return title
	}
	return string(runes[:TitleMaxLen]) + "..."
}
