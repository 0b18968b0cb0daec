// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
//
// This file defines the Bubble Tea message types used by the chat
// interface. All message types follow Bubble Tea conventions and are
// immutable.
package chat

import (
	"time"

	"github.com/synthetixartifacts/gchat/internal/llm"
	"github.com/synthetixartifacts/gchat/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTickMsg drives viewport refreshes while a send is in flight.
type StreamTickMsg struct {
	Time time.Time
}

// SendFinishedMsg reports the outcome of a completed send attempt. Seq
// identifies the send; outcomes from a send that /new or /clear abandoned
// arrive with a stale Seq and are dropped.
type SendFinishedMsg struct {
	Seq uint64
	Err error
}

// =============================================================================
// DATA MESSAGES
// =============================================================================

// DiscussionsLoadedMsg delivers the discussion list.
type DiscussionsLoadedMsg struct {
	Discussions []model.DiscussionMeta
	Err         error
}

// DiscussionOpenedMsg reports the outcome of opening a discussion.
type DiscussionOpenedMsg struct {
	Title string
	Err   error
}

// DiscussionDeletedMsg reports the outcome of deleting a discussion.
type DiscussionDeletedMsg struct {
	ID  int64
	Err error
}

// AgentsLoadedMsg delivers the agent list.
type AgentsLoadedMsg struct {
	Agents []model.Agent
	Err    error
}

// AgentSelectedMsg reports the outcome of switching agents.
type AgentSelectedMsg struct {
	Name string
	Err  error
}

// ModelsLoadedMsg delivers the models available on the chat server.
type ModelsLoadedMsg struct {
	Models []llm.ModelInfo
	Err    error
}

// StatusMsg sets a transient status line.
type StatusMsg struct {
	Text string
}
