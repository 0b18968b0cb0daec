// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation streaming bridge.
package session

import "sync"

// =============================================================================
// SESSION ARENA
// =============================================================================

// Arena owns the live bridges, keyed by thread ID. It replaces any notion of
// module-level session state: every bridge is explicitly constructed with
// its collaborators and has a well-defined lifecycle.
type Arena struct {
	mu        sync.Mutex
	store     MessageStore
	transport Transport
	sessions  map[string]*Bridge
}

// NewArena creates an empty arena over the shared collaborators.
func NewArena(st MessageStore, transport Transport) *Arena {
	return &Arena{
		store:     st,
		transport: transport,
		sessions:  make(map[string]*Bridge),
	}
}

// Session returns the bridge for the given thread ID, creating it on first
// use.
func (a *Arena) Session(threadID string) *Bridge {
	a.mu.Lock()
	defer a.mu.Unlock()

	bridge, ok := a.sessions[threadID]
	if !ok {
		bridge = NewBridge(a.store, a.transport, threadID)
		a.sessions[threadID] = bridge
	}
	return bridge
}

// Drop removes the bridge for a thread. The bridge's projector epoch is
// bumped first so in-flight continuations against the dropped thread become
// no-ops.
func (a *Arena) Drop(threadID string) {
	a.mu.Lock()
	bridge, ok := a.sessions[threadID]
	if ok {
		delete(a.sessions, threadID)
	}
	a.mu.Unlock()

	if ok {
		bridge.ClearDiscussion()
	}
}

// HandleDiscussionDeleted notifies every live bridge that a discussion was
// deleted, clearing any session that pointed at it.
func (a *Arena) HandleDiscussionDeleted(discussionID int64) {
	a.mu.Lock()
	bridges := make([]*Bridge, 0, len(a.sessions))
	for _, b := range a.sessions {
		bridges = append(bridges, b)
	}
	a.mu.Unlock()

	for _, b := range bridges {
		b.HandleDiscussionDeleted(discussionID)
	}
}

// Len returns the number of live sessions.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}
