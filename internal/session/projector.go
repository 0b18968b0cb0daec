// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation streaming bridge.
package session

import (
	"sync"

	"github.com/synthetixartifacts/gchat/internal/model"
	"github.com/synthetixartifacts/gchat/internal/store"
)

// =============================================================================
// DUAL-STORE PROJECTOR
// =============================================================================

// Projector keeps the transient ChatThread projection consistent with
// durable discussion state.
//
// Every mutation carries the epoch the caller observed when it started its
// work. Initialize and Clear bump the epoch; a mutation with a stale epoch
// is dropped, which makes in-flight streaming continuations safe against a
// thread that was reloaded or torn down underneath them.
//
// The projector is mutated only by the session bridge. The UI reads
// snapshots via Thread.
type Projector struct {
	mu     sync.Mutex
	epoch  uint64
	thread model.ChatThread
}

// NewProjector creates a projector for the given thread ID.
func NewProjector(threadID string) *Projector {
	return &Projector{
		thread: model.ChatThread{ID: threadID},
	}
}

// Epoch returns the current projection epoch.
func (p *Projector) Epoch() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epoch
}

// Initialize replaces the thread's message list wholesale with a projection
// of the given discussion: 1:1 mapped, chronologically ordered, system
// messages excluded. A nil discussion clears the thread. Returns the new
// epoch; all prior epochs are invalidated.
func (p *Projector) Initialize(disc *store.DiscussionWithMessages) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.epoch++
	p.thread.Messages = nil

	if disc == nil {
		return p.epoch
	}

	for i := range disc.Messages {
		msg := &disc.Messages[i]
		if msg.Who == model.RoleSystem {
			continue
		}
		p.thread.Messages = append(p.thread.Messages, model.ChatMessageFrom(msg))
	}
	return p.epoch
}

// Clear empties the thread and returns the new epoch.
func (p *Projector) Clear() uint64 {
	return p.Initialize(nil)
}

// Append adds a message to the thread. Returns false if the epoch is stale.
func (p *Projector) Append(epoch uint64, msg model.ChatMessage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if epoch != p.epoch {
		return false
	}
	p.thread.Messages = append(p.thread.Messages, msg)
	return true
}

// SetContent overwrites the content of the message with the given ID.
// Full-content replacement keeps the projection correct even if a chunk is
// delivered twice; the accumulator upstream is the single source of truth
// for the rendered text.
func (p *Projector) SetContent(epoch uint64, id, content string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if epoch != p.epoch {
		return false
	}
	idx := p.thread.Find(id)
	if idx < 0 {
		return false
	}
	p.thread.Messages[idx].Content = content
	return true
}

// Remove deletes the message with the given ID from the thread.
func (p *Projector) Remove(epoch uint64, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if epoch != p.epoch {
		return false
	}
	idx := p.thread.Find(id)
	if idx < 0 {
		return false
	}
	p.thread.Messages = append(p.thread.Messages[:idx], p.thread.Messages[idx+1:]...)
	return true
}

// Reconcile replaces a placeholder entry in place with its durable
// counterpart: same position, durable ID scheme, same visible content. The
// in-place update avoids flicker and lost scroll position that deleting and
// re-adding would cause.
func (p *Projector) Reconcile(epoch uint64, placeholderID string, durable *model.Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if epoch != p.epoch {
		return false
	}
	idx := p.thread.Find(placeholderID)
	if idx < 0 {
		return false
	}
	entry := &p.thread.Messages[idx]
	entry.ID = model.DurableChatID(durable.ID)
	entry.Content = durable.Content
	entry.CreatedAt = durable.CreatedAt
	return true
}

// Thread returns a snapshot of the projection, safe to render while the
// bridge continues streaming.
func (p *Projector) Thread() model.ChatThread {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.thread.Clone()
}
