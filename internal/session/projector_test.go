// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/synthetixartifacts/gchat/internal/model"
	"github.com/synthetixartifacts/gchat/internal/store"
)

// =============================================================================
// PROJECTOR TESTS
// =============================================================================

func sampleDiscussion() *store.DiscussionWithMessages {
	now := time.Now().UTC()
	return &store.DiscussionWithMessages{
		Discussion: model.Discussion{ID: 7, Title: "Sample", AgentID: 1},
		Messages: []model.Message{
			{ID: 1, Who: model.RoleUser, Content: "Hi", DiscussionID: 7, CreatedAt: now},
			{ID: 2, Who: model.RoleSystem, Content: "internal", DiscussionID: 7, CreatedAt: now},
			{ID: 3, Who: model.RoleAgent, Content: "Hello!", DiscussionID: 7, CreatedAt: now},
		},
	}
}

func TestProjectorInitialize(t *testing.T) {
	p := NewProjector("t1")
	epoch := p.Initialize(sampleDiscussion())

	if epoch != 1 {
		t.Errorf("Expected epoch 1 after first initialize, got %d", epoch)
	}

	thread := p.Thread()
	if thread.ID != "t1" {
		t.Errorf("Expected thread ID t1, got %q", thread.ID)
	}
	if len(thread.Messages) != 2 {
		t.Fatalf("Expected 2 projected messages (system excluded), got %d", len(thread.Messages))
	}
	if thread.Messages[0].ID != "msg-1" || thread.Messages[1].ID != "msg-3" {
		t.Errorf("Unexpected projected IDs: %q, %q", thread.Messages[0].ID, thread.Messages[1].ID)
	}
	if thread.Messages[0].Role != model.ChatRoleUser {
		t.Errorf("Expected user role, got %q", thread.Messages[0].Role)
	}
	if thread.Messages[1].Role != model.ChatRoleAssistant {
		t.Errorf("Expected assistant role, got %q", thread.Messages[1].Role)
	}
}

func TestProjectorInitializeReplacesWholesale(t *testing.T) {
	p := NewProjector("t1")
	epoch := p.Initialize(sampleDiscussion())
	p.Append(epoch, model.ChatMessage{ID: "pending-x", Role: model.ChatRoleAssistant})

	p.Initialize(sampleDiscussion())

	thread := p.Thread()
	if len(thread.Messages) != 2 {
		t.Errorf("Re-initialize must rebuild wholesale, got %d messages", len(thread.Messages))
	}
}

func TestProjectorStaleEpochMutationsDropped(t *testing.T) {
	p := NewProjector("t1")
	stale := p.Initialize(sampleDiscussion())
	p.Clear() // bumps the epoch

	if p.Append(stale, model.ChatMessage{ID: "pending-a"}) {
		t.Error("Append with a stale epoch must be dropped")
	}
	if p.SetContent(stale, "msg-1", "changed") {
		t.Error("SetContent with a stale epoch must be dropped")
	}
	if p.Remove(stale, "msg-1") {
		t.Error("Remove with a stale epoch must be dropped")
	}
	if p.Reconcile(stale, "pending-a", &model.Message{ID: 9}) {
		t.Error("Reconcile with a stale epoch must be dropped")
	}
	thread := p.Thread()
	if got := thread.MessageCount(); got != 0 {
		t.Errorf("Cleared thread must stay empty, got %d messages", got)
	}
}

func TestProjectorSetContentOverwrites(t *testing.T) {
	p := NewProjector("t1")
	epoch := p.Clear()
	p.Append(epoch, model.ChatMessage{ID: "pending-a", Role: model.ChatRoleAssistant})

	p.SetContent(epoch, "pending-a", "Hi")
	p.SetContent(epoch, "pending-a", "Hi there!")

	thread := p.Thread()
	if thread.Messages[0].Content != "Hi there!" {
		t.Errorf("Expected full-content overwrite, got %q", thread.Messages[0].Content)
	}
}

func TestProjectorReconcileInPlace(t *testing.T) {
	p := NewProjector("t1")
	epoch := p.Initialize(sampleDiscussion())
	p.Append(epoch, model.ChatMessage{ID: "pending-a", Role: model.ChatRoleAssistant, Content: "partial"})
	p.Append(epoch, model.ChatMessage{ID: "msg-99", Role: model.ChatRoleUser, Content: "later"})

	saved := time.Now().UTC()
	ok := p.Reconcile(epoch, "pending-a", &model.Message{
		ID: 42, Who: model.RoleAgent, Content: "final text", CreatedAt: saved,
	})
	if !ok {
		t.Fatal("Reconcile should succeed for a live epoch and present placeholder")
	}

	thread := p.Thread()
	// Same position, durable ID, durable content.
	entry := thread.Messages[2]
	if entry.ID != "msg-42" {
		t.Errorf("Expected durable ID msg-42, got %q", entry.ID)
	}
	if entry.Content != "final text" {
		t.Errorf("Expected durable content, got %q", entry.Content)
	}
	if !entry.CreatedAt.Equal(saved) {
		t.Error("Reconcile should adopt the durable timestamp")
	}
	if thread.Messages[3].ID != "msg-99" {
		t.Error("Reconcile must not disturb surrounding messages")
	}
}

func TestProjectorRemove(t *testing.T) {
	p := NewProjector("t1")
	epoch := p.Clear()
	p.Append(epoch, model.ChatMessage{ID: "pending-a"})
	p.Append(epoch, model.ChatMessage{ID: "msg-1"})

	if !p.Remove(epoch, "pending-a") {
		t.Fatal("Remove should succeed for a present message")
	}
	thread := p.Thread()
	if thread.MessageCount() != 1 || thread.Messages[0].ID != "msg-1" {
		t.Errorf("Unexpected thread after remove: %+v", thread.Messages)
	}

	if p.Remove(epoch, "pending-a") {
		t.Error("Removing an absent message should report false")
	}
}

func TestProjectorThreadSnapshotIsolated(t *testing.T) {
	p := NewProjector("t1")
	epoch := p.Clear()
	p.Append(epoch, model.ChatMessage{ID: "pending-a", Content: "before"})

	snapshot := p.Thread()
	p.SetContent(epoch, "pending-a", "after")

	if snapshot.Messages[0].Content != "before" {
		t.Error("Snapshots must not observe later mutations")
	}
}
