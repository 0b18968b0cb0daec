// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleAgent, RoleSystem} {
		if !role.Valid() {
			t.Errorf("Role %q should be valid", role)
		}
	}
	if Role("robot").Valid() {
		t.Error("Unknown role should not be valid")
	}
}

func TestChatRoleFor(t *testing.T) {
	if got := ChatRoleFor(RoleUser); got != ChatRoleUser {
		t.Errorf("RoleUser should map to user, got %q", got)
	}
	if got := ChatRoleFor(RoleAgent); got != ChatRoleAssistant {
		t.Errorf("RoleAgent should map to assistant, got %q", got)
	}
}

// =============================================================================
// DISCUSSION TITLE TESTS
// =============================================================================

func TestDiscussionTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short message", "Hello world", "Hello world"},
		{"exactly max length", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"one over max", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
		{"empty", "", "New discussion"},
		{"whitespace only", "  \n  ", "New discussion"},
		{"newlines flattened", "line one\nline two", "line one line two"},
		{"carriage returns stripped", "a\r\nb", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiscussionTitle(tt.input); got != tt.want {
				t.Errorf("DiscussionTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDiscussionTitleUnicode(t *testing.T) {
	// 60 multi-byte runes; truncation must cut runes, not bytes.
	input := strings.Repeat("é", 60)
	got := DiscussionTitle(input)

	want := strings.Repeat("é", 50) + "..."
	if got != want {
		t.Errorf("Unicode truncation broken: got %q", got)
	}
}

func TestDiscussionGetTitle(t *testing.T) {
	d := Discussion{Title: "Named"}
	if d.GetTitle() != "Named" {
		t.Error("GetTitle should return the stored title")
	}
	empty := Discussion{}
	if empty.GetTitle() != "New discussion" {
		t.Error("GetTitle should fall back to a default")
	}
}

// =============================================================================
// CHAT MESSAGE TESTS
// =============================================================================

func TestPlaceholderIDs(t *testing.T) {
	a := NewPlaceholderID()
	b := NewPlaceholderID()

	if a == b {
		t.Error("Placeholder IDs must be unique")
	}
	if !strings.HasPrefix(a, "pending-") {
		t.Errorf("Placeholder IDs use the pending- scheme, got %q", a)
	}

	msg := ChatMessage{ID: a}
	if !msg.IsPlaceholder() {
		t.Error("pending- IDs are placeholders")
	}
	durable := ChatMessage{ID: DurableChatID(42)}
	if durable.IsPlaceholder() {
		t.Error("msg- IDs are not placeholders")
	}
	if durable.ID != "msg-42" {
		t.Errorf("Expected msg-42, got %q", durable.ID)
	}
}

func TestChatMessageFrom(t *testing.T) {
	msg := Message{ID: 7, Who: RoleAgent, Content: "hi"}
	projected := ChatMessageFrom(&msg)

	if projected.ID != "msg-7" {
		t.Errorf("Expected durable projection ID, got %q", projected.ID)
	}
	if projected.Role != ChatRoleAssistant {
		t.Errorf("Expected assistant role, got %q", projected.Role)
	}
	if projected.IsError {
		t.Error("Projections of durable messages are never error bubbles")
	}
}

func TestChatThreadFindAndClone(t *testing.T) {
	thread := ChatThread{ID: "t1", Messages: []ChatMessage{
		{ID: "msg-1", Content: "a"},
		{ID: "pending-x", Content: "b"},
	}}

	if thread.Find("pending-x") != 1 {
		t.Error("Find should locate messages by ID")
	}
	if thread.Find("missing") != -1 {
		t.Error("Find should return -1 for absent IDs")
	}

	clone := thread.Clone()
	clone.Messages[0].Content = "mutated"
	if thread.Messages[0].Content != "a" {
		t.Error("Clone must be independent of the original")
	}
}

// =============================================================================
// AGENT CONFIG TESTS
// =============================================================================

func TestAgentConfigParsing(t *testing.T) {
	agent := Agent{Configuration: `{"use_memory":true,"temperature":0.7}`}
	cfg := agent.Config()

	if !cfg.UseMemory {
		t.Error("use_memory should parse")
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("temperature should parse, got %v", cfg.Temperature)
	}
	if !agent.UseMemory() {
		t.Error("UseMemory shortcut should agree with Config")
	}
}

func TestAgentConfigMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"use_memory":"yes"}`} {
		agent := Agent{Configuration: raw}
		cfg := agent.Config()
		if cfg.UseMemory || cfg.Temperature != 0 {
			t.Errorf("Malformed config %q must degrade to the zero config, got %+v", raw, cfg)
		}
	}
}

func TestEncodeAgentConfigRoundTrip(t *testing.T) {
	agent := Agent{Configuration: EncodeAgentConfig(AgentConfig{UseMemory: true, Temperature: 0.4})}
	cfg := agent.Config()

	if !cfg.UseMemory || cfg.Temperature != 0.4 {
		t.Errorf("Round trip lost data: %+v", cfg)
	}
}

// =============================================================================
// MESSAGE HELPER TESTS
// =============================================================================

func TestMessagePreview(t *testing.T) {
	msg := Message{Content: "line one\nline two that is rather long indeed"}

	preview := msg.Preview(20)
	if strings.Contains(preview, "\n") {
		t.Error("Preview must be single-line")
	}
	if len([]rune(preview)) > 20 {
		t.Errorf("Preview exceeds limit: %q", preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("Long previews end with ellipsis, got %q", preview)
	}
}

func TestMessageIsPersisted(t *testing.T) {
	if (&Message{}).IsPersisted() {
		t.Error("Zero-ID messages are not persisted")
	}
	if !(&Message{ID: 1}).IsPersisted() {
		t.Error("Messages with an ID are persisted")
	}
}
