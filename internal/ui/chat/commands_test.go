// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "testing"

// =============================================================================
// ARGUMENT PARSING TESTS
// =============================================================================

func TestRequireIndex(t *testing.T) {
	index, err := requireIndex([]string{"3"}, "/open")
	if err != nil || index != 3 {
		t.Errorf("Expected index 3, got %d (%v)", index, err)
	}

	if _, err := requireIndex(nil, "/open"); err == nil {
		t.Error("Missing argument must be rejected")
	}
	if _, err := requireIndex([]string{"zero"}, "/open"); err == nil {
		t.Error("Non-numeric argument must be rejected")
	}
	if _, err := requireIndex([]string{"0"}, "/open"); err == nil {
		t.Error("Indexes are 1-based; zero must be rejected")
	}
	if _, err := requireIndex([]string{"-2"}, "/open"); err == nil {
		t.Error("Negative indexes must be rejected")
	}
}

func TestCommandRegistryAliases(t *testing.T) {
	aliases := map[string]string{
		"h":   "help",
		"q":   "quit",
		"n":   "new",
		"l":   "list",
		"o":   "open",
		"fav": "favorite",
		"del": "delete",
		"a":   "agent",
	}
	for alias, canonical := range aliases {
		if commandHandlers[alias] == nil {
			t.Errorf("Alias %q for %q is not registered", alias, canonical)
		}
		if commandHandlers[canonical] == nil {
			t.Errorf("Command %q is not registered", canonical)
		}
	}
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatModelSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, ""},
		{512, "512 B"},
		{5 * 1024 * 1024, "5 MB"},
		{4831838208, "4.5 GB"},
	}
	for _, tt := range tests {
		if got := formatModelSize(tt.size); got != tt.want {
			t.Errorf("formatModelSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
