// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation streaming bridge.
package session

// =============================================================================
// SEND STATE MACHINE
// =============================================================================

// State is the bridge's position in the per-send state machine.
type State int

const (
	// StateIdle accepts a new SendMessage call.
	StateIdle State = iota
	// StateEnsuringDiscussion is creating the discussion for a first send.
	StateEnsuringDiscussion
	// StatePersisting is writing the user message to the store.
	StatePersisting
	// StateStreaming is consuming the transport's event stream.
	StateStreaming
	// StateFailed is the error exit of a send attempt. It is transient: the
	// bridge returns to StateIdle before SendMessage returns.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnsuringDiscussion:
		return "ensuring-discussion"
	case StatePersisting:
		return "persisting"
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether the state rejects a new send.
func (s State) Busy() bool {
	return s != StateIdle
}
