// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for discussions, messages,
// agents, and the transient chat thread projection.
//
// Two representations of a conversation coexist:
//
//   - Discussion + Message: the durable representation, owned by the store.
//     These are the system of record and survive restarts.
//   - ChatThread + ChatMessage: the transient UI projection. It is derived,
//     disposable, and always reconstructible from Discussion + Message state.
//
// A ChatMessage that exists only in the projection (while a response is
// streaming) carries a placeholder ID and must never be treated as durable.
// Once the underlying message is persisted, the projection entry is
// reconciled to the durable ID scheme ("msg-{id}").
//
// # Key Types
//
//   - Discussion: persisted conversation with title, favorite flag, and agent
//   - Message: single durable message (user, agent, or system)
//   - Agent: chat agent with model, system prompt, and JSON configuration
//   - ChatThread: per-thread UI message list
//   - Role / ChatRole: durable and UI role enumerations
package model
