// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable persistence for discussions, messages, and
// agents on SQLite.
//
// The store is the sole system of record for conversation state. Deleting a
// discussion cascades to its messages; the cascade is enforced by the
// database (foreign_keys pragma + ON DELETE CASCADE) and relied upon by the
// session bridge for cleanup correctness.
//
// # Usage
//
//	st, err := store.Open(path)
//	if err != nil { ... }
//	defer st.Close()
//
//	disc, err := st.CreateDiscussion(ctx, store.DiscussionParams{
//	    Title:   "Hello",
//	    AgentID: agent.ID,
//	})
//
// All methods are safe for concurrent use; SQLite supports a single writer,
// so the connection pool is capped at one connection.
package store
