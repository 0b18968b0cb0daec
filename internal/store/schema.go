// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable persistence for discussions, messages, and
// agents on SQLite.
package store

const (
	// SchemaVersion tracks the database schema version for migrations.
	SchemaVersion = 1
)

// Schema is the SQLite schema for the chat database.
//
// Timestamps are stored as Unix milliseconds (INTEGER). The messages table
// cascades on discussion deletion; this requires the foreign_keys pragma,
// which Open sets on every connection.
const Schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Agents table: configurable chat agents
CREATE TABLE IF NOT EXISTS agents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    model TEXT NOT NULL,
    system_prompt TEXT NOT NULL DEFAULT '',
    configuration TEXT NOT NULL DEFAULT '{}',  -- JSON, may contain use_memory
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_agents_name ON agents(name);

-- Discussions table: one row per conversation
CREATE TABLE IF NOT EXISTS discussions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL DEFAULT '',
    is_favorite INTEGER NOT NULL DEFAULT 0,
    agent_id INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY(agent_id) REFERENCES agents(id)
);

CREATE INDEX IF NOT EXISTS idx_discussions_agent_id ON discussions(agent_id);
CREATE INDEX IF NOT EXISTS idx_discussions_updated_at ON discussions(updated_at);

-- Messages table: discussion turns, cascade-deleted with their discussion
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    who TEXT NOT NULL CHECK(who IN ('user', 'agent', 'system')),
    content TEXT NOT NULL,
    discussion_id INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY(discussion_id) REFERENCES discussions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_discussion_id ON messages(discussion_id);
CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
`

// InitMetadata seeds the metadata table with default values.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
